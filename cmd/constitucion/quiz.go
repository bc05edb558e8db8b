package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/answers"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/articles"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/quiz"
)

func newQuizCmd(a *app) *cobra.Command {
	var (
		opts        quiz.Options
		showAnswers bool
	)
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Draw a random quiz from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			opts.Logger = a.logger
			q, err := quiz.Generate(cmd.Context(), store, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			header := fmt.Sprintf("Quiz: %d questions (seed %d)", len(q.Questions), q.Seed)
			if opts.TitleID != "" {
				t, _ := articles.TitleByID(opts.TitleID)
				header += ", " + t.Name
			}
			if opts.Article > 0 {
				header += fmt.Sprintf(", article %d", opts.Article)
			}
			fmt.Fprintln(out, header)
			for i, sq := range q.Questions {
				fmt.Fprintf(out, "\n%d. %s  [#%d]\n", i+1, sq.Text, sq.OriginalNumber)
				for j, opt := range sq.Options {
					fmt.Fprintf(out, "   %c) %s\n", answers.Letters[j], opt)
				}
			}
			if showAnswers {
				key := make([]string, len(q.Questions))
				for i, sq := range q.Questions {
					key[i] = fmt.Sprintf("%d-%c", i+1, answers.Letters[sq.CorrectAnswer])
				}
				fmt.Fprintf(out, "\nKey: %s\n", strings.Join(key, " "))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&opts.Count, "count", "n", quiz.DefaultCount, "Number of questions (1-100)")
	f.StringVar(&opts.TitleID, "title", "", "Restrict to a title id, e.g. titulo-1")
	f.IntVar(&opts.Article, "article", 0, "Restrict to an article number")
	f.Uint64Var(&opts.Seed, "seed", 0, "Random seed; 0 picks one")
	f.BoolVar(&showAnswers, "answers", false, "Print the answer key after the questions")
	return cmd
}
