package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/answers"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/articles"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/progress"
)

func newProgressCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Record and inspect per-user answers",
		Long: `Track which questions a user has answered and how well.

Available subcommands:
  record - Store a user's answer to a question
  stats  - Show a user's totals and per-title breakdown
  reset  - Forget everything recorded for a user`,
	}
	cmd.AddCommand(newProgressRecordCmd(a), newProgressStatsCmd(a), newProgressResetCmd(a))
	return cmd
}

func (a *app) tracker() (*progress.Tracker, func(), error) {
	store, closeStore, err := a.openStore()
	if err != nil {
		return nil, nil, err
	}
	t := progress.NewTracker(store)
	t.Logger = a.logger
	return t, closeStore, nil
}

func newProgressRecordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "record <user> <question-number> <a|b|c|d>",
		Short: "Store a user's answer to a question",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid question number %q", args[1])
			}
			letter := strings.ToLower(strings.TrimSpace(args[2]))
			chosen := strings.Index(answers.Letters, letter)
			if len(letter) != 1 || chosen < 0 {
				return fmt.Errorf("invalid option %q, want one of a, b, c, d", args[2])
			}

			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()
			ids, err := store.QuestionIDs(cmd.Context())
			if err != nil {
				return err
			}
			id, ok := ids[number]
			if !ok {
				return fmt.Errorf("question %d is not in the store", number)
			}

			t := progress.NewTracker(store)
			t.Logger = a.logger
			correct, err := t.Record(cmd.Context(), args[0], id, chosen)
			if err != nil {
				return err
			}
			if correct {
				fmt.Fprintf(cmd.OutOrStdout(), "Question %d: correct\n", number)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Question %d: incorrect\n", number)
			}
			return nil
		},
	}
}

func newProgressStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <user>",
		Short: "Show a user's totals and per-title breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, closeStore, err := a.tracker()
			if err != nil {
				return err
			}
			defer closeStore()
			st, err := t.Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d answered, %d correct (%.0f%%), %d attempts\n",
				st.UserID, st.Answered, st.Correct, 100*progress.Accuracy(st), st.Attempts)
			for _, tp := range st.Titles {
				name := tp.TitleID
				if title, ok := articles.TitleByID(tp.TitleID); ok {
					name = title.Name
				}
				fmt.Fprintf(out, "  %-20s %d/%d\n", name, tp.Correct, tp.Answered)
			}
			return nil
		},
	}
}

func newProgressResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <user>",
		Short: "Forget everything recorded for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, closeStore, err := a.tracker()
			if err != nil {
				return err
			}
			defer closeStore()
			n, err := t.Reset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d progress rows for %s\n", n, strings.TrimSpace(args[0]))
			return nil
		},
	}
}
