package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/answers"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/ingest"
)

var errValidation = errors.New("validation found problems")

func (a *app) inputs() ingest.Inputs {
	return ingest.Inputs{
		CorpusPath:  a.cfg.Resolve(a.cfg.CorpusFile),
		AnswerPaths: a.cfg.AnswerPaths(),
		MappingPath: a.cfg.Resolve(a.cfg.MappingFile),
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rebuild the question store from the resource files",
		Long: `Delete every stored question and article link, then load the parsed
corpus, reconciled answers and article mapping in batches.

A failing batch is reported and skipped; the run keeps going.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &ingest.Pipeline{DryRun: dryRun, Logger: a.logger}
			if !dryRun {
				store, closeStore, err := a.openStore()
				if err != nil {
					return err
				}
				defer closeStore()
				l := ingest.NewLoader(store)
				l.QuestionBatchSize = a.cfg.QuestionBatchSize
				l.LinkBatchSize = a.cfg.LinkBatchSize
				l.Logger = a.logger
				p.Loader = l
			}

			sum, err := p.Run(cmd.Context(), a.inputs())
			printSummary(cmd.OutOrStdout(), sum)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and reconcile without touching the database")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var strict, checkStore bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the resource files without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			sum, err := (&ingest.Pipeline{DryRun: true, Logger: a.logger}).Run(cmd.Context(), a.inputs())
			if err != nil {
				return err
			}
			printSummary(out, sum)
			problems := sum.Warnings()

			if checkStore {
				store, closeStore, err := a.openStore()
				if err != nil {
					return err
				}
				defer closeStore()
				c, err := store.Counts(cmd.Context())
				if err != nil {
					return fmt.Errorf("count stored rows: %w", err)
				}
				fmt.Fprintf(out, "Store: %d questions (expected %d), %d links (expected %d)\n",
					c.Questions, sum.Answered, c.Links, sum.LoadableLinks)
				if c.Questions != sum.Answered {
					problems++
				}
				if c.Links != sum.LoadableLinks {
					problems++
				}
			}

			if problems == 0 {
				fmt.Fprintln(out, "OK")
				return nil
			}
			fmt.Fprintf(out, "%d problem(s) found\n", problems)
			if strict {
				return fmt.Errorf("%w: %d", errValidation, problems)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any problem is found")
	cmd.Flags().BoolVar(&checkStore, "store", false, "Also compare stored row counts with the inputs")
	return cmd
}

func printSummary(w io.Writer, sum ingest.Summary) {
	fmt.Fprintf(w, "Corpus (%s): %d blocks, %d parsed, %d discarded\n",
		sum.CorpusCharset, sum.Blocks, sum.Parsed, sum.Discarded())
	for _, pw := range sum.ParseWarnings {
		fmt.Fprintf(w, "  dropped %s\n", pw)
	}
	fmt.Fprintf(w, "Answers: %d answered, %d without answer, %d conflicts\n",
		sum.Answered, len(sum.Unanswered), len(sum.Conflicts))
	for _, aw := range sum.AnswerWarnings {
		fmt.Fprintf(w, "  %s:%d: %s\n", aw.Source, aw.Line, aw.Reason)
	}
	for _, c := range sum.Conflicts {
		fmt.Fprintf(w, "  question %d: %s=%c, %s=%c (kept %c)\n", c.Question,
			c.PreviousSource, answers.Letters[c.Previous], c.Source, answers.Letters[c.Value], answers.Letters[c.Value])
	}
	if len(sum.Unanswered) > 0 {
		fmt.Fprintf(w, "  without answer: %v\n", sum.Unanswered)
	}
	fmt.Fprintf(w, "Mapping: %d rows, %d links\n", sum.MappingRows, sum.Links)
	for _, mw := range sum.MappingWarnings {
		fmt.Fprintf(w, "  line %d: %s\n", mw.Line, mw.Reason)
	}
	if len(sum.UnknownMapped) > 0 {
		fmt.Fprintf(w, "  mapped but not in corpus: %v\n", sum.UnknownMapped)
	}
	if len(sum.Unmapped) > 0 {
		fmt.Fprintf(w, "  no article mapping: %v\n", sum.Unmapped)
	}
	if r := sum.Load; r != nil {
		fmt.Fprintf(w, "Loaded run %s: %d questions, %d links (%d failed batches, %d links skipped)\n",
			r.RunID, r.QuestionsInserted, r.LinksInserted, r.FailedBatches(), r.LinksSkipped)
	}
}
