package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/answers"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/articles"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/corpus"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/textenc"
)

// ErrInputFile marks a missing or unreadable input file. It is always fatal.
var ErrInputFile = errors.New("input file")

// Inputs names the files one migration reads.
type Inputs struct {
	CorpusPath string
	// AnswerPaths are merged in order; a later file overrides an earlier one.
	AnswerPaths []string
	MappingPath string
}

// Summary threads every stage's counters and findings out of a run.
type Summary struct {
	CorpusCharset string

	Blocks        int
	Parsed        int
	ParseWarnings []corpus.Warning

	AnswerWarnings []answers.Warning
	Conflicts      []answers.Conflict
	Answered       int
	// Unanswered lists parsed questions excluded for lack of an answer.
	Unanswered []int

	MappingRows     int
	Links           int
	// LoadableLinks counts links whose question is answered and so can be stored.
	LoadableLinks   int
	MappingWarnings []articles.Warning
	// UnknownMapped lists question numbers the mapping references but the corpus does not define.
	UnknownMapped []int
	// Unmapped lists answered questions without any article link.
	Unmapped []int

	// Load is nil on dry runs.
	Load *Report
}

// Discarded returns how many blocks did not yield a question.
func (s Summary) Discarded() int { return s.Blocks - s.Parsed }

// Warnings counts every recoverable problem found across the stages.
func (s Summary) Warnings() int {
	n := len(s.ParseWarnings) + len(s.AnswerWarnings) + len(s.Conflicts) +
		len(s.Unanswered) + len(s.MappingWarnings) + len(s.UnknownMapped) + len(s.Unmapped)
	if s.Load != nil {
		n += s.Load.FailedBatches()
	}
	return n
}

// Pipeline runs split, parse, reconcile, map and load over one set of inputs.
type Pipeline struct {
	// Loader writes the result. nil, or DryRun, stops after reconciliation.
	Loader *Loader
	DryRun bool
	Logger *zap.Logger
}

// Run executes the pipeline. Only unreadable inputs, a failed delete and a
// failed id read-back return an error; everything else lands in the Summary.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (Summary, error) {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var sum Summary

	corpusDoc, err := readInput(in.CorpusPath)
	if err != nil {
		return sum, err
	}
	sum.CorpusCharset = corpusDoc.Charset
	if corpusDoc.Charset != "UTF-8" {
		log.Info("corpus decoded from legacy charset", zap.String("charset", corpusDoc.Charset))
	}

	keys := make([]answers.Key, 0, len(in.AnswerPaths))
	for _, path := range in.AnswerPaths {
		doc, err := readInput(path)
		if err != nil {
			return sum, err
		}
		k := answers.ParseKey(filepath.Base(path), doc.Text)
		for _, w := range k.Warnings {
			log.Warn("answer key warning", zap.String("source", w.Source), zap.Int("line", w.Line), zap.String("reason", w.Reason))
		}
		log.Info("answer key parsed", zap.String("source", k.Source), zap.Int("answers", len(k.Answers)))
		sum.AnswerWarnings = append(sum.AnswerWarnings, k.Warnings...)
		keys = append(keys, k)
	}

	mappingDoc, err := readInput(in.MappingPath)
	if err != nil {
		return sum, err
	}

	parser := corpus.Parser{Logger: log}
	parsed := parser.Parse(corpusDoc.Text)
	sum.Blocks = parsed.Blocks
	sum.Parsed = len(parsed.Questions)
	sum.ParseWarnings = parsed.Warnings

	merged := answers.Merge(keys...)
	sum.Conflicts = merged.Conflicts
	for _, c := range merged.Conflicts {
		log.Warn("answer key conflict", zap.Int("question", c.Question),
			zap.String("previous_source", c.PreviousSource), zap.String("source", c.Source),
			zap.String("kept", string(answers.Letters[c.Value])))
	}
	answered, unanswered := merged.Apply(parsed.Questions)
	sum.Answered = len(answered)
	sum.Unanswered = unanswered
	if len(unanswered) > 0 {
		log.Warn("questions without answer excluded", zap.Int("count", len(unanswered)), zap.Ints("questions", unanswered))
	}

	mapper := articles.Mapper{Logger: log}
	mapping, err := mapper.ParseCSV(strings.NewReader(mappingDoc.Text))
	if err != nil {
		return sum, fmt.Errorf("%w: %s: %w", ErrInputFile, in.MappingPath, err)
	}
	sum.MappingRows = mapping.Rows
	sum.Links = len(mapping.Links)
	sum.MappingWarnings = mapping.Warnings
	sum.UnknownMapped, sum.Unmapped = crossCheck(parsed.Questions, answered, mapping)
	sum.LoadableLinks = loadable(answered, mapping.Links)

	if sum.Blocks != sum.Parsed || sum.Parsed != sum.Answered {
		log.Warn("count mismatch",
			zap.Int("blocks", sum.Blocks), zap.Int("parsed", sum.Parsed), zap.Int("answered", sum.Answered))
	}

	if p.DryRun || p.Loader == nil {
		return sum, nil
	}
	rep, err := p.Loader.Load(ctx, answered, mapping.Links)
	sum.Load = &rep
	if err != nil {
		return sum, err
	}
	return sum, nil
}

func readInput(path string) (textenc.Document, error) {
	if path == "" {
		return textenc.Document{}, fmt.Errorf("%w: no path configured", ErrInputFile)
	}
	doc, err := textenc.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("%w: %s: %w", ErrInputFile, path, err)
	}
	return doc, nil
}

// crossCheck finds mapping entries pointing at undefined questions and answered questions with no mapping.
func crossCheck(parsed []corpus.Question, answered []answers.Answered, mapping articles.Result) (unknown, unmapped []int) {
	defined := make(map[int]bool, len(parsed))
	for _, q := range parsed {
		defined[q.Number] = true
	}
	mapped := mapping.Questions()
	for n := range mapped {
		if !defined[n] {
			unknown = append(unknown, n)
		}
	}
	sort.Ints(unknown)
	for _, a := range answered {
		if !mapped[a.Number] {
			unmapped = append(unmapped, a.Number)
		}
	}
	return unknown, unmapped
}

func loadable(answered []answers.Answered, links []articles.Link) int {
	have := make(map[int]bool, len(answered))
	for _, a := range answered {
		have[a.Number] = true
	}
	n := 0
	for _, l := range links {
		if have[l.Question] {
			n++
		}
	}
	return n
}
