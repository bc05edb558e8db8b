package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/answers"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/articles"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/db"
)

// Store is the destination the Loader writes to.
type Store interface {
	DeleteAll(ctx context.Context) error
	InsertQuestions(ctx context.Context, rows []db.QuestionRow) error
	QuestionIDs(ctx context.Context) (map[int]int64, error)
	InsertLinks(ctx context.Context, rows []db.LinkRow) error
}

// RunRecorder is implemented by stores that keep a migration audit log.
type RunRecorder interface {
	RecordRun(ctx context.Context, r db.RunRecord) error
}

// Batch sizes used when the Loader fields are left at zero.
const (
	DefaultQuestionBatchSize = 50
	DefaultLinkBatchSize     = 100
)

// Loader replaces the stored question bank with a freshly reconciled one.
type Loader struct {
	Store             Store
	QuestionBatchSize int
	LinkBatchSize     int
	// Logger is used for per-batch reporting. nil means no logging.
	Logger *zap.Logger
	// Now is overridable for tests.
	Now func() time.Time
}

// NewLoader creates a Loader with the default batch sizes.
func NewLoader(store Store) *Loader {
	return &Loader{
		Store:             store,
		QuestionBatchSize: DefaultQuestionBatchSize,
		LinkBatchSize:     DefaultLinkBatchSize,
		Now:               time.Now,
	}
}

// Report is the outcome of one Load call.
type Report struct {
	RunID             string
	StartedAt         time.Time
	FinishedAt        time.Time
	QuestionsInserted int
	QuestionsFailed   int
	LinksInserted     int
	LinksFailed       int
	// LinksSkipped counts mapping links whose question is not in the store.
	LinksSkipped int
	Batches      []BatchResult
}

// FailedBatches returns how many batches could not be written.
func (r Report) FailedBatches() int {
	n := 0
	for _, b := range r.Batches {
		if b.Err != nil {
			n++
		}
	}
	return n
}

// Load deletes every stored question and link, then inserts questions and
// links in batches. A failing batch is logged and skipped; the delete and the
// read-back of question ids are required steps and abort the run on error.
func (l *Loader) Load(ctx context.Context, questions []answers.Answered, links []articles.Link) (Report, error) {
	now := l.Now
	if now == nil {
		now = time.Now
	}
	rep := Report{RunID: uuid.NewString(), StartedAt: now()}

	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", rep.RunID))

	onBatch := func(res BatchResult) {
		if res.Err != nil {
			log.Warn("batch failed, skipping",
				zap.String("table", res.Table),
				zap.Int("batch", res.Index),
				zap.Int("rows", res.Size),
				zap.Bool("constraint", db.IsConstraintErr(res.Err)),
				zap.Error(res.Err))
			return
		}
		log.Debug("batch written", zap.String("table", res.Table), zap.Int("batch", res.Index), zap.Int("rows", res.Size))
	}

	if err := l.Store.DeleteAll(ctx); err != nil {
		return rep, fmt.Errorf("delete existing questions: %w", err)
	}
	log.Info("existing question bank deleted")

	qw := NewBatchWriter[db.QuestionRow]("questions", l.QuestionBatchSize, l.Store.InsertQuestions)
	qw.OnBatch = onBatch
	for _, q := range questions {
		row := db.QuestionRow{
			OriginalNumber: q.Number,
			Text:           q.Text,
			Options:        q.Options,
			CorrectAnswer:  q.Correct,
		}
		if err := qw.Submit(ctx, row); err != nil {
			return rep, err
		}
	}
	qres, err := qw.Close(ctx)
	rep.Batches = append(rep.Batches, qres...)
	if err != nil {
		return rep, err
	}
	rep.QuestionsInserted, rep.QuestionsFailed = tally(qres)

	ids, err := l.Store.QuestionIDs(ctx)
	if err != nil {
		return rep, fmt.Errorf("fetch question ids: %w", err)
	}

	lw := NewBatchWriter[db.LinkRow]("question_articles", l.LinkBatchSize, l.Store.InsertLinks)
	lw.OnBatch = onBatch
	for _, link := range links {
		id, ok := ids[link.Question]
		if !ok {
			rep.LinksSkipped++
			log.Debug("no stored question for link", zap.Int("question", link.Question), zap.Int("article", link.Article))
			continue
		}
		row := db.LinkRow{
			QuestionID:     id,
			OriginalNumber: link.Question,
			TitleID:        link.TitleID,
			Article:        link.Article,
		}
		if err := lw.Submit(ctx, row); err != nil {
			return rep, err
		}
	}
	lres, err := lw.Close(ctx)
	rep.Batches = append(rep.Batches, lres...)
	if err != nil {
		return rep, err
	}
	rep.LinksInserted, rep.LinksFailed = tally(lres)
	rep.FinishedAt = now()

	if rr, ok := l.Store.(RunRecorder); ok {
		err := rr.RecordRun(ctx, db.RunRecord{
			RunID:             rep.RunID,
			StartedAt:         rep.StartedAt,
			FinishedAt:        rep.FinishedAt,
			QuestionsInserted: rep.QuestionsInserted,
			LinksInserted:     rep.LinksInserted,
			FailedBatches:     rep.FailedBatches(),
		})
		if err != nil {
			log.Warn("failed to record migration run", zap.Error(err))
		}
	}

	log.Info("load finished",
		zap.Int("questions_inserted", rep.QuestionsInserted),
		zap.Int("questions_failed", rep.QuestionsFailed),
		zap.Int("links_inserted", rep.LinksInserted),
		zap.Int("links_failed", rep.LinksFailed),
		zap.Int("links_skipped", rep.LinksSkipped),
		zap.Int("failed_batches", rep.FailedBatches()))
	return rep, nil
}

// tally sums rows written and rows lost across batch results.
func tally(results []BatchResult) (ok, failed int) {
	for _, r := range results {
		if r.Err != nil {
			failed += r.Size
		} else {
			ok += r.Size
		}
	}
	return ok, failed
}
