// Package quiz draws randomized question sets from the stored question bank.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/articles"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/db"
)

const (
	DefaultCount = 10
	MaxCount     = 100
)

// ErrNoQuestions is returned when the filter matches nothing.
var ErrNoQuestions = errors.New("quiz: no questions match the filter")

// QuestionSource lists stored questions.
type QuestionSource interface {
	ListQuestions(ctx context.Context, f db.Filter) ([]db.StoredQuestion, error)
}

// Options controls a draw. Zero Count means DefaultCount; zero Seed draws from the clock.
type Options struct {
	Count   int
	TitleID string
	Article int
	Seed    uint64
	Logger  *zap.Logger
}

// Quiz is an ordered set of questions.
type Quiz struct {
	Seed      uint64
	Filter    db.Filter
	Questions []db.StoredQuestion
}

// Generate picks up to opts.Count distinct questions matching the filter in random order.
func Generate(ctx context.Context, src QuestionSource, opts Options) (Quiz, error) {
	count := opts.Count
	if count == 0 {
		count = DefaultCount
	}
	if count < 1 || count > MaxCount {
		return Quiz{}, fmt.Errorf("quiz: count must be between 1 and %d, got %d", MaxCount, count)
	}
	if opts.TitleID != "" {
		if _, ok := articles.TitleByID(opts.TitleID); !ok {
			return Quiz{}, fmt.Errorf("quiz: unknown title %q", opts.TitleID)
		}
	}
	if opts.Article < 0 {
		return Quiz{}, fmt.Errorf("quiz: invalid article %d", opts.Article)
	}

	filter := db.Filter{TitleID: opts.TitleID, Article: opts.Article}
	pool, err := src.ListQuestions(ctx, filter)
	if err != nil {
		return Quiz{}, fmt.Errorf("quiz: list questions: %w", err)
	}
	if len(pool) == 0 {
		return Quiz{}, ErrNoQuestions
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>32|seed<<32))
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > count {
		pool = pool[:count]
	}

	if opts.Logger != nil {
		opts.Logger.Debug("quiz generated",
			zap.Int("questions", len(pool)),
			zap.String("title", opts.TitleID),
			zap.Int("article", opts.Article),
			zap.Uint64("seed", seed))
	}
	return Quiz{Seed: seed, Filter: filter, Questions: pool}, nil
}
