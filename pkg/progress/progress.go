// Package progress records per-user answers against the stored question bank.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/db"
)

// ErrInvalidAnswer is returned for a user or option that cannot be recorded.
var ErrInvalidAnswer = errors.New("progress: invalid answer")

// Store persists progress rows.
type Store interface {
	RecordAnswer(ctx context.Context, userID string, questionID int64, chosen int, at time.Time) (bool, error)
	ProgressStats(ctx context.Context, userID string) (db.ProgressStats, error)
	ResetProgress(ctx context.Context, userID string) (int64, error)
}

// Tracker records answers and reports progress for users.
type Tracker struct {
	Store  Store
	Logger *zap.Logger
	Now    func() time.Time
}

// NewTracker returns a Tracker over s using the wall clock.
func NewTracker(s Store) *Tracker {
	return &Tracker{Store: s, Now: time.Now}
}

// Record stores chosen (0..3) as the user's latest answer to questionID and
// reports whether it was correct.
func (t *Tracker) Record(ctx context.Context, userID string, questionID int64, chosen int) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, fmt.Errorf("%w: empty user", ErrInvalidAnswer)
	}
	if chosen < 0 || chosen > 3 {
		return false, fmt.Errorf("%w: option %d out of range", ErrInvalidAnswer, chosen)
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	correct, err := t.Store.RecordAnswer(ctx, userID, questionID, chosen, now())
	if err != nil {
		return false, fmt.Errorf("record answer: %w", err)
	}
	if t.Logger != nil {
		t.Logger.Debug("answer recorded",
			zap.String("user", userID),
			zap.Int64("question_id", questionID),
			zap.Bool("correct", correct))
	}
	return correct, nil
}

// Stats returns the user's totals and per-title breakdown.
func (t *Tracker) Stats(ctx context.Context, userID string) (db.ProgressStats, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return db.ProgressStats{}, fmt.Errorf("%w: empty user", ErrInvalidAnswer)
	}
	st, err := t.Store.ProgressStats(ctx, userID)
	if err != nil {
		return st, fmt.Errorf("progress stats: %w", err)
	}
	return st, nil
}

// Reset forgets everything recorded for the user.
func (t *Tracker) Reset(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("%w: empty user", ErrInvalidAnswer)
	}
	n, err := t.Store.ResetProgress(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("reset progress: %w", err)
	}
	if t.Logger != nil {
		t.Logger.Info("progress reset", zap.String("user", userID), zap.Int64("rows", n))
	}
	return n, nil
}

// Accuracy is the share of answered questions currently marked correct.
func Accuracy(st db.ProgressStats) float64 {
	if st.Answered == 0 {
		return 0
	}
	return float64(st.Correct) / float64(st.Answered)
}
