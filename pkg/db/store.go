package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrQuestionNotFound is returned when a question id does not exist.
var ErrQuestionNotFound = errors.New("question not found")

// IsConstraintErr reports whether err is a unique/foreign-key/check violation.
func IsConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint") || strings.Contains(s, "violates")
}

// Store is the destination store for the question bank.
type Store struct {
	conn    *sql.DB
	dialect Dialect
}

// NewStore wraps an open connection that has been initialised with InitDB.
func NewStore(conn *sql.DB, d Dialect) *Store {
	return &Store{conn: conn, dialect: d}
}

// Conn returns the underlying connection.
func (s *Store) Conn() *sql.DB { return s.conn }

func (s *Store) q(query string) string { return rebind(s.dialect, query) }

// withTx runs fn inside a transaction, committing only when fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteAll removes every question together with its links and progress rows.
func (s *Store) DeleteAll(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"user_progress", "question_articles", "questions"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		return nil
	})
}

// InsertQuestions writes rows in a single transaction; either all rows land or none.
func (s *Store) InsertQuestions(ctx context.Context, rows []QuestionRow) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.q(`INSERT INTO questions
			(original_number, question_text, option_a, option_b, option_c, option_d, correct_answer)
			VALUES (?, ?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("prepare question insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.OriginalNumber, r.Text,
				r.Options[0], r.Options[1], r.Options[2], r.Options[3], r.CorrectAnswer); err != nil {
				return fmt.Errorf("insert question %d: %w", r.OriginalNumber, err)
			}
		}
		return nil
	})
}

// QuestionIDs maps original question numbers to surrogate ids.
func (s *Store) QuestionIDs(ctx context.Context) (map[int]int64, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, original_number FROM questions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int]int64)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[n] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertLinks writes join rows in a single transaction.
func (s *Store) InsertLinks(ctx context.Context, rows []LinkRow) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.q(`INSERT INTO question_articles
			(question_id, original_question_number, title_id, article_number)
			VALUES (?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.QuestionID, r.OriginalNumber, r.TitleID, r.Article); err != nil {
				return fmt.Errorf("insert link %d -> art. %d: %w", r.OriginalNumber, r.Article, err)
			}
		}
		return nil
	})
}

// Counts returns the number of stored questions and links.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&c.Questions); err != nil {
		return c, err
	}
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM question_articles`).Scan(&c.Links); err != nil {
		return c, err
	}
	return c, nil
}

// RecordRun appends a migration audit row.
func (s *Store) RecordRun(ctx context.Context, r RunRecord) error {
	_, err := s.conn.ExecContext(ctx, s.q(`INSERT INTO migration_runs
		(run_id, started_at, finished_at, questions_inserted, links_inserted, failed_batches)
		VALUES (?, ?, ?, ?, ?, ?)`),
		r.RunID, r.StartedAt.UTC(), r.FinishedAt.UTC(), r.QuestionsInserted, r.LinksInserted, r.FailedBatches)
	return err
}

// ListQuestions returns stored questions matching f, ordered by original number.
func (s *Store) ListQuestions(ctx context.Context, f Filter) ([]StoredQuestion, error) {
	query := `SELECT q.id, q.original_number, q.question_text, q.option_a, q.option_b, q.option_c, q.option_d, q.correct_answer
		FROM questions q`
	var (
		where []string
		args  []interface{}
	)
	if f.TitleID != "" {
		where = append(where, "qa.title_id = ?")
		args = append(args, f.TitleID)
	}
	if f.Article > 0 {
		where = append(where, "qa.article_number = ?")
		args = append(args, f.Article)
	}
	if len(where) > 0 {
		query += ` WHERE q.id IN (SELECT qa.question_id FROM question_articles qa WHERE ` + strings.Join(where, " AND ") + `)`
	}
	query += ` ORDER BY q.original_number`

	rows, err := s.conn.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StoredQuestion
	for rows.Next() {
		var sq StoredQuestion
		if err := rows.Scan(&sq.ID, &sq.OriginalNumber, &sq.Text,
			&sq.Options[0], &sq.Options[1], &sq.Options[2], &sq.Options[3], &sq.CorrectAnswer); err != nil {
			return nil, err
		}
		out = append(out, sq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordAnswer stores a user's latest answer to a question and reports whether it was correct.
func (s *Store) RecordAnswer(ctx context.Context, userID string, questionID int64, chosen int, at time.Time) (bool, error) {
	var correctAnswer int
	err := s.conn.QueryRowContext(ctx, s.q(`SELECT correct_answer FROM questions WHERE id = ?`), questionID).Scan(&correctAnswer)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("%w: %d", ErrQuestionNotFound, questionID)
	}
	if err != nil {
		return false, err
	}
	correct := chosen == correctAnswer
	_, err = s.conn.ExecContext(ctx, s.q(`INSERT INTO user_progress (user_id, question_id, last_answer, correct, attempts, updated_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT (user_id, question_id) DO UPDATE SET
		  last_answer = excluded.last_answer,
		  correct = excluded.correct,
		  attempts = user_progress.attempts + 1,
		  updated_at = excluded.updated_at`),
		userID, questionID, chosen, boolToInt(correct), at.UTC())
	if err != nil {
		return false, fmt.Errorf("upsert progress: %w", err)
	}
	return correct, nil
}

// ProgressStats summarises a user's answers overall and per title, titles in constitutional order.
func (s *Store) ProgressStats(ctx context.Context, userID string) (ProgressStats, error) {
	st := ProgressStats{UserID: userID}
	err := s.conn.QueryRowContext(ctx, s.q(`SELECT COUNT(*), COALESCE(SUM(correct), 0), COALESCE(SUM(attempts), 0)
		FROM user_progress WHERE user_id = ?`), userID).Scan(&st.Answered, &st.Correct, &st.Attempts)
	if err != nil {
		return st, err
	}

	rows, err := s.conn.QueryContext(ctx, s.q(`SELECT qa.title_id,
		  COUNT(DISTINCT up.question_id),
		  COUNT(DISTINCT CASE WHEN up.correct = 1 THEN up.question_id END)
		FROM user_progress up
		JOIN question_articles qa ON qa.question_id = up.question_id
		WHERE up.user_id = ?
		GROUP BY qa.title_id
		ORDER BY MIN(qa.article_number), qa.title_id`), userID)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var tp TitleProgress
		if err := rows.Scan(&tp.TitleID, &tp.Answered, &tp.Correct); err != nil {
			return st, err
		}
		st.Titles = append(st.Titles, tp)
	}
	return st, rows.Err()
}

// ResetProgress deletes a user's progress and returns the number of rows removed.
func (s *Store) ResetProgress(ctx context.Context, userID string) (int64, error) {
	res, err := s.conn.ExecContext(ctx, s.q(`DELETE FROM user_progress WHERE user_id = ?`), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
