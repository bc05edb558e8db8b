package db

import "time"

// QuestionRow is a question as written by the loader.
type QuestionRow struct {
	OriginalNumber int
	Text           string
	Options        [4]string
	CorrectAnswer  int
}

// StoredQuestion is a persisted question with its surrogate id.
type StoredQuestion struct {
	ID int64
	QuestionRow
}

// LinkRow joins a stored question to an article.
type LinkRow struct {
	QuestionID     int64
	OriginalNumber int
	TitleID        string
	Article        int
}

// Filter narrows question listings. Zero values match everything.
type Filter struct {
	TitleID string
	Article int
}

// Counts summarises the persisted question bank.
type Counts struct {
	Questions int
	Links     int
}

// RunRecord is the audit row kept for each migration run.
type RunRecord struct {
	RunID             string
	StartedAt         time.Time
	FinishedAt        time.Time
	QuestionsInserted int
	LinksInserted     int
	FailedBatches     int
}

// TitleProgress is the per-title slice of a user's progress.
type TitleProgress struct {
	TitleID  string
	Answered int
	Correct  int
}

// ProgressStats summarises a user's answers.
type ProgressStats struct {
	UserID   string
	Answered int
	Correct  int
	Attempts int
	Titles   []TitleProgress
}
