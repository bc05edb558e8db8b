package db

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS questions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	original_number INTEGER NOT NULL UNIQUE,
	question_text TEXT NOT NULL,
	option_a TEXT NOT NULL,
	option_b TEXT NOT NULL,
	option_c TEXT NOT NULL,
	option_d TEXT NOT NULL,
	correct_answer INTEGER NOT NULL CHECK (correct_answer BETWEEN 0 AND 3),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS question_articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
	original_question_number INTEGER NOT NULL,
	title_id TEXT NOT NULL,
	article_number INTEGER NOT NULL,
	UNIQUE (question_id, title_id, article_number)
);

CREATE INDEX IF NOT EXISTS idx_question_articles_title ON question_articles (title_id, article_number);

CREATE TABLE IF NOT EXISTS user_progress (
	user_id TEXT NOT NULL,
	question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
	last_answer INTEGER NOT NULL,
	correct INTEGER NOT NULL DEFAULT 0,
	attempts INTEGER NOT NULL DEFAULT 1,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, question_id)
);

CREATE TABLE IF NOT EXISTS migration_runs (
	run_id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	questions_inserted INTEGER NOT NULL,
	links_inserted INTEGER NOT NULL,
	failed_batches INTEGER NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS questions (
	id BIGSERIAL PRIMARY KEY,
	original_number INTEGER NOT NULL UNIQUE,
	question_text TEXT NOT NULL,
	option_a TEXT NOT NULL,
	option_b TEXT NOT NULL,
	option_c TEXT NOT NULL,
	option_d TEXT NOT NULL,
	correct_answer INTEGER NOT NULL CHECK (correct_answer BETWEEN 0 AND 3),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS question_articles (
	id BIGSERIAL PRIMARY KEY,
	question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
	original_question_number INTEGER NOT NULL,
	title_id TEXT NOT NULL,
	article_number INTEGER NOT NULL,
	UNIQUE (question_id, title_id, article_number)
);

CREATE INDEX IF NOT EXISTS idx_question_articles_title ON question_articles (title_id, article_number);

CREATE TABLE IF NOT EXISTS user_progress (
	user_id TEXT NOT NULL,
	question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
	last_answer INTEGER NOT NULL,
	correct INTEGER NOT NULL DEFAULT 0,
	attempts INTEGER NOT NULL DEFAULT 1,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, question_id)
);

CREATE TABLE IF NOT EXISTS migration_runs (
	run_id TEXT PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	questions_inserted INTEGER NOT NULL,
	links_inserted INTEGER NOT NULL,
	failed_batches INTEGER NOT NULL
);
`
