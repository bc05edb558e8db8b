package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/db"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// DefaultFile is read when no explicit config path is given and it exists.
const DefaultFile = "constitucion.yaml"

// Batches carry between minBatchSize and maxBatchSize rows.
const (
	minBatchSize = 50
	maxBatchSize = 100
)

// Database locates the destination store.
type Database struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// Config holds everything a migration run needs.
type Config struct {
	Database     Database `yaml:"database"`
	ResourcesDir string   `yaml:"resources_dir"`
	CorpusFile   string   `yaml:"corpus_file"`
	// AnswerFiles are merged in order; later files win.
	AnswerFiles       []string `yaml:"answer_files"`
	MappingFile       string   `yaml:"mapping_file"`
	QuestionBatchSize int      `yaml:"question_batch_size"`
	LinkBatchSize     int      `yaml:"link_batch_size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database:          Database{Driver: "sqlite3", URL: "constitucion.db"},
		ResourcesDir:      "resources",
		CorpusFile:        "preguntas.txt",
		AnswerFiles:       []string{"respuestas.txt"},
		MappingFile:       "mapeo_articulos.csv",
		QuestionBatchSize: 50,
		LinkBatchSize:     100,
	}
}

// Load builds a Config from defaults, the YAML file at path and the environment.
// An empty path reads DefaultFile when present.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case explicit || !os.IsNotExist(err):
		return cfg, fmt.Errorf("config: read: %w", err)
	}

	ApplyEnv(&cfg, os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides cfg from environment variables read through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("CONSTITUCION_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := getenv("CONSTITUCION_DB_URL"); v != "" {
		cfg.Database.URL = v
	} else if v := getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := getenv("CONSTITUCION_RESOURCES_DIR"); v != "" {
		cfg.ResourcesDir = v
	}
	if v := getenv("CONSTITUCION_CORPUS_FILE"); v != "" {
		cfg.CorpusFile = v
	}
	if v := getenv("CONSTITUCION_ANSWER_FILES"); v != "" {
		cfg.AnswerFiles = splitList(v)
	}
	if v := getenv("CONSTITUCION_MAPPING_FILE"); v != "" {
		cfg.MappingFile = v
	}
	if v := getenv("CONSTITUCION_QUESTION_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QuestionBatchSize = n
		} else {
			cfg.QuestionBatchSize = -1
		}
	}
	if v := getenv("CONSTITUCION_LINK_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LinkBatchSize = n
		} else {
			cfg.LinkBatchSize = -1
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if _, err := db.ParseDialect(c.Database.Driver); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("%w: database url is empty", ErrInvalid)
	}
	if c.CorpusFile == "" || c.MappingFile == "" {
		return fmt.Errorf("%w: corpus_file and mapping_file are required", ErrInvalid)
	}
	if len(c.AnswerFiles) == 0 {
		return fmt.Errorf("%w: at least one answer file is required", ErrInvalid)
	}
	if c.QuestionBatchSize < minBatchSize || c.QuestionBatchSize > maxBatchSize {
		return fmt.Errorf("%w: question_batch_size must be between %d and %d, got %d", ErrInvalid, minBatchSize, maxBatchSize, c.QuestionBatchSize)
	}
	if c.LinkBatchSize < minBatchSize || c.LinkBatchSize > maxBatchSize {
		return fmt.Errorf("%w: link_batch_size must be between %d and %d, got %d", ErrInvalid, minBatchSize, maxBatchSize, c.LinkBatchSize)
	}
	return nil
}

// Resolve joins a file name onto ResourcesDir unless it is already absolute.
func (c Config) Resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.ResourcesDir, name)
}

// AnswerPaths returns the resolved answer file paths in merge order.
func (c Config) AnswerPaths() []string {
	out := make([]string, 0, len(c.AnswerFiles))
	for _, f := range c.AnswerFiles {
		out = append(out, c.Resolve(f))
	}
	return out
}
