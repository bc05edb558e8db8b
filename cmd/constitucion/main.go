package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/config"
	"github.com/ChalzsKing/ConsTiTucion-sub001/pkg/db"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath   string
	verbose      bool
	logFormat    string
	dbDriver     string
	dbURL        string
	resourcesDir string

	cfg    config.Config
	logger *zap.Logger
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "constitucion",
		Short: "Load and query the constitution question bank",
		Long: `Parse the question corpus, reconcile the answer keys, map questions to
constitutional articles and load the result into the question store.

Available subcommands:
  migrate  - Rebuild the question store from the resource files
  validate - Check the resource files without writing anything
  quiz     - Draw a random quiz from the store
  progress - Record and inspect per-user answers`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file (default constitucion.yaml when present)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&a.logFormat, "log-format", "json", "Log encoding: json or console")
	pf.StringVar(&a.dbDriver, "db-driver", "", "Database driver: sqlite3 or postgres")
	pf.StringVar(&a.dbURL, "db-url", "", "Database DSN or file path")
	pf.StringVar(&a.resourcesDir, "resources", "", "Directory holding the corpus, answer and mapping files")

	root.AddCommand(newMigrateCmd(a), newValidateCmd(a), newQuizCmd(a), newProgressCmd(a))
	return root
}

// setup resolves configuration and builds the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbDriver != "" {
		cfg.Database.Driver = a.dbDriver
	}
	if a.dbURL != "" {
		cfg.Database.URL = a.dbURL
	}
	if a.resourcesDir != "" {
		cfg.ResourcesDir = a.resourcesDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger == nil {
		logger, err := buildLogger(a.verbose, a.logFormat)
		if err != nil {
			return err
		}
		a.logger = logger
	}
	return nil
}

func buildLogger(verbose bool, format string) (*zap.Logger, error) {
	var zc zap.Config
	switch format {
	case "json", "":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		zc.Level.SetLevel(zapcore.DebugLevel)
	}
	return zc.Build()
}

// openStore connects to the configured database and makes sure the schema exists.
func (a *app) openStore() (*db.Store, func(), error) {
	conn, dialect, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.InitDB(conn, dialect); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.logger.Debug("database ready", zap.String("driver", string(dialect)))
	return db.NewStore(conn, dialect), func() { conn.Close() }, nil
}
