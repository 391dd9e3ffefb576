package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alchemorsel/foodgram/internal/infrastructure/config"
	"github.com/alchemorsel/foodgram/internal/infrastructure/container"
	"github.com/alchemorsel/foodgram/pkg/logger"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "foodgramctl",
	Short: "Administer a Foodgram installation",
	Long: `foodgramctl manages the Foodgram database outside the API server.

Commands:
  migrate  - apply or roll back PostgreSQL schema migrations
  import   - load ingredients or tags from CSV files
  token    - issue an access token for an existing user`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(migrateCmd, importCmd, tokenCmd)
}

// environment is the configuration and logger shared by every command
type environment struct {
	cfg *config.Config
	log *zap.Logger
}

func loadEnvironment() (*environment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console", Development: true, OutputPaths: []string{"stderr"}})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return &environment{cfg: cfg, log: log}, nil
}

// openDatabase opens the configured database; the caller must call the
// returned close function.
func (e *environment) openDatabase(ctx context.Context) (*gorm.DB, func(), error) {
	db, closeDB, err := container.OpenDatabase(ctx, e.cfg, e.log)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := closeDB(); err != nil {
			e.log.Warn("Failed to close database", zap.Error(err))
		}
		_ = e.log.Sync()
	}, nil
}
