package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/fire-crew-roster/cmd/cli/commands"
	"github.com/jakechorley/fire-crew-roster/internal/config"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
	"github.com/jakechorley/fire-crew-roster/pkg/postgres"
	"github.com/jakechorley/fire-crew-roster/pkg/sqlite"
	"github.com/jakechorley/fire-crew-roster/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "crew",
		Short: "Fire brigade crew CLI - Staff vehicles for a duty",
		Long:  `A CLI tool for checking members in, proposing vehicle crews from qualifications and fairness history, and recording completed duties.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
			if app.Database != nil {
				if err := app.Database.Close(); err != nil {
					app.Logger.Warn("Failed to close database", zap.Error(err))
				}
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: station, test, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.GenerateCrewCmd(app))
	rootCmd.AddCommand(commands.AttendanceCmd(app))
	rootCmd.AddCommand(commands.AssignSeatCmd(app))
	rootCmd.AddCommand(commands.StatusCmd(app))
	rootCmd.AddCommand(commands.CompleteDutyCmd(app))
	rootCmd.AddCommand(commands.ShowCrewCmd(app))
	rootCmd.AddCommand(commands.FairnessCmd(app))
	rootCmd.AddCommand(commands.CatalogCmd(app))
	rootCmd.AddCommand(commands.SeedCoversCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp loads the configuration, then sets up the logger and the database
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var logFile string
	app.Logger, logFile, err = logging.InitLogger(logging.Options{Env: env, Dir: app.Cfg.LogDir, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env), zap.String("log_file", logFile))
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("driver", app.Cfg.Database.Driver),
		zap.Int("vehicle_selections", len(app.Cfg.VehicleSelections)))

	app.Database, err = openDatabase(app.Ctx, app.Cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.Logger.Info("Database initialized successfully", zap.String("driver", app.Cfg.Database.Driver))

	return nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (db.Database, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		database, err := postgres.NewDB(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return database, nil
	case config.DriverSQLite:
		database, err := sqlite.NewDB(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return database, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
