// Command inventario serves and manages a personal inventory of items kept
// in labelled locations and containers.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/config"
	"github.com/erazemk/inventario/internal/db"
	"github.com/erazemk/inventario/internal/logging"
	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/store"
)

// Global flags.
var (
	envFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "inventario",
	Short: "Track what is stored where",
	Long: `Inventario records items by location, furniture and container, with an
optional photo, and marks them as taken out when they leave.

Settings come from an optional .env file and INVENTARIO_* environment
variables; flags override both.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	d := config.Default()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env", ".env", "dotenv file to load (missing file is ignored)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringP("db", "d", d.DBPath, "SQLite database path")
	pf.StringP("log", "l", "", "log file path (default: stdout/stderr only)")
	pf.StringP("backend", "b", d.Backend, "item table backend: sqlite, sheet, redis or memory")
	pf.String("sheet", d.SheetPath, "CSV sheet path for the sheet backend")
	pf.String("redis-addr", "", "Redis address for the redis backend")
	pf.String("redis-key", d.RedisKey, "Redis key holding the item table")
}

// loadConfig builds cfg from the environment and applies explicitly set flags.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	override("db", &c.DBPath)
	override("log", &c.LogPath)
	override("backend", &c.Backend)
	override("sheet", &c.SheetPath)
	override("redis-addr", &c.RedisAddr)
	override("redis-key", &c.RedisKey)
	if flags.Lookup("addr") != nil {
		override("addr", &c.Addr)
	}
	if flags.Lookup("upload-url") != nil {
		override("upload-url", &c.UploadURL)
	}

	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// openDatabase opens the configured database, makes sure the schema exists
// and seeds the location catalog on first use.
func openDatabase(ctx context.Context) (*sql.DB, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	if err := store.SeedLocations(ctx, database, model.DefaultCatalog()); err != nil {
		database.Close()
		return nil, fmt.Errorf("seeding locations: %w", err)
	}
	return database, nil
}

// setupLogging installs the default logger for commands that log.
func setupLogging() (func(), error) {
	return logging.Setup(cfg.LogPath, verbose)
}

func main() {
	rootCmd.AddCommand(serveCmd, initCmd, listCmd, addCmd, removeCmd, locationsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
