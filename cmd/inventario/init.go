package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/auth"
	"github.com/erazemk/inventario/internal/config"
	"github.com/erazemk/inventario/internal/sheet"
)

var resetPassword bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and the access password",
	Long: `Create the database, seed the default location catalog and generate the
access password. Running it again keeps existing data; use --reset-password
to replace the password.

With the sheet backend an empty sheet with the header row is created if the
file does not exist.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&resetPassword, "reset-password", false, "generate a new access password")
}

func runInit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()
	fmt.Printf("Database ready: %s\n", cfg.DBPath)

	var password string
	if resetPassword {
		password, err = auth.GeneratePassword(16)
		if err == nil {
			err = auth.SetPassword(ctx, database, password)
		}
	} else {
		password, err = auth.EnsurePassword(ctx, database)
	}
	if err != nil {
		return fmt.Errorf("setting up access password: %w", err)
	}

	if cfg.Backend == config.BackendSheet {
		if _, err := os.Stat(cfg.SheetPath); errors.Is(err, os.ErrNotExist) {
			if err := sheet.New(cfg.SheetPath).Write(ctx, nil); err != nil {
				return err
			}
			fmt.Printf("Sheet created: %s\n", cfg.SheetPath)
		}
	}

	fmt.Println()
	if password == "" {
		fmt.Println("Access password already set.")
		return nil
	}
	printPassword(password)
	return nil
}
