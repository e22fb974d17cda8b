package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/store"
)

var locationsKind string

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Show or edit the location catalog",
	Long: `Show the names offered by the location, furniture and container selectors.

Examples:
  inventario locations
  inventario locations --kind container
  inventario locations add container "Caja 3"
  inventario locations rm 9`,
	Args: cobra.NoArgs,
	RunE: runLocationsList,
}

var locationsAddCmd = &cobra.Command{
	Use:   "add <kind> <name>",
	Short: "Add a name to the catalog (kind: location, furniture or container)",
	Args:  cobra.ExactArgs(2),
	RunE:  runLocationsAdd,
}

var locationsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a catalog entry (items already recorded are kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runLocationsRm,
}

func init() {
	locationsCmd.Flags().StringVar(&locationsKind, "kind", "", "only show one kind")
	locationsCmd.AddCommand(locationsAddCmd, locationsRmCmd)
}

func runLocationsList(cmd *cobra.Command, _ []string) error {
	if locationsKind != "" && !model.ValidLocationKind(locationsKind) {
		return fmt.Errorf("invalid kind %q", locationsKind)
	}

	database, err := openDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer database.Close()

	locations, err := store.ListLocations(cmd.Context(), database, locationsKind)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tNAME")
	for _, l := range locations {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", l.ID, l.Kind, l.Name)
	}
	return tw.Flush()
}

func runLocationsAdd(cmd *cobra.Command, args []string) error {
	kind, name := args[0], args[1]
	if !model.ValidLocationKind(kind) {
		return fmt.Errorf("invalid kind %q (want location, furniture or container)", kind)
	}

	database, err := openDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer database.Close()

	l, err := store.CreateLocation(cmd.Context(), database, kind, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q (id %d)\n", l.Kind, l.Name, l.ID)
	return nil
}

func runLocationsRm(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	database, err := openDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer database.Close()

	l, err := store.GetLocation(cmd.Context(), database, id)
	if err != nil {
		return err
	}
	if l == nil {
		return fmt.Errorf("location %d: %w", id, model.ErrNotFound)
	}
	if err := store.DeleteLocation(cmd.Context(), database, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %q\n", l.Kind, l.Name)
	return nil
}
