package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventario/internal/config"
	"github.com/erazemk/inventario/internal/imaging"
	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/model"
)

// cliSession names the table CLI commands act on. Shared backends ignore it.
const cliSession = "cli"

var (
	jsonOutput bool
	keyFlags   model.LocationKey
	listAll    bool
	photoPath  string
)

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&keyFlags.Location, "location", "", "location name")
	cmd.Flags().StringVar(&keyFlags.Furniture, "furniture", "", "shelf or furniture name")
	cmd.Flags().StringVar(&keyFlags.Container, "container", "", "container name")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the items stored in a location",
	Long: `List the items recorded under a location and container, optionally
narrowed to one piece of furniture. Use --all to list the whole table.

Examples:
  inventario list --location Nave --container "Caja 1"
  inventario list --location Garaje --furniture Suelo --container "Sin Caja" --json
  inventario list --all`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Record a new item",
	Long: `Record a new item under a location and container, with an optional photo.

Examples:
  inventario add "Taladro" --location Garaje --furniture Suelo --container "Sin Caja"
  inventario add "Lámpara" --location Nave --container "Caja 2" --photo lampara.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Mark an item as taken out",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	addKeyFlags(listCmd)
	listCmd.Flags().BoolVar(&listAll, "all", false, "list every item regardless of location")
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "output JSON")

	addKeyFlags(addCmd)
	addCmd.Flags().StringVar(&photoPath, "photo", "", "photo file (JPEG, PNG or WebP)")
	addCmd.Flags().String("upload-url", "", "photo upload bridge URL (default: keep photos in the database)")
}

// withService opens the database and the configured backend, then runs fn
// against the CLI's service.
func withService(ctx context.Context, fn func(*inventory.Service) error) error {
	if cfg.Backend == config.BackendMemory {
		return errMemoryBackend
	}

	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	services, _, closeBackend, err := newServices(ctx, database)
	if err != nil {
		return err
	}
	defer closeBackend()

	svc, err := services.For(ctx, cliSession)
	if err != nil {
		return err
	}
	return fn(svc)
}

func runList(cmd *cobra.Command, _ []string) error {
	if !listAll && (keyFlags.Location == "" || keyFlags.Container == "") {
		return fmt.Errorf("--location and --container are required (or use --all)")
	}

	return withService(cmd.Context(), func(svc *inventory.Service) error {
		var items []model.Item
		var err error
		if listAll {
			items, err = svc.All(cmd.Context())
		} else {
			items, err = svc.View(cmd.Context(), keyFlags)
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		printItems(cmd.OutOrStdout(), items)
		return nil
	})
}

func printItems(w io.Writer, items []model.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tFURNITURE\tCONTAINER\tSTATUS\tPHOTO")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Name, it.Location, it.Furniture, it.Container, it.Status, it.PhotoURL)
	}
	tw.Flush()
}

func runAdd(cmd *cobra.Command, args []string) error {
	in := inventory.NewItem{Name: args[0], Key: keyFlags}

	if photoPath != "" {
		f, err := os.Open(photoPath)
		if err != nil {
			return fmt.Errorf("opening photo: %w", err)
		}
		defer f.Close()

		result, err := imaging.Process(f)
		if err != nil {
			return fmt.Errorf("processing photo: %w", err)
		}
		in.Photo = &inventory.Photo{Data: result.Data, MIME: result.MIME}
	}

	return withService(cmd.Context(), func(svc *inventory.Service) error {
		item, err := svc.Add(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added item %d: %s\n", item.ID, item.Name)
		return nil
	})
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[0])
	}

	return withService(cmd.Context(), func(svc *inventory.Service) error {
		removed, err := svc.Remove(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), "No stored item with id %d.\n", id)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Item %d marked as taken out.\n", id)
		return nil
	})
}
