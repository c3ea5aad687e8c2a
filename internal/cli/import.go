package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"acecheckin/internal/importer"
)

// NewImportCommand creates the member import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var opts importer.Options

	cmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Import members from a CSV file",
		Long: `Import members into the check-in database from a CSV file.

The file needs either a 'name' column or 'first' and 'last' columns;
'email' and 'phone' columns are optional. Members whose name already
exists (compared case-insensitively) are skipped unless
--allow-duplicates is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "preview the import without writing anything")
	cmd.Flags().BoolVar(&opts.AllowDuplicates, "allow-duplicates", false, "import members whose name already exists")

	return cmd
}

func runImport(cmd *cobra.Command, csvPath string, opts importer.Options) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := importer.New(store).ImportMembersFile(cmd.Context(), csvPath, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rows in CSV:          %d\n", stats.TotalRows)
	fmt.Fprintf(out, "Created:              %d\n", stats.Created)
	fmt.Fprintf(out, "Skipped (duplicate):  %d\n", stats.SkippedDuplicates)
	fmt.Fprintf(out, "Skipped (empty name): %d\n", stats.SkippedEmpty)
	fmt.Fprintf(out, "Errors:               %d\n", stats.Errors)

	if opts.DryRun {
		fmt.Fprintln(out, "\nDry run: nothing was written. Run without --dry-run to import.")
	}
	if stats.Errors > 0 {
		return fmt.Errorf("%d rows failed to import", stats.Errors)
	}
	return nil
}
