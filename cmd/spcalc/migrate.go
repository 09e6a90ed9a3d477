package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Puppetdog/sp-calculator-sub000/internal/config"
	"github.com/Puppetdog/sp-calculator-sub000/internal/store"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and optionally seed it from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.loadSettings()
			if err != nil {
				return err
			}
			if !settings.UsesDatabase() {
				return errors.New("migrate needs a database: set SPCALC_DB_DSN")
			}

			var catalog *config.Catalog
			if seed {
				if settings.Catalog == "" {
					return errors.New("--seed needs a catalog: pass --catalog or set SPCALC_CATALOG")
				}
				if catalog, err = config.NewInputParser().LoadCatalog(settings.Catalog); err != nil {
					return err
				}
			}

			// openStore migrates the schema.
			programs, closeFn, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeFn()
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")

			if catalog == nil {
				return nil
			}
			added, err := store.Seed(cmd.Context(), programs, catalog.Programs, catalog.MEBValues)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d programs and %d MEB values\n", added, len(catalog.MEBValues))
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "Load programs and MEB values from the catalog")
	return cmd
}
