package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"foodgram/internal/importer"
	"foodgram/internal/store"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import reference data from JSON, YAML or CSV files",
	}
	cmd.AddCommand(
		newImportKindCmd("ingredients", "Import ingredients (name, measurement_unit); existing pairs are kept",
			(*importer.Importer).ImportIngredients),
		newImportKindCmd("tags", "Import tags (name, slug); existing slugs are kept",
			(*importer.Importer).ImportTags),
	)
	return cmd
}

type importFunc func(im *importer.Importer, ctx context.Context, path string) (importer.Result, error)

func newImportKindCmd(kind, short string, run importFunc) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reject unknown extensions before touching the database.
			if _, err := importer.FormatOf(args[0]); err != nil {
				return err
			}

			cfg, err := setup()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			im := importer.New(store.NewIngredientStore(db), store.NewTagStore(db))
			res, err := run(im, cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("import %s: %w", kind, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d read, %d new\n", kind, res.Read, res.Inserted)
			return nil
		},
	}
}
