package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/relist-app/relist/internal/api"
	"github.com/relist-app/relist/internal/bulk"
	"github.com/relist-app/relist/internal/drafts"
	"github.com/relist-app/relist/internal/export"
	"github.com/relist-app/relist/internal/models"
)

// draftFilterFlags are the view parameters shared by the drafts subcommands.
type draftFilterFlags struct {
	status   string
	query    string
	category string
	minPrice float64
	maxPrice float64
	sortKey  string
}

func (f *draftFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", "", "Filter by status (draft, ready, published)")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Free-text search over title, description, brand, and category")
	cmd.Flags().StringVar(&f.category, "category", "", "Filter by category")
	cmd.Flags().Float64Var(&f.minPrice, "min-price", 0, "Minimum price")
	cmd.Flags().Float64Var(&f.maxPrice, "max-price", 0, "Maximum price")
	cmd.Flags().StringVar(&f.sortKey, "sort", "date", "Sort key (date, price, confidence)")
}

func (f *draftFilterFlags) spec(cmd *cobra.Command) drafts.FilterSpec {
	spec := drafts.FilterSpec{
		Status:   models.DraftStatus(f.status),
		Query:    f.query,
		Category: f.category,
		Sort:     drafts.SortKey(f.sortKey),
	}
	if cmd.Flags().Changed("min-price") {
		spec.MinPrice = &f.minPrice
	}
	if cmd.Flags().Changed("max-price") {
		spec.MaxPrice = &f.maxPrice
	}
	return spec
}

func newDraftsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Review and act on draft listings",
	}

	cmd.AddCommand(newDraftsListCmd(configPath))
	cmd.AddCommand(newDraftsActionCmd(configPath, bulk.ActionPublish))
	cmd.AddCommand(newDraftsActionCmd(configPath, bulk.ActionDelete))
	cmd.AddCommand(newDraftsExportCmd(configPath))

	return cmd
}

func newDraftsListCmd(configPath *string) *cobra.Command {
	var filters draftFilterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List draft listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadDrafts(cmd, configPath, &filters)
			if err != nil {
				return err
			}

			view := store.View()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tPRICE\tCONFIDENCE\tCREATED")
			for _, d := range view {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%s\n",
					d.ID, d.Status, d.Title, d.Price, d.Confidence,
					d.CreatedAt.Format("2006-01-02 15:04"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d drafts shown\n", len(view), len(store.Drafts()))
			return nil
		},
	}

	filters.register(cmd)
	return cmd
}

// newDraftsActionCmd builds the bulk publish/delete commands. Both share the
// same shape: pick the targets, run them through the executor, report the
// success and failure counts.
func newDraftsActionCmd(configPath *string, action bulk.Action) *cobra.Command {
	var filters draftFilterFlags
	var ids []string
	var allFiltered bool

	short := "Publish draft listings to the marketplace"
	if action == bulk.ActionDelete {
		short = "Delete draft listings"
	}

	cmd := &cobra.Command{
		Use:   string(action),
		Short: short,
		Long: short + `.

Each draft is processed independently: one failure never blocks the rest.
After the run the collection is refetched so the listing reflects what the
server actually did.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ids) == 0 && !allFiltered {
				return errors.New("nothing selected: pass --ids or --all-filtered")
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			store, err := loadDrafts(cmd, configPath, &filters)
			if err != nil {
				return err
			}

			if allFiltered {
				store.SelectAll()
			} else {
				for _, id := range ids {
					store.ToggleSelect(id)
				}
			}
			selected := store.Selected()
			if len(selected) == 0 {
				return bulk.ErrNoSelection
			}

			client := api.NewClient(cfg.BaseURL, cfg.SessionCookie)
			executor := bulk.NewExecutor(client, store, cfg.BulkConcurrency, cfg.BulkRatePerSec)
			result, err := executor.Execute(cmd.Context(), action, selected)
			if err != nil {
				return err
			}

			verb := "published"
			if action == bulk.ActionDelete {
				verb = "deleted"
			}
			if result.SuccessCount > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d drafts %s\n", result.SuccessCount, verb)
			}
			if result.ErrorCount > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d drafts failed (see log for details)\n", result.ErrorCount)
			}
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Draft ids to act on")
	cmd.Flags().BoolVar(&allFiltered, "all-filtered", false, "Act on every draft matching the filters")

	return cmd
}

func newDraftsExportCmd(configPath *string) *cobra.Command {
	var filters draftFilterFlags
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export drafts to a Parquet or YAML file",
		Example: `  # Snapshot everything to Parquet
  relist drafts export --output drafts.parquet

  # Only the ready drafts, as YAML
  relist drafts export --status ready --output ready.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadDrafts(cmd, configPath, &filters)
			if err != nil {
				return err
			}
			return export.WriteDrafts(store.View(), output)
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "drafts.parquet", "Output file (.parquet, .yaml)")

	return cmd
}

// loadDrafts wires up a store, loads the collection once, and applies the
// command's filter flags.
func loadDrafts(cmd *cobra.Command, configPath *string, filters *draftFilterFlags) (*drafts.Store, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.BaseURL, cfg.SessionCookie)
	store := drafts.NewStore(client)
	if err := store.Load(cmd.Context(), models.DraftStatus(filters.status)); err != nil {
		return nil, err
	}
	store.SetFilter(filters.spec(cmd))
	return store, nil
}
