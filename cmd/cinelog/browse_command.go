package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cinelog/internal/catalog"
	"cinelog/internal/identity"
	"cinelog/internal/logging"
	"cinelog/internal/query"
	"cinelog/internal/reconcile"
	"cinelog/internal/tmdb"
)

func newBrowseCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		kindFlag      string
		queryFlag     string
		pageFlag      int
		categoryFlags []int64
		withCast      bool
		withSeasons   bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog, pulling in missing titles from TMDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			kind, err := catalog.ParseMediaKind(kindFlag)
			if err != nil {
				return err
			}

			// log to the file only so table output stays clean
			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "cinelog.log")},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog store: %w", err)
			}
			defer store.Close()

			connector, err := tmdb.New(
				cfg.TMDB.APIKey,
				cfg.TMDB.BaseURL,
				cfg.TMDB.Language,
				tmdb.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TMDB.RequestTimeout) * time.Second}),
				tmdb.WithSeasonDepth(cfg.Catalog.SeasonDepth),
			)
			if err != nil {
				return fmt.Errorf("build tmdb client: %w", err)
			}

			cache := identity.NewCache(logger)
			reconciler := reconcile.New(store, cache, logger)
			orchestrator := query.New(store, connector, reconciler, logger)

			result, err := orchestrator.Browse(cmd.Context(), query.Params{
				Kind:        kind,
				Query:       queryFlag,
				Page:        pageFlag,
				CategoryIDs: categoryFlags,
				Relations: catalog.RelationOptions{
					Categories: true,
					Cast:       withCast,
					Seasons:    withSeasons,
				},
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Items) == 0 {
				fmt.Fprintln(out, "No results.")
				return nil
			}

			headers := []string{"ID", "Title", "Released", "Rating", "Categories"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft}
			rows := make([][]string, 0, len(result.Items))
			for _, item := range result.Items {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.Title,
					item.ReleaseDate,
					fmt.Sprintf("%.1f", item.RatingAverage),
					joinEntityNames(item.Categories),
				})
			}

			if isTerminal(out) {
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
			} else {
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
			}
			fmt.Fprintf(out, "Page %d, %d %s in catalog\n", result.Page, result.Total, kindFlag)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "movie", "Content kind (movie or series)")
	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Free-text search instead of a popularity listing")
	cmd.Flags().IntVarP(&pageFlag, "page", "p", 1, "Listing page")
	cmd.Flags().Int64SliceVar(&categoryFlags, "categories", nil, "TMDB genre ids to filter by")
	cmd.Flags().BoolVar(&withCast, "with-cast", false, "Include cast in the output")
	cmd.Flags().BoolVar(&withSeasons, "with-seasons", false, "Include seasons for series")

	return cmd
}

func joinEntityNames(categories []catalog.Category) string {
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}
	return strings.Join(names, ", ")
}
