package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/dirty"
	"github.com/wadjakorntonsri/linkvault/pkg/core/scoped"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every link as JSON to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := linkvault.Catalog.AllLinks(cmd.Context())
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if links == nil {
			links = []domain.Link{}
		}
		return printJSON(cmd.OutOrStdout(), links)
	},
}

var (
	importFile  string
	importOwner string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load links from an export file",
	Long: `Create every link in an export file that does not already exist.

Links are matched by slug; existing slugs are skipped. Folder assignments are
dropped because folder ids do not carry over between stores.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer file.Close()

		var links []domain.Link
		if err := json.NewDecoder(file).Decode(&links); err != nil {
			return fmt.Errorf("decode failed: %w", err)
		}

		imported, skipped, err := importLinks(cmd.Context(), links, importOwner)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d links, skipped %d\n", imported, skipped)
		return err
	},
}

func importLinks(ctx context.Context, links []domain.Link, owner string) (imported, skipped int, err error) {
	logger := linkvault.Logger
	repos := map[string]*scoped.Repository{}

	for _, l := range links {
		exists, err := linkvault.Catalog.SlugExists(ctx, l.Slug)
		if err != nil {
			return imported, skipped, err
		}
		if exists {
			logger.Info("Skipping existing slug", "slug", l.Slug)
			skipped++
			continue
		}

		userID := l.UserID
		if owner != "" {
			userID = owner
		}
		repo, ok := repos[userID]
		if !ok {
			repo, err = scoped.New(linkvault.Store, userID, dirty.Default)
			if err != nil {
				logger.Warn("Skipping link without owner", "slug", l.Slug, "error", err)
				skipped++
				continue
			}
			repos[userID] = repo
		}

		_, err = repo.CreateLink(ctx, domain.NewLink{
			OriginalURL:     l.OriginalURL,
			Slug:            l.Slug,
			IsCustom:        l.IsCustom,
			ExpiresAt:       l.ExpiresAt,
			MetaTitle:       l.MetaTitle,
			MetaDescription: l.MetaDescription,
			MetaFavicon:     l.MetaFavicon,
			ScreenshotURL:   l.ScreenshotURL,
			Note:            l.Note,
		})
		if err != nil {
			logger.Warn("Failed to import link", "slug", l.Slug, "error", err)
			skipped++
			continue
		}
		imported++
	}
	return imported, skipped, nil
}
