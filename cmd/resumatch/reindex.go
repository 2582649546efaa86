package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resumatch/internal/config"
	"alfredoptarigan/resumatch/internal/repositories"
	"alfredoptarigan/resumatch/internal/services"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Re-embed every stored CV into the Qdrant shortlist index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.Qdrant.Enabled() {
			return errors.New("QDRANT_URL is not set")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		gemini, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, log)
		if err != nil {
			return fmt.Errorf("initializing gemini: %w", err)
		}
		if !gemini.IsConfigured() {
			return errors.New("GEMINI_API_KEY is not set")
		}

		store, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
		if err != nil {
			return err
		}
		if err := store.InitCollection(ctx); err != nil {
			return err
		}

		db, err := config.InitDatabase(cfg, log)
		if err != nil {
			return err
		}

		indexed, failed, err := reindexAll(ctx, repositories.NewCVRepository(db), services.NewCVIndex(store, gemini, log))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "indexed: %d, failed: %d\n", indexed, failed)
		if failed > 0 {
			return fmt.Errorf("%d CV(s) failed to index", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

// reindexAll indexes every stored CV and keeps going past individual failures.
func reindexAll(ctx context.Context, cvRepo repositories.CVRepository, index services.CVIndex) (int, int, error) {
	cvs, err := cvRepo.FindAll()
	if err != nil {
		return 0, 0, fmt.Errorf("loading CVs: %w", err)
	}

	var indexed, failed int
	for _, cv := range cvs {
		if err := ctx.Err(); err != nil {
			return indexed, failed, err
		}
		if err := index.IndexCV(ctx, cv.ID.String(), cv.Content); err != nil {
			log.Error("❌ Failed to index CV",
				zap.String("cv_id", cv.ID.String()),
				zap.String("filename", cv.Filename),
				zap.Error(err),
			)
			failed++
			continue
		}
		indexed++
		log.Info("📚 CV indexed", zap.String("filename", cv.Filename))
	}

	return indexed, failed, nil
}
