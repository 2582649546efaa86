package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resumatch/internal/config"
	"alfredoptarigan/resumatch/internal/models"
	"alfredoptarigan/resumatch/internal/services"
)

type analyzeOptions struct {
	jobFile string
	xlsx    string
	files   []string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze --job job.json [flags] cv-files...",
	Short: "Rank local CV files against a job description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
			cfg.Analysis.Mode = strings.ToLower(mode)
		}
		if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
			cfg.Analysis.Concurrency = n
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		gemini, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, log)
		if err != nil {
			return fmt.Errorf("initializing gemini: %w", err)
		}

		var rdb *redis.Client
		if cfg.Redis.Enabled() {
			rdb, err = services.NewRedisClient(ctx, cfg.Redis.URL)
			if err != nil {
				log.Warn("⚠️ Redis unavailable, reply cache disabled", zap.Error(err))
				rdb = nil
			} else {
				defer rdb.Close()
			}
		}

		analyzer := services.NewAnalyzer(services.NewModelChain(gemini, cfg, rdb, log), services.AnalyzerConfig{
			Mode:        cfg.Analysis.Mode,
			Temperature: cfg.Gemini.Temperature,
		}, log)
		ranker := services.NewRanker(analyzer, cfg.Analysis.Concurrency, log)

		jobFile, _ := cmd.Flags().GetString("job")
		xlsx, _ := cmd.Flags().GetString("xlsx")

		return runAnalyze(ctx, ranker, analyzeOptions{jobFile: jobFile, xlsx: xlsx, files: args}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("job", "", "job description JSON file with title, description and requirements")
	analyzeCmd.Flags().String("xlsx", "", "write the ranked results to this XLSX file")
	analyzeCmd.Flags().String("mode", "", "analysis mode: strict or degraded (default from ANALYSIS_MODE)")
	analyzeCmd.Flags().Int("concurrency", 0, "number of CVs analysed in parallel (default from ANALYSIS_CONCURRENCY)")
	analyzeCmd.MarkFlagRequired("job")
}

func runAnalyze(ctx context.Context, ranker services.Ranker, opts analyzeOptions, out io.Writer) error {
	raw, err := os.ReadFile(opts.jobFile)
	if err != nil {
		return fmt.Errorf("reading job file: %w", err)
	}

	jobReq, err := services.ParseJobFile(raw)
	if err != nil {
		return err
	}

	if len(opts.files) == 0 {
		return errors.New("no CV files given")
	}

	extractor := services.NewTextExtractor()
	candidates := make([]services.Candidate, 0, len(opts.files))
	for _, path := range opts.files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", path, err)
		}
		text, _, err := extractor.Extract(path, data)
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", path, err)
		}
		if text == "" {
			return fmt.Errorf("failed to process %s: no text could be extracted", path)
		}
		candidates = append(candidates, services.Candidate{
			ID:    uuid.NewString(),
			Label: filepath.Base(path),
			Text:  text,
		})
	}

	log.Info("🔍 Analysing candidates",
		zap.String("job", jobReq.Title),
		zap.Int("candidates", len(candidates)),
	)

	results, err := ranker.AnalyzeBatch(ctx, jobReq.Description, jobReq.Requirements, candidates)
	if err != nil {
		return err
	}

	if err := printRanking(out, results); err != nil {
		return err
	}

	if opts.xlsx == "" {
		return nil
	}

	job := &models.JobDescription{
		Title:        jobReq.Title,
		Description:  jobReq.Description,
		Requirements: pq.StringArray(jobReq.Requirements),
		Active:       true,
	}
	responses := make([]models.AnalysisResultResponse, len(results))
	for i, r := range results {
		responses[i] = models.AnalysisResultResponse{
			CVID:             r.CandidateID,
			OverallScore:     r.OverallScore,
			MatchingSkills:   r.MatchingSkills,
			MissingSkills:    r.MissingSkills,
			Summary:          r.Summary,
			DetailedAnalysis: r.DetailedAnalysis,
			CVFilename:       r.CandidateLabel,
			JobTitle:         job.Title,
			Error:            r.Error,
		}
	}

	f, err := os.Create(opts.xlsx)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	if err := services.WriteAnalysisReport(f, job, responses); err != nil {
		return err
	}

	log.Info("📊 Report written", zap.String("file", opts.xlsx))
	return nil
}

func printRanking(out io.Writer, results []*services.AnalysisResult) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCANDIDATE\tSCORE\tMATCHING\tMISSING\tNOTE")
	for i, r := range results {
		note := ""
		if r.Error != nil {
			note = *r.Error
		}
		fmt.Fprintf(w, "%d\t%s\t%.0f\t%s\t%s\t%s\n",
			i+1,
			r.CandidateLabel,
			r.OverallScore,
			strings.Join(r.MatchingSkills, ", "),
			strings.Join(r.MissingSkills, ", "),
			note,
		)
	}
	return w.Flush()
}
