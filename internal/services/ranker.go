package services

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/resumatch/internal/logger"
)

const defaultRankerConcurrency = 3

// Ranker analyses a batch of CVs against one job and orders them by score.
type Ranker interface {
	AnalyzeBatch(ctx context.Context, jobDescription string, requirements []string, candidates []Candidate) ([]*AnalysisResult, error)
}

type ranker struct {
	analyzer    CandidateAnalyzer
	concurrency int
	log         *zap.Logger
}

func NewRanker(analyzer CandidateAnalyzer, concurrency int, log *zap.Logger) Ranker {
	if concurrency <= 0 {
		concurrency = defaultRankerConcurrency
	}
	return &ranker{
		analyzer:    analyzer,
		concurrency: concurrency,
		log:         logger.OrNop(log),
	}
}

// AnalyzeBatch returns one result per candidate, highest score first, with
// equal scores kept in input order.
//
// A candidate whose analysis returns an error is recorded as a fallback result
// carrying that error. If every candidate returned an error the call fails with
// a *BatchError naming the first failure in input order. Fallbacks produced by
// a degraded analyzer are successes from the batch's point of view.
func (r *ranker) AnalyzeBatch(ctx context.Context, jobDescription string, requirements []string, candidates []Candidate) ([]*AnalysisResult, error) {
	if len(candidates) == 0 {
		return []*AnalysisResult{}, nil
	}

	r.log.Info("🚀 Starting batch analysis",
		zap.Int("candidates", len(candidates)),
		zap.Int("workers", r.concurrency),
		zap.String("mode", r.analyzer.Mode()),
	)

	results := make([]*AnalysisResult, len(candidates))
	errs := make([]error, len(candidates))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := min(r.concurrency, len(candidates))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				// Candidates received after cancellation are treated as undispatched.
				if err := ctx.Err(); err != nil {
					results[i], errs[i] = r.tag(NewFallbackResult(err), candidates[i]), err
					continue
				}
				results[i], errs[i] = r.analyzeOne(ctx, workerID, jobDescription, requirements, candidates[i])
			}
		}(w + 1)
	}

	dispatched := 0
dispatch:
	for i := range candidates {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	for i := dispatched; i < len(candidates); i++ {
		errs[i] = ctx.Err()
		results[i] = r.tag(NewFallbackResult(ctx.Err()), candidates[i])
	}

	var first error
	failed := 0
	for _, err := range errs {
		if err == nil {
			continue
		}
		failed++
		if first == nil {
			first = err
		}
	}

	if failed == len(candidates) {
		batchesTotal.WithLabelValues("failed").Inc()
		r.log.Error("❌ Every candidate in the batch failed", zap.Int("candidates", failed), zap.Error(first))
		return nil, &BatchError{Failed: failed, Total: len(candidates), First: first}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].OverallScore > results[b].OverallScore
	})

	batchesTotal.WithLabelValues("completed").Inc()
	r.log.Info("✅ Batch analysis completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("failed", failed),
	)

	return results, nil
}

func (r *ranker) analyzeOne(ctx context.Context, workerID int, jobDescription string, requirements []string, c Candidate) (*AnalysisResult, error) {
	r.log.Debug("👷 Analysing candidate", zap.Int("worker", workerID), zap.String("candidate", c.Label))

	result, err := r.analyzer.Analyze(ctx, AnalysisInput{
		JobDescription: jobDescription,
		Requirements:   requirements,
		CandidateText:  c.Text,
	})
	if err != nil {
		r.log.Warn("⚠️ Candidate analysis failed",
			zap.Int("worker", workerID),
			zap.String("candidate", c.Label),
			zap.Error(err),
		)
		return r.tag(NewFallbackResult(err), c), err
	}

	return r.tag(result, c), nil
}

func (r *ranker) tag(result *AnalysisResult, c Candidate) *AnalysisResult {
	result.CandidateID = c.ID
	result.CandidateLabel = c.Label
	return result
}
