package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resumatch/internal/config"
	"alfredoptarigan/resumatch/internal/logger"
)

// CandidateAnalyzer scores a single CV against a job.
type CandidateAnalyzer interface {
	Analyze(ctx context.Context, in AnalysisInput) (*AnalysisResult, error)
	Mode() string
	IsConfigured() bool
}

type AnalyzerConfig struct {
	// Mode is config.ModeStrict or config.ModeDegraded. Anything else is strict.
	Mode        string
	Temperature float32
}

type analyzer struct {
	model   LanguageModel
	prompts *PromptBuilder
	cfg     AnalyzerConfig
	log     *zap.Logger
}

func NewAnalyzer(model LanguageModel, cfg AnalyzerConfig, log *zap.Logger) CandidateAnalyzer {
	if cfg.Mode != config.ModeDegraded {
		cfg.Mode = config.ModeStrict
	}
	return &analyzer{
		model:   model,
		prompts: NewPromptBuilder(),
		cfg:     cfg,
		log:     logger.OrNop(log),
	}
}

func (a *analyzer) Mode() string {
	return a.cfg.Mode
}

func (a *analyzer) IsConfigured() bool {
	return a.model != nil && a.model.IsConfigured()
}

// Analyze builds the prompt, calls the model once and parses the reply.
//
// Invalid input is always returned as a *ValidationError. Any other failure is
// an *AnalysisError in strict mode; in degraded mode it is logged and replaced
// by a fallback result with a nil error.
func (a *analyzer) Analyze(ctx context.Context, in AnalysisInput) (*AnalysisResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	result, err := a.analyze(ctx, in)
	if err == nil {
		analysesTotal.WithLabelValues("success", "").Inc()
		return result, nil
	}

	kind := KindTransport
	var ae *AnalysisError
	if errors.As(err, &ae) {
		kind = ae.Kind
	}

	if a.cfg.Mode == config.ModeDegraded {
		a.log.Warn("⚠️ Analysis failed, returning fallback result",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		analysesTotal.WithLabelValues("fallback", string(kind)).Inc()
		return NewFallbackResult(err), nil
	}

	analysesTotal.WithLabelValues("error", string(kind)).Inc()
	return nil, err
}

func (a *analyzer) analyze(ctx context.Context, in AnalysisInput) (*AnalysisResult, error) {
	if !a.IsConfigured() {
		return nil, &AnalysisError{
			Kind:    KindConfiguration,
			Message: "Gemini API is not configured. Please provide a valid API key.",
		}
	}

	prompt := a.prompts.BuildAnalysisPrompt(in.JobDescription, in.Requirements, in.CandidateText)

	start := time.Now()
	reply, err := a.model.GenerateText(ctx, prompt, a.cfg.Temperature)
	status := "ok"
	if err != nil {
		status = "error"
	}
	modelCallDuration.WithLabelValues(a.model.Model(), status).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, classifyModelError(err, a.model.Model())
	}

	if strings.TrimSpace(reply) == "" {
		return nil, &AnalysisError{
			Kind:    KindTransport,
			Message: "Empty response received from Gemini API",
		}
	}

	result, err := ParseAnalysisReply(reply)
	if err != nil {
		a.log.Debug("🔍 Unparseable model reply",
			zap.String("reply", logger.TruncateForLog(reply, 500)),
		)
		return nil, &AnalysisError{
			Kind:    KindParse,
			Message: err.Error(),
			Err:     err,
		}
	}

	return result, nil
}

// classifyModelError maps a model failure onto an ErrorKind by inspecting its
// message. The first matching rule wins.
func classifyModelError(err error, model string) *AnalysisError {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}

	msg := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &AnalysisError{
			Kind:    KindTransport,
			Message: fmt.Sprintf("Error calling Gemini API: %v", err),
			Err:     err,
		}
	case containsAny(msg, "quota exceeded", "exceeded your current quota"):
		return &AnalysisError{
			Kind:    KindQuotaExceeded,
			Message: "Gemini API quota exceeded. Please try again later.",
			Err:     err,
		}
	case containsAny(msg, "rate limit", "too many requests"):
		return &AnalysisError{
			Kind:    KindRateLimited,
			Message: "Gemini API rate limit reached. Please try again in a few minutes.",
			Err:     err,
		}
	case containsAny(msg, "invalid api key", "api key not valid"):
		return &AnalysisError{
			Kind:    KindInvalidCredential,
			Message: "Invalid Gemini API key. Please check your configuration.",
			Err:     err,
		}
	case containsAny(msg, "not found", "not supported"):
		return &AnalysisError{
			Kind:    KindModelUnavailable,
			Message: fmt.Sprintf("Model %s is not available. Please check your model configuration.", model),
			Err:     err,
		}
	default:
		return &AnalysisError{
			Kind:    KindTransport,
			Message: fmt.Sprintf("Error calling Gemini API: %v", err),
			Err:     err,
		}
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// isTransient reports whether a failed model call is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	kind := classifyModelError(err, "").Kind
	return kind == KindTransport || kind == KindRateLimited
}
