package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"alfredoptarigan/resumatch/internal/config"
	"alfredoptarigan/resumatch/internal/logger"
)

const replyCachePrefix = "resumatch:reply:"

// NewModelChain wraps base in the configured throttle and retry layers. The
// reply cache sits outermost so that cache hits skip both.
func NewModelChain(base LanguageModel, cfg *config.Config, rdb *redis.Client, log *zap.Logger) LanguageModel {
	m := WithRateLimit(base, cfg.Gemini.RequestsPerMinute)
	m = WithRetry(m, cfg.Analysis.RetryMaxAttempts, cfg.Analysis.RetryInitialDelay, log)
	return WithReplyCache(m, rdb, cfg.Redis.CacheTTL, log)
}

// rateLimitedModel throttles calls to the wrapped model.
type rateLimitedModel struct {
	LanguageModel
	limiter *rate.Limiter
}

// WithRateLimit allows at most requestsPerMinute calls per minute, with a
// burst of one. A non-positive limit returns next unchanged.
func WithRateLimit(next LanguageModel, requestsPerMinute int) LanguageModel {
	if requestsPerMinute <= 0 {
		return next
	}
	return &rateLimitedModel{
		LanguageModel: next,
		limiter:       rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

func (m *rateLimitedModel) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("throttle wait: %w", ctxErr)
		}
		// The next token is due after the context deadline.
		return "", fmt.Errorf("throttle wait: %w", context.DeadlineExceeded)
	}
	return m.LanguageModel.GenerateText(ctx, prompt, temperature)
}

// retryingModel retries transient model failures with exponential backoff.
type retryingModel struct {
	LanguageModel
	maxAttempts  int
	initialDelay time.Duration
	log          *zap.Logger
}

// WithRetry makes up to maxAttempts calls in total. Only transport and rate
// limit failures are retried; maxAttempts <= 1 returns next unchanged.
func WithRetry(next LanguageModel, maxAttempts int, initialDelay time.Duration, log *zap.Logger) LanguageModel {
	if maxAttempts <= 1 {
		return next
	}
	return &retryingModel{
		LanguageModel: next,
		maxAttempts:   maxAttempts,
		initialDelay:  initialDelay,
		log:           logger.OrNop(log),
	}
}

func (m *retryingModel) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	var lastErr error
	delay := m.initialDelay

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		text, err := m.LanguageModel.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !isTransient(err) || attempt == m.maxAttempts {
			break
		}

		m.log.Warn("⚠️ Model call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", lastErr
}

// cachedModel stores well-formed analysis replies in Redis keyed by model,
// temperature and prompt.
type cachedModel struct {
	LanguageModel
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// WithReplyCache caches replies that parse as an analysis. Malformed replies are
// returned but never stored. A nil client returns next unchanged.
func WithReplyCache(next LanguageModel, rdb *redis.Client, ttl time.Duration, log *zap.Logger) LanguageModel {
	if rdb == nil {
		return next
	}
	return &cachedModel{
		LanguageModel: next,
		rdb:           rdb,
		ttl:           ttl,
		log:           logger.OrNop(log),
	}
}

func (m *cachedModel) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	key := ReplyCacheKey(m.Model(), temperature, prompt)

	cached, err := m.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		replyCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, redis.Nil):
		replyCacheTotal.WithLabelValues("miss").Inc()
	default:
		replyCacheTotal.WithLabelValues("error").Inc()
		m.log.Warn("⚠️ Reply cache lookup failed", zap.Error(err))
	}

	text, err := m.LanguageModel.GenerateText(ctx, prompt, temperature)
	if err != nil {
		return "", err
	}

	if _, parseErr := ParseAnalysisReply(text); parseErr != nil {
		replyCacheTotal.WithLabelValues("skipped").Inc()
		return text, nil
	}
	if err := m.rdb.Set(ctx, key, text, m.ttl).Err(); err != nil {
		m.log.Warn("⚠️ Failed to cache model reply", zap.Error(err))
	}

	return text, nil
}

// ReplyCacheKey is the Redis key for a model reply.
func ReplyCacheKey(model string, temperature float32, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(float64(temperature), 'f', -1, 32)))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return replyCachePrefix + hex.EncodeToString(h.Sum(nil))
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}
