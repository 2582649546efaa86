package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resumatch/internal/config"
)

// fakeModel is a scripted LanguageModel. reply is called for every prompt.
type fakeModel struct {
	mu         sync.Mutex
	configured bool
	reply      func(prompt string) (string, error)
	calls      int
	prompts    []string
}

func newFakeModel(reply func(prompt string) (string, error)) *fakeModel {
	return &fakeModel{configured: true, reply: reply}
}

func replyWith(text string, err error) func(string) (string, error) {
	return func(string) (string, error) { return text, err }
}

func (f *fakeModel) GenerateText(_ context.Context, prompt string, _ float32) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.reply(prompt)
}

func (f *fakeModel) IsConfigured() bool { return f.configured }

func (f *fakeModel) Model() string { return "fake-model" }

func (f *fakeModel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var sampleInput = AnalysisInput{
	JobDescription: "Backend engineer",
	Requirements:   []string{"Python", "SQL"},
	CandidateText:  "Five years of Python.",
}

func TestAnalyzeSuccess(t *testing.T) {
	model := newFakeModel(replyWith(wellFormedReply, nil))
	a := NewAnalyzer(model, AnalyzerConfig{Mode: config.ModeStrict, Temperature: 0.3}, nil)

	result, err := a.Analyze(context.Background(), sampleInput)
	require.NoError(t, err)

	assert.Equal(t, 72.0, result.OverallScore)
	assert.Equal(t, []string{"Python"}, result.MatchingSkills)
	assert.Equal(t, 1, model.callCount())
	assert.Contains(t, model.prompts[0], "- Python\n- SQL")
	assert.Contains(t, model.prompts[0], "Five years of Python.")
}

func TestAnalyzeUnconfiguredMakesNoCall(t *testing.T) {
	model := newFakeModel(replyWith(wellFormedReply, nil))
	model.configured = false

	strict := NewAnalyzer(model, AnalyzerConfig{Mode: config.ModeStrict}, nil)
	_, err := strict.Analyze(context.Background(), sampleInput)
	assert.True(t, IsAnalysisErrorKind(err, KindConfiguration))

	degraded := NewAnalyzer(model, AnalyzerConfig{Mode: config.ModeDegraded}, nil)
	result, err := degraded.Analyze(context.Background(), sampleInput)
	require.NoError(t, err)
	assert.True(t, result.IsFallback())

	assert.Zero(t, model.callCount())
}

func TestAnalyzeNilModel(t *testing.T) {
	a := NewAnalyzer(nil, AnalyzerConfig{Mode: config.ModeStrict}, nil)

	assert.False(t, a.IsConfigured())
	_, err := a.Analyze(context.Background(), sampleInput)
	assert.True(t, IsAnalysisErrorKind(err, KindConfiguration))
}

func TestAnalyzeClassifiesModelErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"quota", errors.New("Error 429: Quota exceeded for metric"), KindQuotaExceeded},
		{"quota phrase", errors.New("You exceeded your current quota"), KindQuotaExceeded},
		{"rate limit", errors.New("Rate limit hit"), KindRateLimited},
		{"too many requests", errors.New("429 Too Many Requests"), KindRateLimited},
		{"invalid key", errors.New("Invalid API key supplied"), KindInvalidCredential},
		{"key not valid", errors.New("API key not valid. Please pass a valid API key."), KindInvalidCredential},
		{"not found", errors.New("models/gemini-9 is not found"), KindModelUnavailable},
		{"not supported", errors.New("method not supported for this model"), KindModelUnavailable},
		{"other", errors.New("connection reset by peer"), KindTransport},
		{"first rule wins", errors.New("quota exceeded and rate limit"), KindQuotaExceeded},
	} {
		t.Run(tc.name, func(t *testing.T) {
			model := newFakeModel(replyWith("", tc.err))
			a := NewAnalyzer(model, AnalyzerConfig{Mode: config.ModeStrict}, nil)

			_, err := a.Analyze(context.Background(), sampleInput)

			var ae *AnalysisError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tc.kind, ae.Kind)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, 1, model.callCount())
		})
	}
}

func TestAnalyzeEmptyReplyIsTransport(t *testing.T) {
	a := NewAnalyzer(newFakeModel(replyWith("  ", nil)), AnalyzerConfig{Mode: config.ModeStrict}, nil)

	_, err := a.Analyze(context.Background(), sampleInput)
	assert.True(t, IsAnalysisErrorKind(err, KindTransport))
}

func TestAnalyzeParseFailure(t *testing.T) {
	model := newFakeModel(replyWith("OVERALL_SCORE: 150\nSUMMARY: x\nMATCHING_SKILLS: a\nMISSING_SKILLS: b\nDETAILED_ANALYSIS: y", nil))

	strict := NewAnalyzer(model, AnalyzerConfig{Mode: config.ModeStrict}, nil)
	_, err := strict.Analyze(context.Background(), sampleInput)
	require.True(t, IsAnalysisErrorKind(err, KindParse))
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))

	degraded := NewAnalyzer(model, AnalyzerConfig{Mode: config.ModeDegraded}, nil)
	result, err := degraded.Analyze(context.Background(), sampleInput)
	require.NoError(t, err)
	assert.True(t, result.IsFallback())
	assert.Equal(t, 0.0, result.OverallScore)
	assert.Equal(t, "Analysis failed due to an error with the AI service.", result.DetailedAnalysis)
	assert.Contains(t, result.Summary, "Error analyzing CV: ")
	assert.NotNil(t, result.MatchingSkills)
	assert.NotNil(t, result.MissingSkills)
}

func TestAnalyzeValidationInBothModes(t *testing.T) {
	for _, mode := range []string{config.ModeStrict, config.ModeDegraded} {
		model := newFakeModel(replyWith(wellFormedReply, nil))
		a := NewAnalyzer(model, AnalyzerConfig{Mode: mode}, nil)

		for _, in := range []AnalysisInput{
			{JobDescription: "x", Requirements: nil, CandidateText: "cv"},
			{JobDescription: "x", Requirements: []string{"Go", " "}, CandidateText: "cv"},
			{JobDescription: "x", Requirements: []string{"Go"}, CandidateText: " \n"},
		} {
			_, err := a.Analyze(context.Background(), in)
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve), "mode %s", mode)
		}
		assert.Zero(t, model.callCount())
	}
}

func TestNewAnalyzerDefaultsToStrict(t *testing.T) {
	a := NewAnalyzer(newFakeModel(replyWith("", nil)), AnalyzerConfig{Mode: "lenient"}, nil)
	assert.Equal(t, config.ModeStrict, a.Mode())
}

func TestFallbackResultCarriesError(t *testing.T) {
	result := NewFallbackResult(errors.New("boom"))

	require.NotNil(t, result.Error)
	assert.Equal(t, "boom", *result.Error)
	assert.Equal(t, "Error analyzing CV: boom", result.Summary)
}
