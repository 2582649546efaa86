package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedReply = "OVERALL_SCORE: 72\nSUMMARY: Good fit.\nMATCHING_SKILLS: Python\nMISSING_SKILLS: SQL\nDETAILED_ANALYSIS: Solid backend experience."

func TestParseAnalysisReplyWellFormed(t *testing.T) {
	result, err := ParseAnalysisReply(wellFormedReply)
	require.NoError(t, err)

	assert.Equal(t, 72.0, result.OverallScore)
	assert.Equal(t, "Good fit.", result.Summary)
	assert.Equal(t, []string{"Python"}, result.MatchingSkills)
	assert.Equal(t, []string{"SQL"}, result.MissingSkills)
	assert.Equal(t, "Solid backend experience.", result.DetailedAnalysis)
	assert.Nil(t, result.Error)
	assert.False(t, result.IsFallback())
}

func TestParseAnalysisReplyScoreBounds(t *testing.T) {
	for _, tc := range []struct {
		raw   string
		score float64
	}{
		{"0", 0},
		{"100", 100},
		{"[85]", 85},
		{"72.5", 72},
		{"64/100", 64},
		{"  **90** out of 100", 90},
	} {
		t.Run(tc.raw, func(t *testing.T) {
			reply := strings.Replace(wellFormedReply, "OVERALL_SCORE: 72", "OVERALL_SCORE: "+tc.raw, 1)
			result, err := ParseAnalysisReply(reply)
			require.NoError(t, err)
			assert.Equal(t, tc.score, result.OverallScore)
		})
	}
}

func TestParseAnalysisReplyRejectsBadScore(t *testing.T) {
	for _, raw := range []string{"150", "-5", "high", "", "99999999999999999999999"} {
		t.Run(raw, func(t *testing.T) {
			reply := strings.Replace(wellFormedReply, "OVERALL_SCORE: 72", "OVERALL_SCORE: "+raw, 1)
			_, err := ParseAnalysisReply(reply)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, LabelOverallScore, pe.Field)
		})
	}
}

func TestParseAnalysisReplyMissingSection(t *testing.T) {
	reply := "OVERALL_SCORE: 72\nSUMMARY: Good fit.\nMATCHING_SKILLS: Python\nDETAILED_ANALYSIS: Solid backend experience."

	_, err := ParseAnalysisReply(reply)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, LabelMissingSkills, pe.Field)
}

func TestParseAnalysisReplyEmpty(t *testing.T) {
	_, err := ParseAnalysisReply("   \n")

	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestParseAnalysisReplyReorderedSections(t *testing.T) {
	reply := "SUMMARY: Good fit.\nDETAILED_ANALYSIS: Solid backend experience.\nMISSING_SKILLS: SQL\nOVERALL_SCORE: 72\nMATCHING_SKILLS: Python, Go"

	result, err := ParseAnalysisReply(reply)
	require.NoError(t, err)

	assert.Equal(t, 72.0, result.OverallScore)
	assert.Equal(t, "Good fit.", result.Summary)
	assert.Equal(t, "Solid backend experience.", result.DetailedAnalysis)
	assert.Equal(t, []string{"SQL"}, result.MissingSkills)
	assert.Equal(t, []string{"Python", "Go"}, result.MatchingSkills)
}

func TestParseAnalysisReplyMarkdownAndProse(t *testing.T) {
	reply := `Here is my analysis:

**OVERALL_SCORE:** 81
**SUMMARY:** Strong candidate
with relevant experience.
**MATCHING_SKILLS:** Go , Kubernetes,, Docker
**MISSING_SKILLS:**
**DETAILED_ANALYSIS:** Worked on distributed systems for five years.`

	result, err := ParseAnalysisReply(reply)
	require.NoError(t, err)

	assert.Equal(t, 81.0, result.OverallScore)
	assert.Equal(t, "Strong candidate\nwith relevant experience.", result.Summary)
	assert.Equal(t, []string{"Go", "Kubernetes", "Docker"}, result.MatchingSkills)
	assert.NotNil(t, result.MissingSkills)
	assert.Empty(t, result.MissingSkills)
	assert.Equal(t, "Worked on distributed systems for five years.", result.DetailedAnalysis)
}

func TestParseAnalysisReplyKeepsSkillItemsVerbatim(t *testing.T) {
	reply := strings.Replace(wellFormedReply, "MISSING_SKILLS: SQL", "MISSING_SKILLS: None", 1)
	reply = strings.Replace(reply, "MATCHING_SKILLS: Python", "MATCHING_SKILLS: python, Python, python", 1)

	result, err := ParseAnalysisReply(reply)
	require.NoError(t, err)

	assert.Equal(t, []string{"None"}, result.MissingSkills)
	assert.Equal(t, []string{"python", "Python", "python"}, result.MatchingSkills)
}

func TestParseAnalysisReplyRequiresSummaryAndAnalysis(t *testing.T) {
	noSummary := strings.Replace(wellFormedReply, "SUMMARY: Good fit.", "SUMMARY:  ", 1)
	_, err := ParseAnalysisReply(noSummary)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, LabelSummary, pe.Field)

	noDetail := strings.Replace(wellFormedReply, "DETAILED_ANALYSIS: Solid backend experience.", "DETAILED_ANALYSIS:", 1)
	_, err = ParseAnalysisReply(noDetail)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, LabelDetailedAnalysis, pe.Field)
}

func TestPromptRoundTrip(t *testing.T) {
	pb := NewPromptBuilder()
	prompt := pb.BuildAnalysisPrompt("Backend engineer", []string{"Go", "PostgreSQL"}, "Five years of Go.")

	for _, label := range replyLabels {
		assert.Contains(t, prompt, label+":")
	}
	assert.Contains(t, prompt, "- Go\n- PostgreSQL")
	assert.Contains(t, prompt, "Five years of Go.")

	// A reply written in the requested format parses back.
	reply := "OVERALL_SCORE: 88\nSUMMARY: Fits.\nMATCHING_SKILLS: Go, PostgreSQL\nMISSING_SKILLS: \nDETAILED_ANALYSIS: Good."
	result, err := ParseAnalysisReply(reply)
	require.NoError(t, err)
	assert.Equal(t, 88.0, result.OverallScore)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, result.MatchingSkills)
}

func TestBuildRetrievalQuery(t *testing.T) {
	pb := NewPromptBuilder()

	assert.Equal(t, "Backend engineer", pb.BuildRetrievalQuery("  Backend engineer ", nil))
	assert.Equal(t,
		"Backend engineer\n\nRequired skills and qualifications:\n- Go",
		pb.BuildRetrievalQuery("Backend engineer", []string{"Go"}))
}
