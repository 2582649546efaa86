package services

import (
	"fmt"
	"strings"
)

// Reply labels, in the order the model is asked to write them.
const (
	LabelOverallScore     = "OVERALL_SCORE"
	LabelSummary          = "SUMMARY"
	LabelMatchingSkills   = "MATCHING_SKILLS"
	LabelMissingSkills    = "MISSING_SKILLS"
	LabelDetailedAnalysis = "DETAILED_ANALYSIS"
)

var replyLabels = []string{
	LabelOverallScore,
	LabelSummary,
	LabelMatchingSkills,
	LabelMissingSkills,
	LabelDetailedAnalysis,
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt creates the prompt for scoring one CV against a job.
// Inputs are embedded verbatim.
func (pb *PromptBuilder) BuildAnalysisPrompt(jobDescription string, requirements []string, cvText string) string {
	return fmt.Sprintf(`You are an expert HR recruiter analyzing a CV against a specific job description.
Please provide a structured analysis in the following EXACT format:

%s: [score from 0-100]
%s: [2-3 sentence summary of candidate fit]
%s: [comma-separated list of skills found in CV that match job requirements]
%s: [comma-separated list of required skills not found in CV]
%s: [detailed paragraph analysis of strengths, weaknesses, and overall fit]

Job Description:
%s

Job Requirements:
%s

CV Content:
%s

Please analyze how well this candidate matches the job requirements and provide the response in the EXACT format specified above.`,
		LabelOverallScore,
		LabelSummary,
		LabelMatchingSkills,
		LabelMissingSkills,
		LabelDetailedAnalysis,
		jobDescription,
		FormatRequirements(requirements),
		cvText)
}

// FormatRequirements renders requirements as "- item" lines in input order.
func FormatRequirements(requirements []string) string {
	lines := make([]string, len(requirements))
	for i, req := range requirements {
		lines[i] = "- " + req
	}
	return strings.Join(lines, "\n")
}

// BuildRetrievalQuery creates the text embedded to shortlist CVs for a job.
func (pb *PromptBuilder) BuildRetrievalQuery(jobDescription string, requirements []string) string {
	query := strings.TrimSpace(jobDescription)
	if len(requirements) == 0 {
		return query
	}
	return fmt.Sprintf("%s\n\nRequired skills and qualifications:\n%s", query, FormatRequirements(requirements))
}
