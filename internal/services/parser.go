package services

import (
	"regexp"
	"strconv"
	"strings"
)

var scorePattern = regexp.MustCompile(`^[\[(]?\s*([-+]?\d+)`)

// segmentCutset is trimmed from both ends of every captured field.
// Models often wrap labels in markdown bold.
const segmentCutset = " \t\r\n*"

// ParseAnalysisReply extracts the five labelled fields from a model reply.
//
// Each field runs from its label to the nearest following label, or to the end
// of the reply, so prose around the sections and out-of-order sections are
// tolerated. Every label must be present, the score must be an integer in
// [0,100] and the summary and detailed analysis must not be empty. Skill lists
// may be empty.
func ParseAnalysisReply(raw string) (*AnalysisResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Reason: "empty response"}
	}

	segments, err := extractSegments(raw)
	if err != nil {
		return nil, err
	}

	score, err := parseScore(segments[LabelOverallScore])
	if err != nil {
		return nil, err
	}

	summary := segments[LabelSummary]
	if summary == "" {
		return nil, &ParseError{Field: LabelSummary, Reason: "summary cannot be empty"}
	}

	detailed := segments[LabelDetailedAnalysis]
	if detailed == "" {
		return nil, &ParseError{Field: LabelDetailedAnalysis, Reason: "detailed analysis cannot be empty"}
	}

	return &AnalysisResult{
		OverallScore:     score,
		Summary:          summary,
		MatchingSkills:   splitSkills(segments[LabelMatchingSkills]),
		MissingSkills:    splitSkills(segments[LabelMissingSkills]),
		DetailedAnalysis: detailed,
	}, nil
}

type labelSpan struct {
	label string
	start int // index of the label
	body  int // index just past "LABEL:"
}

func extractSegments(raw string) (map[string]string, error) {
	spans := make([]labelSpan, 0, len(replyLabels))
	for _, label := range replyLabels {
		marker := label + ":"
		idx := strings.Index(raw, marker)
		if idx < 0 {
			return nil, &ParseError{Field: label, Reason: "section missing from response"}
		}
		spans = append(spans, labelSpan{label: label, start: idx, body: idx + len(marker)})
	}

	segments := make(map[string]string, len(spans))
	for _, span := range spans {
		end := len(raw)
		for _, other := range spans {
			if other.start >= span.body && other.start < end {
				end = other.start
			}
		}
		segments[span.label] = strings.Trim(raw[span.body:end], segmentCutset)
	}

	return segments, nil
}

func parseScore(segment string) (float64, error) {
	m := scorePattern.FindStringSubmatch(segment)
	if m == nil {
		return 0, &ParseError{Field: LabelOverallScore, Reason: "score is missing or not a number"}
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &ParseError{Field: LabelOverallScore, Reason: "score is not a valid number"}
	}

	if n < 0 || n > 100 {
		return 0, &ParseError{Field: LabelOverallScore, Reason: "score must be between 0 and 100"}
	}

	return float64(n), nil
}

// splitSkills splits on commas, trims and drops empty entries. Order, case and
// duplicates are preserved.
func splitSkills(segment string) []string {
	skills := []string{}
	for _, part := range strings.Split(segment, ",") {
		if part = strings.TrimSpace(part); part != "" {
			skills = append(skills, part)
		}
	}
	return skills
}
