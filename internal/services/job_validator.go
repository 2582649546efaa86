package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/resumatch/internal/models"
)

// ErrInvalidJobJSON is returned for an uploaded job file that is not JSON.
var ErrInvalidJobJSON = errors.New("Invalid JSON format")

// jobFileSchema describes an uploaded job description file.
var jobFileSchema = gojsonschema.NewGoLoader(map[string]any{
	"type":     "object",
	"required": []any{"title", "description", "requirements"},
	"properties": map[string]any{
		"title": map[string]any{
			"type":      "string",
			"minLength": 1,
			"maxLength": models.MaxJobTitleLength,
		},
		"description": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"requirements": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"type": "string"},
		},
	},
})

// SchemaError lists the violations of an uploaded job file.
type SchemaError struct {
	Details []string
}

func (e *SchemaError) Error() string {
	return "JSON must contain title, description, and requirements fields"
}

// ParseJobFile validates an uploaded job description file and decodes it.
func ParseJobFile(data []byte) (*models.JobDescriptionCreate, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ErrInvalidJobJSON
	}

	result, err := gojsonschema.Validate(jobFileSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			details[i] = desc.String()
		}
		return nil, &SchemaError{Details: details}
	}

	var job models.JobDescriptionCreate
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, ErrInvalidJobJSON
	}

	if err := ValidateJobCreate(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ValidateJobCreate trims the request in place and checks its shape.
func ValidateJobCreate(job *models.JobDescriptionCreate) error {
	job.Title = strings.TrimSpace(job.Title)
	job.Description = strings.TrimSpace(job.Description)

	if job.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if utf8.RuneCountInString(job.Title) > models.MaxJobTitleLength {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", models.MaxJobTitleLength)}
	}
	if job.Description == "" {
		return &ValidationError{Field: "description", Message: "description is required"}
	}

	reqs := make([]string, 0, len(job.Requirements))
	for _, r := range job.Requirements {
		if r = strings.TrimSpace(r); r != "" {
			reqs = append(reqs, r)
		}
	}
	if len(reqs) == 0 {
		return &ValidationError{Field: "requirements", Message: "at least one requirement is required"}
	}
	job.Requirements = reqs

	return nil
}
