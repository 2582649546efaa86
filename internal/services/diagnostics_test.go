package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resumatch/internal/config"
	"alfredoptarigan/resumatch/internal/models"
	"alfredoptarigan/resumatch/internal/repositories"
)

type memJobRepo struct {
	jobs      map[uuid.UUID]*models.JobDescription
	createErr error
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: map[uuid.UUID]*models.JobDescription{}}
}

func (r *memJobRepo) Create(job *models.JobDescription) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, j := range r.jobs {
		if j.Title == job.Title {
			return repositories.ErrDuplicateTitle
		}
	}
	job.ID = uuid.New()
	r.jobs[job.ID] = job
	return nil
}

func (r *memJobRepo) FindByID(id uuid.UUID) (*models.JobDescription, error) {
	if j, ok := r.jobs[id]; ok {
		return j, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *memJobRepo) FindByTitle(title string) (*models.JobDescription, error) {
	for _, j := range r.jobs {
		if j.Title == title {
			return j, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memJobRepo) FindActive() ([]models.JobDescription, error) {
	var out []models.JobDescription
	for _, j := range r.jobs {
		if j.Active {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *memJobRepo) Deactivate(id uuid.UUID) error {
	j, ok := r.jobs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	j.Active = false
	return nil
}

func (r *memJobRepo) DeleteByTitle(title string) error {
	for id, j := range r.jobs {
		if j.Title == title {
			delete(r.jobs, id)
		}
	}
	return nil
}

type memCVRepo struct {
	cvs []*models.CVFile
}

func (r *memCVRepo) Create(cv *models.CVFile) error {
	cv.ID = uuid.New()
	r.cvs = append(r.cvs, cv)
	return nil
}

func (r *memCVRepo) FindByID(id uuid.UUID) (*models.CVFile, error) {
	for _, cv := range r.cvs {
		if cv.ID == id {
			return cv, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memCVRepo) FindByIDs(ids []uuid.UUID) ([]models.CVFile, error) {
	out := []models.CVFile{}
	for _, id := range ids {
		if cv, err := r.FindByID(id); err == nil {
			out = append(out, *cv)
		}
	}
	return out, nil
}

func (r *memCVRepo) FindAll() ([]models.CVFile, error) {
	out := make([]models.CVFile, len(r.cvs))
	for i, cv := range r.cvs {
		out[i] = *cv
	}
	return out, nil
}

func newTestDiagnostics(ping func(context.Context) error, model *fakeModel, mode string) (DiagnosticsService, *memJobRepo, *memCVRepo) {
	jobs, cvs := newMemJobRepo(), &memCVRepo{}
	a := NewAnalyzer(model, AnalyzerConfig{Mode: mode}, nil)
	return NewDiagnosticsService(ping, jobs, cvs, a, NewRanker(a, 1, nil), nil), jobs, cvs
}

func okPing(context.Context) error { return nil }

func TestDiagnosticsAllStagesSucceed(t *testing.T) {
	d, jobs, cvs := newTestDiagnostics(okPing, newFakeModel(replyWith(wellFormedReply, nil)), config.ModeStrict)

	resp := d.Run(context.Background())

	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "All systems operational. ResuMatch is ready for use.", resp.Message)
	assert.Equal(t, StatusSuccess, resp.DatabaseTest.Status)
	assert.Equal(t, StatusSuccess, resp.SampleJob.Status)
	assert.Equal(t, StatusSuccess, resp.SampleCV.Status)
	assert.Equal(t, StatusSuccess, resp.AnalysisTest.Status)
	assert.Equal(t, 72.0, resp.AnalysisTest.Details["score"])
	assert.True(t, resp.AIConfigured)

	_, err := jobs.FindByTitle(SampleJobTitle)
	assert.NoError(t, err)
	require.Len(t, cvs.cvs, 1)
	assert.Equal(t, "test_candidate.txt", cvs.cvs[0].Filename)
}

func TestDiagnosticsReplacesSampleJob(t *testing.T) {
	d, jobs, _ := newTestDiagnostics(okPing, newFakeModel(replyWith(wellFormedReply, nil)), config.ModeStrict)

	d.Run(context.Background())
	resp := d.Run(context.Background())

	assert.Equal(t, StatusSuccess, resp.SampleJob.Status)
	assert.Len(t, jobs.jobs, 1)
}

func TestDiagnosticsUnconfiguredModelIsWarning(t *testing.T) {
	for _, mode := range []string{config.ModeStrict, config.ModeDegraded} {
		model := newFakeModel(replyWith(wellFormedReply, nil))
		model.configured = false
		d, _, _ := newTestDiagnostics(okPing, model, mode)

		resp := d.Run(context.Background())

		assert.Equal(t, StatusWarning, resp.AnalysisTest.Status, mode)
		assert.Equal(t, StatusWarning, resp.Status, mode)
		assert.False(t, resp.AIConfigured)
	}
}

func TestDiagnosticsDatabaseFailureSkipsDependentStages(t *testing.T) {
	d, _, cvs := newTestDiagnostics(func(context.Context) error { return errors.New("connection refused") },
		newFakeModel(replyWith(wellFormedReply, nil)), config.ModeStrict)

	resp := d.Run(context.Background())

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, StatusError, resp.DatabaseTest.Status)
	assert.Contains(t, resp.SampleJob.Message, "skipped")
	assert.Contains(t, resp.SampleCV.Message, "skipped")
	assert.Equal(t, StatusSuccess, resp.AnalysisTest.Status)
	assert.Contains(t, resp.Message, "System test failed: Database connection failed: connection refused")
	assert.Empty(t, cvs.cvs)
}

func TestDiagnosticsModelFailureInStrictMode(t *testing.T) {
	d, _, _ := newTestDiagnostics(okPing, newFakeModel(replyWith("", errors.New("quota exceeded"))), config.ModeStrict)

	resp := d.Run(context.Background())

	assert.Equal(t, StatusError, resp.AnalysisTest.Status)
	assert.Equal(t, StatusSuccess, resp.SampleJob.Status)
	assert.Equal(t, StatusError, resp.Status)
}

func TestDiagnosticsSampleJobFailure(t *testing.T) {
	d, jobs, _ := newTestDiagnostics(okPing, newFakeModel(replyWith(wellFormedReply, nil)), config.ModeStrict)
	jobs.createErr = errors.New("disk full")

	resp := d.Run(context.Background())

	assert.Equal(t, StatusError, resp.SampleJob.Status)
	assert.Equal(t, StatusSuccess, resp.SampleCV.Status)
	assert.Equal(t, "System test failed: disk full", resp.Message)
}
