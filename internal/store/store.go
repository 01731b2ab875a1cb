package store

import (
	"context"
	"errors"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

// ErrNotConfigured is returned by providers that need a database when the
// server runs without one.
var ErrNotConfigured = errors.New("database not configured")

// Store defines the read-only persistence interface behind the jobs and user
// graph providers.
type Store interface {
	// Jobs
	ListJobs(ctx context.Context, filter model.JobFilter) ([]*model.Job, error)

	// User profile
	ListUserSkills(ctx context.Context, userID string, limit int) ([]*model.UserSkill, error)
	ListUserCompanies(ctx context.Context, userID string, limit int) ([]*model.UserCompany, error)
	ListUserPreferences(ctx context.Context, userID string, limit int) ([]*model.UserPreference, error)

	// Lifecycle
	Close() error
}
