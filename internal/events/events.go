package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event topic constants
const (
	TopicRefreshJobs = "skillgraph.refresh.jobs"
	TopicRefreshUser = "skillgraph.refresh.user"

	// TopicRefreshAll matches every refresh topic.
	TopicRefreshAll = "skillgraph.refresh.>"
)

// Refresh scopes.
const (
	ScopeJobs = "jobs"
	ScopeUser = "user"
)

// Refresh asks live views of a source to refetch their graph and restart the
// layout. UserID narrows a user refresh to one profile.
type Refresh struct {
	Scope  string `json:"scope"`
	UserID string `json:"user_id,omitempty"`
}

// Validate checks the scope and that user refreshes name a user.
func (r Refresh) Validate() error {
	switch r.Scope {
	case ScopeJobs:
		return nil
	case ScopeUser:
		if r.UserID == "" {
			return fmt.Errorf("user refresh requires user_id")
		}
		return nil
	}
	return fmt.Errorf("unknown refresh scope %q", r.Scope)
}

// Topic returns the subject a refresh is published on.
func (r Refresh) Topic() string {
	if r.Scope == ScopeUser {
		return TopicRefreshUser
	}
	return TopicRefreshJobs
}

// ParseRefresh decodes and validates a refresh payload.
func ParseRefresh(data []byte) (Refresh, error) {
	var r Refresh
	if err := json.Unmarshal(data, &r); err != nil {
		return Refresh{}, fmt.Errorf("decoding refresh: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Refresh{}, err
	}
	return r, nil
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
