// Package provider turns stored jobs, user profiles and the static role
// taxonomy into GraphData for the layout engine.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"github.com/fractionaljobsuk/skillgraph/internal/store"
)

var (
	// ErrUnknownRole is returned for a role key outside the taxonomy.
	ErrUnknownRole = errors.New("unknown role")
	// ErrUserIDRequired is returned when a user graph is requested without an id.
	ErrUserIDRequired = errors.New("userId required")
	// ErrUnknownSource is returned by ParseSource for an unrecognized path.
	ErrUnknownSource = errors.New("unknown graph source")
)

// Source kinds.
const (
	KindRoles = "roles"
	KindJobs  = "jobs"
	KindUser  = "user"
)

// Source names one graph a caller can render: a role taxonomy, a jobs query
// or a user profile.
type Source struct {
	Kind   string
	Role   string
	Jobs   JobsQuery
	UserID string
}

// ParseSource resolves a path such as "roles/cfo", "jobs" or "user" plus its
// query parameters (role, q, limit, userId).
func ParseSource(path string, q url.Values) (Source, error) {
	path = strings.Trim(path, "/")
	kind, rest, _ := strings.Cut(path, "/")
	switch kind {
	case KindRoles:
		if rest == "" {
			return Source{}, fmt.Errorf("%w: missing role", ErrUnknownRole)
		}
		return Source{Kind: KindRoles, Role: strings.ToLower(rest)}, nil
	case KindJobs:
		src := Source{Kind: KindJobs, Jobs: JobsQuery{Role: q.Get("role"), Search: q.Get("q")}}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				src.Jobs.Limit = n
			}
		}
		return src, nil
	case KindUser:
		id := q.Get("userId")
		if id == "" {
			id = rest
		}
		if id == "" {
			return Source{}, ErrUserIDRequired
		}
		return Source{Kind: KindUser, UserID: id}, nil
	}
	return Source{}, fmt.Errorf("%w: %q", ErrUnknownSource, path)
}

// Name is a file-name friendly identifier, e.g. "roles-cfo" or "user-42".
func (s Source) Name() string {
	switch s.Kind {
	case KindRoles:
		return "roles-" + s.Role
	case KindUser:
		return "user-" + s.UserID
	}
	return s.Kind
}

// Path is the inverse of ParseSource: the source path and query that
// resolve back to s.
func (s Source) Path() (string, url.Values) {
	q := url.Values{}
	switch s.Kind {
	case KindRoles:
		return KindRoles + "/" + url.PathEscape(s.Role), q
	case KindJobs:
		if s.Jobs.Role != "" {
			q.Set("role", s.Jobs.Role)
		}
		if s.Jobs.Search != "" {
			q.Set("q", s.Jobs.Search)
		}
		if s.Jobs.Limit > 0 {
			q.Set("limit", strconv.Itoa(s.Jobs.Limit))
		}
	case KindUser:
		q.Set("userId", s.UserID)
	}
	return s.Kind, q
}

// Providers bundles the three graph builders.
type Providers struct {
	Taxonomy Taxonomy
	Jobs     *Jobs
	User     *User
}

// New creates the providers. st may be nil, in which case only the role
// taxonomy is available and the others return store.ErrNotConfigured.
func New(st store.Store) *Providers {
	return &Providers{
		Jobs: NewJobs(st),
		User: NewUser(st),
	}
}

// Fetch builds the GraphData for src.
func (p *Providers) Fetch(ctx context.Context, src Source) (*model.GraphData, error) {
	switch src.Kind {
	case KindRoles:
		rg, err := p.Taxonomy.Build(src.Role)
		if err != nil {
			return nil, err
		}
		return rg.Graph, nil
	case KindJobs:
		jg, err := p.Jobs.Build(ctx, src.Jobs)
		if err != nil {
			return nil, err
		}
		return jg.Graph, nil
	case KindUser:
		ug, err := p.User.Build(ctx, src.UserID)
		if err != nil {
			return nil, err
		}
		return ug.Graph, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, src.Kind)
}

// slug lowercases s and replaces whitespace runs with "-".
func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

func emptyGraph() *model.GraphData {
	return &model.GraphData{Nodes: []model.Node{}, Edges: []model.Edge{}}
}
