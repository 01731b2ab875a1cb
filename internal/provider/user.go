package provider

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"github.com/fractionaljobsuk/skillgraph/internal/store"
)

const (
	userSkillsLimit      = 20
	userCompaniesLimit   = 10
	userPreferencesLimit = 10
	matchedJobsLimit     = 5
	matchCandidates      = 50

	defaultConfidence = 0.8
	defaultCategory   = "other"
)

// User builds a profile graph around one user.
type User struct {
	store store.Store
}

// NewUser creates a user provider. st may be nil.
func NewUser(st store.Store) *User {
	return &User{store: st}
}

// MatchedJob is a job scored against a user's skills.
type MatchedJob struct {
	Job   *model.Job
	Score float64 // share of the job's skills the user has, 0..1
}

// Build loads the user's skills, employers and preferences and matches them
// against recent jobs. A user with no profile data gets an empty graph.
func (p *User) Build(ctx context.Context, userID string) (*model.UserGraph, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if p == nil || p.store == nil {
		return nil, store.ErrNotConfigured
	}

	skills, err := p.store.ListUserSkills(ctx, userID, userSkillsLimit)
	if err != nil {
		return nil, fmt.Errorf("build user graph: %w", err)
	}
	companies, err := p.store.ListUserCompanies(ctx, userID, userCompaniesLimit)
	if err != nil {
		return nil, fmt.Errorf("build user graph: %w", err)
	}
	prefs, err := p.store.ListUserPreferences(ctx, userID, userPreferencesLimit)
	if err != nil {
		return nil, fmt.Errorf("build user graph: %w", err)
	}

	stats := &model.UserGraphStats{
		SkillCount:      len(skills),
		CompanyCount:    len(companies),
		PreferenceCount: len(prefs),
	}
	if len(skills) == 0 && len(companies) == 0 && len(prefs) == 0 {
		return &model.UserGraph{Graph: emptyGraph(), Stats: stats}, nil
	}

	var matched []MatchedJob
	if len(skills) > 0 {
		jobs, err := p.store.ListJobs(ctx, model.JobFilter{Limit: matchCandidates})
		if err != nil {
			return nil, fmt.Errorf("build user graph: %w", err)
		}
		matched = MatchJobs(skills, jobs, matchedJobsLimit)
	}
	stats.MatchedJobCount = len(matched)

	return &model.UserGraph{
		Graph: BuildUserGraph(userID, skills, companies, prefs, matched),
		Stats: stats,
	}, nil
}

// MatchJobs scores each job by the share of its required skills found among
// the user's skills (case-insensitive) and returns the best n with a positive
// score. Ties keep the jobs' input order.
func MatchJobs(skills []*model.UserSkill, jobs []*model.Job, n int) []MatchedJob {
	have := make(map[string]bool, len(skills))
	for _, s := range skills {
		have[strings.ToLower(strings.TrimSpace(s.Name))] = true
	}

	var out []MatchedJob
	for _, j := range jobs {
		need := make(map[string]bool)
		for _, s := range j.SkillsRequired {
			need[strings.ToLower(strings.TrimSpace(s))] = true
		}
		if len(need) == 0 {
			continue
		}
		hits := 0
		for s := range need {
			if have[s] {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		out = append(out, MatchedJob{Job: j, Score: float64(hits) / float64(len(need))})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// BuildUserGraph places the user at the center with skills, employers,
// preferences and matched jobs around it.
func BuildUserGraph(userID string, skills []*model.UserSkill, companies []*model.UserCompany, prefs []*model.UserPreference, matched []MatchedJob) *model.GraphData {
	g := emptyGraph()
	center := "user-" + userID
	g.Nodes = append(g.Nodes, model.Node{
		ID:    center,
		Type:  model.NodeUser,
		Label: "You",
		Data:  map[string]any{"central": true},
	})

	for _, s := range skills {
		confidence := s.Confidence
		if confidence <= 0 || math.IsNaN(confidence) {
			confidence = defaultConfidence
		}
		category := s.Category
		if category == "" {
			category = defaultCategory
		}
		id := "skill-" + s.SkillID
		g.Nodes = append(g.Nodes, model.Node{
			ID:    id,
			Type:  model.NodeSkill,
			Label: s.Name,
			Data:  map[string]any{"category": category, "confidence": confidence},
		})
		g.Edges = append(g.Edges, model.Edge{
			Source: center,
			Target: id,
			Type:   "has_skill",
			Weight: model.Weight(confidence),
			Label:  percent(confidence),
		})
	}

	for _, c := range companies {
		name := c.Name
		if name == "" {
			name = unknownCompany
		}
		id := "company-" + c.ID
		node := model.Node{ID: id, Type: model.NodeCompany, Label: name}
		if c.Role != "" {
			node.Data = map[string]any{"role": c.Role}
		}
		g.Nodes = append(g.Nodes, node)
		g.Edges = append(g.Edges, model.Edge{
			Source: center,
			Target: id,
			Type:   "worked_at",
			Label:  c.Role,
		})
	}

	for i, pr := range prefs {
		id := "pref-" + strconv.Itoa(i)
		g.Nodes = append(g.Nodes, model.Node{
			ID:    id,
			Type:  model.NodePreference,
			Label: pr.Value,
			Data:  map[string]any{"type": pr.Type},
		})
		g.Edges = append(g.Edges, model.Edge{
			Source: center,
			Target: id,
			Type:   "prefers",
			Label:  pr.Type,
		})
	}

	for _, m := range matched {
		id := "job-" + m.Job.ID
		score := math.Round(m.Score*100) / 100
		g.Nodes = append(g.Nodes, model.Node{
			ID:    id,
			Type:  model.NodeJob,
			Label: m.Job.Title,
			Data:  map[string]any{"company": companyName(m.Job), "matchScore": score},
		})
		g.Edges = append(g.Edges, model.Edge{
			Source: center,
			Target: id,
			Type:   "matches",
			Weight: model.Weight(score),
			Label:  percent(score) + " match",
		})
	}
	return g
}

func percent(f float64) string {
	return strconv.Itoa(int(math.Round(f*100))) + "%"
}
