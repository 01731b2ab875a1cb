package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"github.com/fractionaljobsuk/skillgraph/internal/store"
)

const (
	DefaultJobsLimit = 20
	MaxJobsLimit     = 100

	topSkillsLimit    = 10
	topCompaniesLimit = 5

	unknownCompany  = "Unknown Company"
	defaultLocation = "UK"
)

// JobsQuery selects the jobs behind a jobs graph. Role and Search both apply
// when set.
type JobsQuery struct {
	Role   string `json:"role,omitempty"`
	Search string `json:"q,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

func (q JobsQuery) limit() int {
	switch {
	case q.Limit <= 0:
		return DefaultJobsLimit
	case q.Limit > MaxJobsLimit:
		return MaxJobsLimit
	}
	return q.Limit
}

// Jobs builds job/company/skill graphs from active fractional listings.
type Jobs struct {
	store store.Store
}

// NewJobs creates a jobs provider. st may be nil.
func NewJobs(st store.Store) *Jobs {
	return &Jobs{store: st}
}

// Build fetches the matching jobs and assembles the graph and its stats.
func (p *Jobs) Build(ctx context.Context, q JobsQuery) (*model.JobsGraph, error) {
	if p == nil || p.store == nil {
		return nil, store.ErrNotConfigured
	}
	jobs, err := p.store.ListJobs(ctx, model.JobFilter{Role: q.Role, Search: q.Search, Limit: q.limit()})
	if err != nil {
		return nil, fmt.Errorf("build jobs graph: %w", err)
	}
	return &model.JobsGraph{
		Graph: BuildJobsGraph(jobs),
		Stats: JobsStats(jobs),
	}, nil
}

// BuildJobsGraph links every job to its company and required skills.
// Company and skill nodes are keyed by slug, so names that slug alike share
// a node. requires_skill edges weigh the fraction of jobs needing the skill.
func BuildJobsGraph(jobs []*model.Job) *model.GraphData {
	g := emptyGraph()
	if len(jobs) == 0 {
		return g
	}

	seen := make(map[string]bool)
	skillJobs := make(map[string]int)
	for _, j := range jobs {
		for _, id := range jobSkillIDs(j) {
			skillJobs[id]++
		}
	}

	for _, j := range jobs {
		company := companyName(j)
		location := j.Location
		if location == "" {
			location = defaultLocation
		}

		jobID := "job-" + j.ID
		g.Nodes = append(g.Nodes, model.Node{
			ID:    jobID,
			Type:  model.NodeJob,
			Label: j.Title,
			Data:  map[string]any{"company": company, "location": location},
		})

		companyID := "company-" + slug(company)
		if !seen[companyID] {
			seen[companyID] = true
			g.Nodes = append(g.Nodes, model.Node{ID: companyID, Type: model.NodeCompany, Label: company})
		}
		g.Edges = append(g.Edges, model.Edge{
			Source: jobID,
			Target: companyID,
			Type:   "at_company",
			Weight: model.Weight(1),
		})

		linked := make(map[string]bool)
		for _, name := range j.SkillsRequired {
			skillID := "skill-" + slug(name)
			if skillID == "skill-" || linked[skillID] {
				continue
			}
			linked[skillID] = true
			if !seen[skillID] {
				seen[skillID] = true
				g.Nodes = append(g.Nodes, model.Node{
					ID:    skillID,
					Type:  model.NodeSkill,
					Label: name,
					Data:  map[string]any{"jobs": skillJobs[skillID]},
				})
			}
			g.Edges = append(g.Edges, model.Edge{
				Source: jobID,
				Target: skillID,
				Type:   "requires_skill",
				Weight: model.Weight(float64(skillJobs[skillID]) / float64(len(jobs))),
			})
		}
	}
	return g
}

// JobsStats counts skills and companies across jobs. Rankings are by count,
// ties in first-seen order.
func JobsStats(jobs []*model.Job) *model.JobsGraphStats {
	var (
		skillOrder, companyOrder []string
		skillCounts              = make(map[string]int)
		companyCounts            = make(map[string]int)
	)
	for _, j := range jobs {
		c := companyName(j)
		if companyCounts[c] == 0 {
			companyOrder = append(companyOrder, c)
		}
		companyCounts[c]++
		for _, s := range j.SkillsRequired {
			if skillCounts[s] == 0 {
				skillOrder = append(skillOrder, s)
			}
			skillCounts[s]++
		}
	}

	sort.SliceStable(skillOrder, func(a, b int) bool { return skillCounts[skillOrder[a]] > skillCounts[skillOrder[b]] })
	sort.SliceStable(companyOrder, func(a, b int) bool { return companyCounts[companyOrder[a]] > companyCounts[companyOrder[b]] })

	stats := &model.JobsGraphStats{
		TotalJobs:       len(jobs),
		UniqueSkills:    len(skillCounts),
		UniqueCompanies: len(companyCounts),
		TopSkills:       []model.SkillCount{},
		TopCompanies:    []model.CompanyCount{},
	}
	for i, s := range skillOrder {
		if i == topSkillsLimit {
			break
		}
		stats.TopSkills = append(stats.TopSkills, model.SkillCount{Skill: s, Count: skillCounts[s]})
	}
	for i, c := range companyOrder {
		if i == topCompaniesLimit {
			break
		}
		stats.TopCompanies = append(stats.TopCompanies, model.CompanyCount{Company: c, Count: companyCounts[c]})
	}
	return stats
}

func companyName(j *model.Job) string {
	if j.CompanyName == "" {
		return unknownCompany
	}
	return j.CompanyName
}

// jobSkillIDs returns the distinct skill node ids of j.
func jobSkillIDs(j *model.Job) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, name := range j.SkillsRequired {
		id := "skill-" + slug(name)
		if id == "skill-" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
