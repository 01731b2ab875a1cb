package provider

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"github.com/fractionaljobsuk/skillgraph/internal/store"
)

// fakeStore is an in-memory store.Store that records the filters it was asked for.
type fakeStore struct {
	jobs       []*model.Job
	skills     []*model.UserSkill
	companies  []*model.UserCompany
	prefs      []*model.UserPreference
	err        error
	jobFilters []model.JobFilter
	userLimits map[string]int
}

func (f *fakeStore) ListJobs(_ context.Context, filter model.JobFilter) ([]*model.Job, error) {
	f.jobFilters = append(f.jobFilters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return f.jobs, nil
}

func (f *fakeStore) record(name string, limit int) {
	if f.userLimits == nil {
		f.userLimits = make(map[string]int)
	}
	f.userLimits[name] = limit
}

func (f *fakeStore) ListUserSkills(_ context.Context, _ string, limit int) ([]*model.UserSkill, error) {
	f.record("skills", limit)
	return f.skills, f.err
}

func (f *fakeStore) ListUserCompanies(_ context.Context, _ string, limit int) ([]*model.UserCompany, error) {
	f.record("companies", limit)
	return f.companies, nil
}

func (f *fakeStore) ListUserPreferences(_ context.Context, _ string, limit int) ([]*model.UserPreference, error) {
	f.record("prefs", limit)
	return f.prefs, nil
}

func (f *fakeStore) Close() error { return nil }

var _ store.Store = (*fakeStore)(nil)

func findNode(g *model.GraphData, id string) (model.Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return model.Node{}, false
}

func findEdge(g *model.GraphData, source, target string) (model.Edge, bool) {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return e, true
		}
	}
	return model.Edge{}, false
}

func TestTaxonomy_Build(t *testing.T) {
	rg, err := Taxonomy{}.Build("CFO")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rg.Role.Key != "cfo" || rg.Role.Label != "CFO" {
		t.Errorf("role = %+v", rg.Role)
	}
	g := rg.Graph
	if len(g.Nodes) != 16 || len(g.Edges) != 15 {
		t.Fatalf("got %d nodes, %d edges; want 16, 15", len(g.Nodes), len(g.Edges))
	}
	center := g.Nodes[0]
	if center.ID != "role-cfo" || center.Type != model.NodeJob || center.Label != "Part-Time CFO" {
		t.Errorf("center = %+v", center)
	}

	for _, tc := range []struct {
		id       string
		typ      model.NodeType
		label    string
		edgeType string
		category string
		weight   float64
	}{
		{"core-0", model.NodeSkill, "Financial Planning & Analysis", "requires", "core", 3},
		{"tech-1", model.NodeFact, "ERP Systems", "uses", "technical", 2},
		{"soft-4", model.NodePreference, "Team Leadership", "demonstrates", "soft", 1},
	} {
		t.Run(tc.id, func(t *testing.T) {
			n, ok := findNode(g, tc.id)
			if !ok {
				t.Fatalf("node %s missing", tc.id)
			}
			if n.Type != tc.typ || n.Label != tc.label || n.Data["category"] != tc.category {
				t.Errorf("node = %+v", n)
			}
			e, ok := findEdge(g, "role-cfo", tc.id)
			if !ok {
				t.Fatalf("edge to %s missing", tc.id)
			}
			if e.Type != tc.edgeType || e.Label != tc.category || e.EffectiveWeight() != tc.weight {
				t.Errorf("edge = %+v (weight %v)", e, e.EffectiveWeight())
			}
		})
	}
}

func TestTaxonomy_UnknownRole(t *testing.T) {
	if _, err := (Taxonomy{}).Build("ceo"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("err = %v, want ErrUnknownRole", err)
	}
}

func TestTaxonomy_Roles(t *testing.T) {
	roles := Taxonomy{}.Roles()
	want := []string{"cmo", "cfo", "cto", "coo", "ciso", "chro", "cpo"}
	if len(roles) != len(want) {
		t.Fatalf("got %d roles, want %d", len(roles), len(want))
	}
	for i, r := range roles {
		if r.Key != want[i] {
			t.Errorf("roles[%d] = %q, want %q", i, r.Key, want[i])
		}
		if _, err := (Taxonomy{}).Build(r.Key); err != nil {
			t.Errorf("Build(%q): %v", r.Key, err)
		}
	}
}

func TestBuildJobsGraph(t *testing.T) {
	jobs := []*model.Job{
		{ID: "1", Title: "Part-Time CFO", CompanyName: "Acme Ltd", Location: "London", SkillsRequired: []string{"FP&A", "Fundraising"}},
		{ID: "2", Title: "Fractional CFO", CompanyName: "acme  ltd", SkillsRequired: []string{"fp&a", "FP&A"}},
		{ID: "3", Title: "Interim CTO"},
	}
	g := BuildJobsGraph(jobs)

	// job-1, company-acme-ltd, skill-fp&a, skill-fundraising, job-2, job-3, company-unknown-company
	if len(g.Nodes) != 7 {
		t.Fatalf("got %d nodes, want 7: %+v", len(g.Nodes), g.Nodes)
	}
	company, ok := findNode(g, "company-acme-ltd")
	if !ok || company.Label != "Acme Ltd" {
		t.Errorf("company node = %+v, %v", company, ok)
	}
	job3, _ := findNode(g, "job-3")
	if job3.Data["company"] != "Unknown Company" || job3.Data["location"] != "UK" {
		t.Errorf("job-3 data = %v", job3.Data)
	}
	skill, _ := findNode(g, "skill-fp&a")
	if skill.Data["jobs"] != 2 {
		t.Errorf("skill jobs = %v, want 2", skill.Data["jobs"])
	}

	e, ok := findEdge(g, "job-2", "skill-fp&a")
	if !ok {
		t.Fatal("requires_skill edge missing")
	}
	if got := e.EffectiveWeight(); got < 0.666 || got > 0.667 {
		t.Errorf("co-occurrence weight = %v, want 2/3", got)
	}
	n := 0
	for _, e := range g.Edges {
		if e.Source == "job-2" && e.Type == "requires_skill" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("job-2 has %d skill edges, want 1", n)
	}
	if _, ok := findEdge(g, "job-3", "company-unknown-company"); !ok {
		t.Error("at_company edge for job-3 missing")
	}

	gr, issues := model.Normalize(g)
	if len(issues) != 0 || gr.Len() != 7 {
		t.Errorf("normalize: %d nodes, issues %v", gr.Len(), issues)
	}
}

func TestJobsStats(t *testing.T) {
	jobs := []*model.Job{
		{ID: "1", CompanyName: "B", SkillsRequired: []string{"Go", "SQL"}},
		{ID: "2", CompanyName: "A", SkillsRequired: []string{"SQL"}},
		{ID: "3", CompanyName: "A"},
		{ID: "4"},
	}
	st := JobsStats(jobs)
	if st.TotalJobs != 4 || st.UniqueSkills != 2 || st.UniqueCompanies != 3 {
		t.Errorf("stats = %+v", st)
	}
	if st.TopSkills[0] != (model.SkillCount{Skill: "SQL", Count: 2}) || st.TopSkills[1].Skill != "Go" {
		t.Errorf("top skills = %+v", st.TopSkills)
	}
	want := []model.CompanyCount{
		{Company: "A", Count: 2},
		{Company: "B", Count: 1},
		{Company: "Unknown Company", Count: 1},
	}
	for i, c := range want {
		if st.TopCompanies[i] != c {
			t.Errorf("top companies[%d] = %+v, want %+v", i, st.TopCompanies[i], c)
		}
	}
}

func TestJobs_Build(t *testing.T) {
	for _, tc := range []struct {
		name  string
		query JobsQuery
		want  model.JobFilter
	}{
		{"Defaults", JobsQuery{}, model.JobFilter{Limit: 20}},
		{"Capped", JobsQuery{Limit: 500}, model.JobFilter{Limit: 100}},
		{"RoleAndSearch", JobsQuery{Role: "cfo", Search: "saas", Limit: 7}, model.JobFilter{Role: "cfo", Search: "saas", Limit: 7}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fs := &fakeStore{jobs: []*model.Job{{ID: "1", Title: "CFO"}}}
			jg, err := NewJobs(fs).Build(context.Background(), tc.query)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if fs.jobFilters[0] != tc.want {
				t.Errorf("filter = %+v, want %+v", fs.jobFilters[0], tc.want)
			}
			if jg.Stats.TotalJobs != 1 || len(jg.Graph.Nodes) != 2 {
				t.Errorf("graph = %+v, stats = %+v", jg.Graph, jg.Stats)
			}
		})
	}
}

func TestJobs_Errors(t *testing.T) {
	if _, err := NewJobs(nil).Build(context.Background(), JobsQuery{}); !errors.Is(err, store.ErrNotConfigured) {
		t.Errorf("nil store: err = %v", err)
	}
	boom := errors.New("boom")
	if _, err := NewJobs(&fakeStore{err: boom}).Build(context.Background(), JobsQuery{}); !errors.Is(err, boom) {
		t.Errorf("store error: err = %v", err)
	}
}

func TestMatchJobs(t *testing.T) {
	skills := []*model.UserSkill{{Name: "Fundraising"}, {Name: "fp&a"}}
	jobs := []*model.Job{
		{ID: "none", SkillsRequired: []string{"Go"}},
		{ID: "half", SkillsRequired: []string{"FP&A", "Treasury"}},
		{ID: "empty"},
		{ID: "full", SkillsRequired: []string{"Fundraising", "FP&A"}},
		{ID: "half2", SkillsRequired: []string{"Fundraising", "Tax"}},
	}
	got := MatchJobs(skills, jobs, 2)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Job.ID != "full" || got[0].Score != 1 {
		t.Errorf("first = %s %v", got[0].Job.ID, got[0].Score)
	}
	if got[1].Job.ID != "half" || got[1].Score != 0.5 {
		t.Errorf("second = %s %v", got[1].Job.ID, got[1].Score)
	}
}

func TestUser_Build(t *testing.T) {
	fs := &fakeStore{
		skills: []*model.UserSkill{
			{SkillID: "7", Name: "Fundraising", Category: "finance", Confidence: 0.9},
			{SkillID: "8", Name: "Hiring"},
		},
		companies: []*model.UserCompany{{ID: "3", Name: "Acme", Role: "CFO"}},
		prefs:     []*model.UserPreference{{Type: "location", Value: "Remote"}},
		jobs: []*model.Job{
			{ID: "j1", Title: "Part-Time CFO", SkillsRequired: []string{"Fundraising", "Treasury", "Tax"}},
		},
	}
	ug, err := NewUser(fs).Build(context.Background(), "42")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if *ug.Stats != (model.UserGraphStats{SkillCount: 2, CompanyCount: 1, PreferenceCount: 1, MatchedJobCount: 1}) {
		t.Errorf("stats = %+v", ug.Stats)
	}
	if fs.userLimits["skills"] != 20 || fs.userLimits["companies"] != 10 || fs.userLimits["prefs"] != 10 {
		t.Errorf("limits = %v", fs.userLimits)
	}

	g := ug.Graph
	center, _ := findNode(g, "user-42")
	if center.Type != model.NodeUser || center.Label != "You" || center.Data["central"] != true {
		t.Errorf("center = %+v", center)
	}

	hiring, _ := findNode(g, "skill-8")
	if hiring.Data["category"] != "other" || hiring.Data["confidence"] != 0.8 {
		t.Errorf("defaults not applied: %v", hiring.Data)
	}

	for _, tc := range []struct {
		target, typ, label string
		weight             float64
	}{
		{"skill-7", "has_skill", "90%", 0.9},
		{"skill-8", "has_skill", "80%", 0.8},
		{"company-3", "worked_at", "CFO", 1},
		{"pref-0", "prefers", "location", 1},
		{"job-j1", "matches", "33% match", 0.33},
	} {
		e, ok := findEdge(g, "user-42", tc.target)
		if !ok {
			t.Errorf("edge to %s missing", tc.target)
			continue
		}
		if e.Type != tc.typ || e.Label != tc.label || e.EffectiveWeight() != tc.weight {
			t.Errorf("edge to %s = %+v (weight %v)", tc.target, e, e.EffectiveWeight())
		}
	}
	job, _ := findNode(g, "job-j1")
	if job.Data["company"] != "Unknown Company" || job.Data["matchScore"] != 0.33 {
		t.Errorf("job data = %v", job.Data)
	}
}

func TestUser_EmptyProfile(t *testing.T) {
	fs := &fakeStore{}
	ug, err := NewUser(fs).Build(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(ug.Graph.Nodes) != 0 || len(ug.Graph.Edges) != 0 {
		t.Errorf("graph = %+v, want empty", ug.Graph)
	}
	if len(fs.jobFilters) != 0 {
		t.Error("jobs queried for an empty profile")
	}
}

func TestUser_Errors(t *testing.T) {
	if _, err := NewUser(&fakeStore{}).Build(context.Background(), ""); !errors.Is(err, ErrUserIDRequired) {
		t.Errorf("empty id: err = %v", err)
	}
	if _, err := NewUser(nil).Build(context.Background(), "1"); !errors.Is(err, store.ErrNotConfigured) {
		t.Errorf("nil store: err = %v", err)
	}
}

func TestParseSource(t *testing.T) {
	for _, tc := range []struct {
		path    string
		query   string
		want    Source
		wantErr error
	}{
		{"roles/CFO", "", Source{Kind: KindRoles, Role: "cfo"}, nil},
		{"/jobs", "role=cto&q=aws&limit=5", Source{Kind: KindJobs, Jobs: JobsQuery{Role: "cto", Search: "aws", Limit: 5}}, nil},
		{"user", "userId=42", Source{Kind: KindUser, UserID: "42"}, nil},
		{"user/42", "", Source{Kind: KindUser, UserID: "42"}, nil},
		{"user", "", Source{}, ErrUserIDRequired},
		{"roles", "", Source{}, ErrUnknownRole},
		{"planets", "", Source{}, ErrUnknownSource},
	} {
		t.Run(tc.path, func(t *testing.T) {
			q, _ := url.ParseQuery(tc.query)
			got, err := ParseSource(tc.path, q)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSource: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestSourcePath_RoundTrip(t *testing.T) {
	for _, src := range []Source{
		{Kind: KindRoles, Role: "cmo"},
		{Kind: KindJobs},
		{Kind: KindJobs, Jobs: JobsQuery{Role: "cfo", Search: "m&a", Limit: 20}},
		{Kind: KindUser, UserID: "u 1"},
	} {
		path, q := src.Path()
		got, err := ParseSource(path, q)
		if err != nil {
			t.Fatalf("ParseSource(%q, %v): %v", path, q, err)
		}
		if got != src {
			t.Errorf("round trip of %+v gave %+v", src, got)
		}
	}
}

func TestProviders_Fetch(t *testing.T) {
	p := New(nil)
	g, err := p.Fetch(context.Background(), Source{Kind: KindRoles, Role: "cto"})
	if err != nil || len(g.Nodes) != 16 {
		t.Fatalf("roles fetch: %v, %v", g, err)
	}
	if _, err := p.Fetch(context.Background(), Source{Kind: KindJobs}); !errors.Is(err, store.ErrNotConfigured) {
		t.Errorf("jobs without store: err = %v", err)
	}
	if name := (Source{Kind: KindRoles, Role: "cto"}).Name(); name != "roles-cto" {
		t.Errorf("Name = %q", name)
	}
}
