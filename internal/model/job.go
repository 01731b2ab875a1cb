package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Job is an active fractional job listing as read by the jobs provider.
type Job struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Slug           string   `json:"slug,omitempty"`
	CompanyName    string   `json:"company_name,omitempty"`
	CompanyDomain  string   `json:"company_domain,omitempty"`
	Location       string   `json:"location,omitempty"`
	SkillsRequired []string `json:"skills_required,omitempty"`
	RoleCategory   string   `json:"role_category,omitempty"`
}

// JobFilter holds criteria for listing jobs.
type JobFilter struct {
	Role   string `json:"role,omitempty"`   // case-insensitive substring of the title
	Search string `json:"search,omitempty"` // title, company or skills
	Limit  int    `json:"limit,omitempty"`
}

// SkillCount is one entry of a top-skills ranking.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// CompanyCount is one entry of a top-companies ranking.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// JobsGraphStats summarizes the jobs behind a jobs graph.
type JobsGraphStats struct {
	TotalJobs       int            `json:"totalJobs"`
	UniqueSkills    int            `json:"uniqueSkills"`
	UniqueCompanies int            `json:"uniqueCompanies"`
	TopSkills       []SkillCount   `json:"topSkills"`
	TopCompanies    []CompanyCount `json:"topCompanies"`
}

// JobsGraph is the jobs provider response.
type JobsGraph struct {
	Graph *GraphData      `json:"graph"`
	Stats *JobsGraphStats `json:"stats"`
}

// ParseSkills decodes a skills_required value. It accepts a JSON array, a
// JSON string holding an array, or a comma separated list. Other JSON values
// yield no skills. Empty and non-string entries are dropped.
func ParseSkills(raw []byte) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []string{}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return splitSkills(string(raw))
	}
	switch t := v.(type) {
	case []any:
		return skillStrings(t)
	case string:
		var inner any
		if err := json.Unmarshal([]byte(t), &inner); err != nil {
			return splitSkills(t)
		}
		if arr, ok := inner.([]any); ok {
			return skillStrings(arr)
		}
	}
	return []string{}
}

func skillStrings(arr []any) []string {
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func splitSkills(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
