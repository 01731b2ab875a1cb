package model

// UserSkill is a skill confirmed on a user's profile.
type UserSkill struct {
	SkillID    string  `json:"skill_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"` // 0..1
}

// UserCompany is a confirmed employer extracted from a user's history.
type UserCompany struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// UserPreference is a stated work preference (location, rate, remote...).
type UserPreference struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// UserGraphStats counts the profile items behind a user graph.
type UserGraphStats struct {
	SkillCount      int `json:"skillCount"`
	CompanyCount    int `json:"companyCount"`
	PreferenceCount int `json:"preferenceCount"`
	MatchedJobCount int `json:"matchedJobCount"`
}

// UserGraph is the user provider response.
type UserGraph struct {
	Graph *GraphData      `json:"graph"`
	Stats *UserGraphStats `json:"stats"`
}

// RoleInfo describes one role of the static taxonomy.
type RoleInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// RoleGraph is the role taxonomy provider response.
type RoleGraph struct {
	Role  RoleInfo   `json:"role"`
	Graph *GraphData `json:"graph"`
}
