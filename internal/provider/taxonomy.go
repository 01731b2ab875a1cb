package provider

import (
	"fmt"
	"strings"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

type roleSkills struct {
	label     string
	core      []string
	technical []string
	soft      []string
}

// roleOrder is the listing order of the taxonomy.
var roleOrder = []string{"cmo", "cfo", "cto", "coo", "ciso", "chro", "cpo"}

var roles = map[string]roleSkills{
	"cmo": {
		label:     "CMO",
		core:      []string{"Marketing Strategy", "Brand Development", "Demand Generation", "Growth Marketing", "Marketing Operations"},
		technical: []string{"Performance Marketing", "Marketing Automation", "Analytics & Attribution", "SEO/SEM", "Content Strategy"},
		soft:      []string{"Leadership", "Stakeholder Management", "Budget Management", "Team Building", "Board Communication"},
	},
	"cfo": {
		label:     "CFO",
		core:      []string{"Financial Planning & Analysis", "Cash Flow Management", "Fundraising", "Financial Reporting", "Treasury"},
		technical: []string{"M&A Due Diligence", "ERP Systems", "Financial Modelling", "Tax Strategy", "Audit & Compliance"},
		soft:      []string{"Board Communication", "Investor Relations", "Risk Management", "Strategic Planning", "Team Leadership"},
	},
	"cto": {
		label:     "CTO",
		core:      []string{"Technical Strategy", "Architecture Design", "Engineering Leadership", "Product Development", "DevOps"},
		technical: []string{"Cloud Infrastructure", "Security & Compliance", "API Design", "Data Architecture", "AI/ML"},
		soft:      []string{"Technical Hiring", "Vendor Management", "Stakeholder Communication", "Agile/Scrum", "Mentorship"},
	},
	"coo": {
		label:     "COO",
		core:      []string{"Operations Strategy", "Process Optimisation", "Scaling Operations", "Supply Chain", "Project Management"},
		technical: []string{"ERP Implementation", "Workflow Automation", "Quality Management", "Vendor Management", "Analytics"},
		soft:      []string{"Cross-functional Leadership", "Change Management", "Team Building", "Crisis Management", "Communication"},
	},
	"ciso": {
		label:     "CISO",
		core:      []string{"Security Strategy", "Risk Assessment", "Compliance (SOC2, ISO)", "Incident Response", "Security Architecture"},
		technical: []string{"Penetration Testing", "Identity Management", "Cloud Security", "SIEM/SOAR", "Network Security"},
		soft:      []string{"Executive Communication", "Vendor Assessment", "Policy Development", "Training Programs", "Crisis Management"},
	},
	"chro": {
		label:     "CHRO",
		core:      []string{"People Strategy", "Talent Acquisition", "Organisational Design", "Culture Development", "Employee Experience"},
		technical: []string{"HRIS Systems", "Compensation & Benefits", "Performance Management", "Learning & Development", "HR Analytics"},
		soft:      []string{"Change Management", "Executive Coaching", "Conflict Resolution", "Communication", "Employment Law"},
	},
	"cpo": {
		label:     "CPO",
		core:      []string{"Product Strategy", "Product-Market Fit", "Roadmap Planning", "User Research", "Product Analytics"},
		technical: []string{"A/B Testing", "Agile/Scrum", "Product Discovery", "Prioritisation Frameworks", "Competitive Analysis"},
		soft:      []string{"Stakeholder Management", "Cross-functional Leadership", "Customer Empathy", "Data-Driven Decisions", "Storytelling"},
	},
}

// Taxonomy serves the static skill map of each fractional executive role.
type Taxonomy struct{}

// Roles lists every role in a fixed order.
func (Taxonomy) Roles() []model.RoleInfo {
	out := make([]model.RoleInfo, 0, len(roleOrder))
	for _, k := range roleOrder {
		out = append(out, model.RoleInfo{Key: k, Label: roles[k].label})
	}
	return out
}

// Build returns the skill graph for role (case-insensitive). The role sits at
// the center with core skills on the stiffest springs.
func (Taxonomy) Build(role string) (*model.RoleGraph, error) {
	key := strings.ToLower(strings.TrimSpace(role))
	rs, ok := roles[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	center := "role-" + key
	g := &model.GraphData{
		Nodes: []model.Node{{
			ID:    center,
			Type:  model.NodeJob,
			Label: "Part-Time " + rs.label,
			Data:  map[string]any{"central": true},
		}},
	}

	tiers := []struct {
		prefix   string
		skills   []string
		typ      model.NodeType
		edgeType string
		category string
		weight   float64
	}{
		{"core", rs.core, model.NodeSkill, "requires", "core", 3},
		{"tech", rs.technical, model.NodeFact, "uses", "technical", 2},
		{"soft", rs.soft, model.NodePreference, "demonstrates", "soft", 1},
	}
	for _, tier := range tiers {
		for i, name := range tier.skills {
			id := fmt.Sprintf("%s-%d", tier.prefix, i)
			g.Nodes = append(g.Nodes, model.Node{
				ID:    id,
				Type:  tier.typ,
				Label: name,
				Data:  map[string]any{"category": tier.category},
			})
			g.Edges = append(g.Edges, model.Edge{
				Source: center,
				Target: id,
				Type:   tier.edgeType,
				Label:  tier.category,
				Weight: model.Weight(tier.weight),
			})
		}
	}

	return &model.RoleGraph{
		Role:  model.RoleInfo{Key: key, Label: rs.label},
		Graph: g,
	}, nil
}
