package postgres

import (
	"database/sql"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanJob scans a single row into a model.Job.
// The row must contain columns in the order defined by jobColumns.
func scanJob(row scannable) (*model.Job, error) {
	var j model.Job
	var (
		id            string
		slug          sql.NullString
		companyName   sql.NullString
		companyDomain sql.NullString
		location      sql.NullString
		skills        []byte
		roleCategory  sql.NullString
	)

	err := row.Scan(
		&id,
		&j.Title,
		&slug,
		&companyName,
		&companyDomain,
		&location,
		&skills,
		&roleCategory,
	)
	if err != nil {
		return nil, err
	}

	j.ID = id
	j.Slug = slug.String
	j.CompanyName = companyName.String
	j.CompanyDomain = companyDomain.String
	j.Location = location.String
	j.SkillsRequired = model.ParseSkills(skills)
	j.RoleCategory = roleCategory.String
	return &j, nil
}

// scanUserSkill scans (id, name, category, confidence). A missing confidence
// is left at zero for the provider to default.
func scanUserSkill(row scannable) (*model.UserSkill, error) {
	var (
		s          model.UserSkill
		category   sql.NullString
		confidence sql.NullFloat64
	)
	if err := row.Scan(&s.SkillID, &s.Name, &category, &confidence); err != nil {
		return nil, err
	}
	s.Category = category.String
	s.Confidence = confidence.Float64
	return &s, nil
}

func scanUserCompany(row scannable) (*model.UserCompany, error) {
	var (
		c    model.UserCompany
		name sql.NullString
		role sql.NullString
	)
	if err := row.Scan(&c.ID, &name, &role); err != nil {
		return nil, err
	}
	c.Name = name.String
	c.Role = role.String
	return &c, nil
}
