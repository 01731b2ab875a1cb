package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const jobColumns = `id, title, slug, company_name, company_domain, location, skills_required, role_category`

func queryListJobs(ctx context.Context, db executor, filter model.JobFilter) ([]*model.Job, error) {
	var (
		whereClauses = []string{"is_active = true", "is_fractional = true"}
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.Role != "" {
		whereClauses = append(whereClauses, "LOWER(title) LIKE LOWER("+nextArg()+")")
		args = append(args, "%"+filter.Role+"%")
	}

	if filter.Search != "" {
		p := nextArg()
		whereClauses = append(whereClauses,
			fmt.Sprintf("(LOWER(title) LIKE LOWER(%s) OR LOWER(company_name) LIKE LOWER(%s) OR skills_required::text ILIKE %s)", p, p, p))
		args = append(args, "%"+filter.Search+"%")
	}

	query := "SELECT " + jobColumns + " FROM jobs WHERE " + strings.Join(whereClauses, " AND ") +
		" ORDER BY posted_date DESC NULLS LAST"
	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

func queryListUserSkills(ctx context.Context, db executor, userID string, limit int) ([]*model.UserSkill, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT s.id::text, s.name, s.category, us.confidence
		FROM user_skills us
		JOIN skills s ON us.skill_id = s.id
		WHERE us.user_id = $1
		ORDER BY us.confidence DESC NULLS LAST
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list user skills: %w", err)
	}
	defer rows.Close()

	var skills []*model.UserSkill
	for rows.Next() {
		s, err := scanUserSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func queryListUserCompanies(ctx context.Context, db executor, userID string, limit int) ([]*model.UserCompany, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT id::text, (extracted_data->>'name') AS name, (extracted_data->>'role') AS role
		FROM extraction_pending
		WHERE user_id = $1
		  AND item_type = 'company'
		  AND status = 'confirmed'
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list user companies: %w", err)
	}
	defer rows.Close()

	var companies []*model.UserCompany
	for rows.Next() {
		c, err := scanUserCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func queryListUserPreferences(ctx context.Context, db executor, userID string, limit int) ([]*model.UserPreference, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT preference_type, preference_value
		FROM user_preferences
		WHERE user_id = $1
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list user preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*model.UserPreference
	for rows.Next() {
		var p model.UserPreference
		if err := rows.Scan(&p.Type, &p.Value); err != nil {
			return nil, fmt.Errorf("scan user preference: %w", err)
		}
		prefs = append(prefs, &p)
	}
	return prefs, rows.Err()
}
