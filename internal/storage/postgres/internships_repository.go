package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/internhub/server/internal/domain/internships"
	"github.com/jackc/pgx/v5"
)

type InternshipRepository struct {
	db queryer
}

const internshipColumns = `i.id, i.title, i.company, i.location, i.work_mode, i.part_time, i.stipend,
       i.duration, i.start_date, i.deadline, i.openings, i.description, i.skills_required,
       i.perks, i.questions, i.posted_by, i.status, i.created_at`

// List filters active postings. Substring filters are escaped so user input
// matches literally.
func (r *InternshipRepository) List(ctx context.Context, filters internships.Filters) (_ []internships.Internship, err error) {
	defer func(start time.Time) { observe("list_internships", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, `
SELECT `+internshipColumns+`
  FROM internships i
 WHERE i.status = 'active'
   AND ($1::text = '' OR i.title ILIKE '%' || $1 || '%' ESCAPE '\' OR i.company ILIKE '%' || $1 || '%' ESCAPE '\')
   AND ($2::text = '' OR i.title ILIKE '%' || $2 || '%' ESCAPE '\')
   AND ($3::text = '' OR i.location ILIKE '%' || $3 || '%' ESCAPE '\')
   AND ($4::text = '' OR i.work_mode = $4)
   AND (NOT $5::boolean OR i.part_time)
   AND ($6::text = '' OR i.duration ILIKE '%' || $6 || '%' ESCAPE '\')
 ORDER BY i.created_at DESC, i.id DESC
`,
		internships.EscapeLike(filters.Search),
		internships.EscapeLike(filters.TitleTerm()),
		internships.EscapeLike(filters.Location),
		filters.Type,
		filters.PartTime,
		internships.EscapeLike(filters.Duration),
	)
	if err != nil {
		return nil, fmt.Errorf("list internships: %w", err)
	}
	return collectInternships(rows)
}

func (r *InternshipRepository) ListByOwner(ctx context.Context, ownerID string) (_ []internships.Internship, err error) {
	defer func(start time.Time) { observe("list_owner_internships", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, `
SELECT `+internshipColumns+`
  FROM internships i
 WHERE i.posted_by = $1
 ORDER BY i.created_at DESC, i.id DESC
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner internships: %w", err)
	}
	return collectInternships(rows)
}

// Get returns the posting with its owner's public fields.
func (r *InternshipRepository) Get(ctx context.Context, id string) (_ *internships.Internship, err error) {
	defer func(start time.Time) { observe("get_internship", start, err) }(time.Now())

	row := r.db.QueryRow(ctx, `
SELECT `+internshipColumns+`, a.id, a.name, a.company_name
  FROM internships i
  LEFT JOIN accounts a ON a.id = i.posted_by
 WHERE i.id = $1
`, id)

	var ownerID, ownerName, ownerCompany *string
	internship, err := scanInternship(row, &ownerID, &ownerName, &ownerCompany)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, internships.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get internship: %w", err)
	}
	if ownerID != nil {
		internship.Owner = &internships.Owner{
			ID:          *ownerID,
			Name:        derefString(ownerName),
			CompanyName: derefString(ownerCompany),
		}
	}
	return internship, nil
}

func (r *InternshipRepository) Create(ctx context.Context, in internships.Internship) (_ *internships.Internship, err error) {
	defer func(start time.Time) { observe("create_internship", start, err) }(time.Now())

	row := r.db.QueryRow(ctx, `
INSERT INTO internships AS i (id, title, company, location, work_mode, part_time, stipend, duration,
                              start_date, deadline, openings, description, skills_required, perks,
                              questions, posted_by, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
RETURNING `+internshipColumns,
		in.ID, in.Title, in.Company, in.Location, string(in.Type), in.PartTime, in.Stipend, in.Duration,
		in.StartDate, in.Deadline, in.Openings, in.Description, nonNilStrings(in.SkillsRequired),
		nonNilStrings(in.Perks), nonNilStrings(in.Questions), in.PostedBy, string(in.Status), in.CreatedAt,
	)
	created, err := scanInternship(row)
	if err != nil {
		if _, ok := constraintViolation(err, codeForeignKeyViolation); ok {
			return nil, fmt.Errorf("insert internship: unknown poster %s: %w", in.PostedBy, err)
		}
		return nil, fmt.Errorf("insert internship: %w", err)
	}
	return created, nil
}

// UpdateStatus is a compare-and-set on the current status.
func (r *InternshipRepository) UpdateStatus(ctx context.Context, id string, from, to internships.Status) (_ *internships.Internship, err error) {
	defer func(start time.Time) { observe("update_internship_status", start, err) }(time.Now())

	row := r.db.QueryRow(ctx, `
UPDATE internships AS i
   SET status = $3
 WHERE i.id = $1 AND i.status = $2
RETURNING `+internshipColumns, id, string(from), string(to))

	updated, err := scanInternship(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update internship status: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM internships WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check internship: %w", err)
	}
	if !exists {
		return nil, internships.ErrNotFound
	}
	return nil, internships.ErrStatusConflict
}

// Delete removes the posting; applications go with it via ON DELETE CASCADE.
func (r *InternshipRepository) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("delete_internship", start, err) }(time.Now())

	tag, err := r.db.Exec(ctx, `DELETE FROM internships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete internship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return internships.ErrNotFound
	}
	return nil
}

func collectInternships(rows pgx.Rows) ([]internships.Internship, error) {
	defer rows.Close()

	result := []internships.Internship{}
	for rows.Next() {
		internship, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan internship: %w", err)
		}
		result = append(result, *internship)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate internships: %w", err)
	}
	return result, nil
}

func scanInternship(row rowScanner, extra ...any) (*internships.Internship, error) {
	var (
		in             internships.Internship
		workMode       string
		status         string
		deadline       time.Time
		skillsRequired []string
		perks          []string
		questions      []string
	)
	dest := []any{
		&in.ID,
		&in.Title,
		&in.Company,
		&in.Location,
		&workMode,
		&in.PartTime,
		&in.Stipend,
		&in.Duration,
		&in.StartDate,
		&deadline,
		&in.Openings,
		&in.Description,
		&skillsRequired,
		&perks,
		&questions,
		&in.PostedBy,
		&status,
		&in.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	in.Type = internships.WorkMode(workMode)
	in.Status = internships.Status(status)
	y, m, d := deadline.Date()
	in.Deadline = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	in.SkillsRequired = nonNilStrings(skillsRequired)
	in.Perks = nonNilStrings(perks)
	in.Questions = nonNilStrings(questions)
	in.CreatedAt = in.CreatedAt.UTC()
	return &in, nil
}
