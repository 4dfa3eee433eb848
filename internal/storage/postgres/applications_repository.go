package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/internhub/server/internal/domain/applications"
	"github.com/internhub/server/internal/domain/internships"
	"github.com/jackc/pgx/v5"
)

type ApplicationRepository struct {
	db queryer
}

const applicationColumns = `ap.id, ap.internship_id, ap.student_id, ap.cover_letter, ap.resume, ap.answers, ap.status, ap.applied_at`

func (r *ApplicationRepository) Create(ctx context.Context, application applications.Application) (_ *applications.Application, err error) {
	defer func(start time.Time) { observe("create_application", start, err) }(time.Now())

	answers := application.Answers
	if answers == nil {
		answers = []applications.Answer{}
	}
	encoded, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	row := r.db.QueryRow(ctx, `
INSERT INTO applications AS ap (id, internship_id, student_id, cover_letter, resume, answers, status, applied_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+applicationColumns,
		application.ID, application.InternshipID, application.StudentID, application.CoverLetter,
		application.Resume, encoded, string(application.Status), application.AppliedAt,
	)
	created, err := scanApplication(row)
	if err != nil {
		if constraint, ok := constraintViolation(err, codeUniqueViolation); ok && constraint == "applications_internship_student_key" {
			return nil, applications.ErrAlreadyApplied
		}
		if _, ok := constraintViolation(err, codeForeignKeyViolation); ok {
			return nil, internships.ErrNotFound
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return created, nil
}

func (r *ApplicationRepository) Exists(ctx context.Context, internshipID, studentID string) (_ bool, err error) {
	defer func(start time.Time) { observe("application_exists", start, err) }(time.Now())

	var exists bool
	err = r.db.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM applications WHERE internship_id = $1 AND student_id = $2)
`, internshipID, studentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return exists, nil
}

func (r *ApplicationRepository) Get(ctx context.Context, id string) (_ *applications.Application, err error) {
	defer func(start time.Time) { observe("get_application", start, err) }(time.Now())

	application, err := scanApplication(r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications ap WHERE ap.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, applications.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return application, nil
}

func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID string) (_ []applications.Application, err error) {
	defer func(start time.Time) { observe("list_student_applications", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, `
SELECT `+applicationColumns+`,
       i.id, i.title, i.company, i.status, i.work_mode, i.location, i.stipend
  FROM applications ap
  JOIN internships i ON i.id = ap.internship_id
 WHERE ap.student_id = $1
 ORDER BY ap.applied_at DESC, ap.id DESC
`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student applications: %w", err)
	}
	defer rows.Close()

	result := []applications.Application{}
	for rows.Next() {
		var (
			summary      applications.InternshipSummary
			status, mode string
		)
		application, err := scanApplication(rows,
			&summary.ID, &summary.Title, &summary.Company, &status, &mode, &summary.Location, &summary.Stipend)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		summary.Status = internships.Status(status)
		summary.Type = internships.WorkMode(mode)
		application.Internship = &summary
		result = append(result, *application)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return result, nil
}

func (r *ApplicationRepository) ListByInternship(ctx context.Context, internshipID string) (_ []applications.Application, err error) {
	defer func(start time.Time) { observe("list_internship_applications", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, `
SELECT `+applicationColumns+`,
       s.id, s.name, s.email, s.skills, s.resume, i.title
  FROM applications ap
  JOIN accounts s ON s.id = ap.student_id
  JOIN internships i ON i.id = ap.internship_id
 WHERE ap.internship_id = $1
 ORDER BY ap.applied_at ASC, ap.id ASC
`, internshipID)
	if err != nil {
		return nil, fmt.Errorf("list internship applications: %w", err)
	}
	defer rows.Close()

	result := []applications.Application{}
	for rows.Next() {
		var (
			student applications.StudentSummary
			resume  *string
			title   string
		)
		application, err := scanApplication(rows,
			&student.ID, &student.Name, &student.Email, &student.Skills, &resume, &title)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		student.Skills = nonNilStrings(student.Skills)
		student.Resume = derefString(resume)
		application.Student = &student
		application.InternshipTitle = title
		result = append(result, *application)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return result, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status applications.Status) (_ *applications.Application, err error) {
	defer func(start time.Time) { observe("update_application_status", start, err) }(time.Now())

	row := r.db.QueryRow(ctx, `
UPDATE applications AS ap
   SET status = $2
 WHERE ap.id = $1
RETURNING `+applicationColumns, id, string(status))

	updated, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, applications.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}
	return updated, nil
}

func scanApplication(row rowScanner, extra ...any) (*applications.Application, error) {
	var (
		application applications.Application
		answers     []byte
		status      string
	)
	dest := []any{
		&application.ID,
		&application.InternshipID,
		&application.StudentID,
		&application.CoverLetter,
		&application.Resume,
		&answers,
		&status,
		&application.AppliedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	application.Answers = []applications.Answer{}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &application.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
	}
	application.Status = applications.Status(status)
	application.AppliedAt = application.AppliedAt.UTC()
	return &application, nil
}
