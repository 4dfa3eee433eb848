package applications

import (
	"context"
	"errors"
	"time"

	"github.com/internhub/server/internal/domain/internships"
)

type Status string

const (
	StatusApplied     Status = "applied"
	StatusViewed      Status = "viewed"
	StatusShortlisted Status = "shortlisted"
	StatusHired       Status = "hired"
	StatusRejected    Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusViewed, StatusShortlisted, StatusHired, StatusRejected:
		return true
	default:
		return false
	}
}

type Answer struct {
	Question string `json:"question" validate:"max=500"`
	Answer   string `json:"answer" validate:"max=5000"`
}

// Application is one student's submission to one posting.
type Application struct {
	ID           string
	InternshipID string
	StudentID    string
	CoverLetter  string
	Resume       string
	Answers      []Answer
	Status       Status
	AppliedAt    time.Time

	// Internship is populated on the student's own listing.
	Internship *InternshipSummary
	// Student and InternshipTitle are populated on the applicant listing.
	Student         *StudentSummary
	InternshipTitle string
}

type InternshipSummary struct {
	ID       string
	Title    string
	Company  string
	Status   internships.Status
	Type     internships.WorkMode
	Location string
	Stipend  string
}

type StudentSummary struct {
	ID     string
	Name   string
	Email  string
	Skills []string
	Resume string
}

var (
	ErrNotFound       = errors.New("application not found")
	ErrForbidden      = errors.New("not allowed to manage these applications")
	ErrAlreadyApplied = errors.New("already applied")
)

// Repository persists applications. Create returns ErrAlreadyApplied when
// the (internship, student) pair already exists.
type Repository interface {
	Create(ctx context.Context, application Application) (*Application, error)
	Exists(ctx context.Context, internshipID, studentID string) (bool, error)
	Get(ctx context.Context, id string) (*Application, error)
	// ListByStudent returns the student's applications newest first, each
	// with its posting summary.
	ListByStudent(ctx context.Context, studentID string) ([]Application, error)
	// ListByInternship returns applicants in the order they applied, each
	// with the student summary and posting title.
	ListByInternship(ctx context.Context, internshipID string) ([]Application, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Application, error)
}
