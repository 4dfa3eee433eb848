package internships

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusClosed   Status = "closed"
	StatusRejected Status = "rejected"
	StatusPending  Status = "pending"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusClosed, StatusRejected, StatusPending:
		return true
	default:
		return false
	}
}

// WorkMode is the posting's "type" field.
type WorkMode string

const (
	WorkModeRemote WorkMode = "Remote"
	WorkModeOnSite WorkMode = "On-site"
	WorkModeHybrid WorkMode = "Hybrid"
)

type Internship struct {
	ID             string
	Title          string
	Company        string
	Location       string
	Type           WorkMode
	PartTime       bool
	Stipend        string
	Duration       string
	StartDate      string
	Deadline       time.Time
	Openings       int
	Description    string
	SkillsRequired []string
	Perks          []string
	Questions      []string
	PostedBy       string
	Status         Status
	CreatedAt      time.Time

	// Owner is filled by Get with the poster's public fields.
	Owner *Owner
}

type Owner struct {
	ID          string
	Name        string
	CompanyName string
}

// AcceptsApplications reports whether students may still apply at now.
// The deadline day itself is still open.
func (i *Internship) AcceptsApplications(now time.Time) bool {
	if i.Status != StatusActive {
		return false
	}
	if i.Deadline.IsZero() {
		return true
	}
	y, m, d := i.Deadline.UTC().Date()
	closesAt := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return now.UTC().Before(closesAt)
}

var (
	ErrNotFound  = errors.New("internship not found")
	ErrForbidden = errors.New("not allowed to modify this internship")
	// ErrStatusConflict means the stored status changed between read and write.
	ErrStatusConflict = errors.New("internship status changed concurrently")
)

// Repository persists postings. Deleting a posting removes its applications.
type Repository interface {
	List(ctx context.Context, filters Filters) ([]Internship, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Internship, error)
	Get(ctx context.Context, id string) (*Internship, error)
	Create(ctx context.Context, internship Internship) (*Internship, error)
	// UpdateStatus sets status to "to" only if it is still "from".
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Internship, error)
	Delete(ctx context.Context, id string) error
}
