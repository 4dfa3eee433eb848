package internships

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/internhub/server/internal/auth"
	"github.com/internhub/server/internal/domain/accounts"
	"github.com/internhub/server/internal/domain/ids"
	"github.com/internhub/server/internal/metrics"
	"github.com/internhub/server/internal/sanitize"
	"github.com/internhub/server/internal/validation"
	"github.com/rs/zerolog"
)

const (
	DefaultOpenings = 1
	unknownCompany  = "Unknown"
)

// AccountLookup resolves the poster's profile for company defaults.
type AccountLookup interface {
	Get(ctx context.Context, accountID string) (*accounts.Account, error)
}

type CreateParams struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Company        string   `json:"company" validate:"max=200"`
	Location       string   `json:"location" validate:"required,max=200"`
	Type           string   `json:"type" validate:"required,oneof=Remote On-site Hybrid"`
	PartTime       bool     `json:"partTime"`
	Stipend        string   `json:"stipend" validate:"required,max=100"`
	Duration       string   `json:"duration" validate:"required,max=100"`
	StartDate      string   `json:"startDate" validate:"required,max=100"`
	Deadline       string   `json:"deadline" validate:"required"`
	Openings       *int     `json:"openings" validate:"omitempty,min=1,max=10000"`
	Description    string   `json:"description" validate:"required,max=20000"`
	SkillsRequired []string `json:"skillsRequired" validate:"max=50,dive,max=100"`
	Perks          []string `json:"perks" validate:"max=50,dive,max=200"`
	Questions      []string `json:"questions" validate:"max=20,dive,max=500"`
}

type Service struct {
	repo      Repository
	accounts  AccountLookup
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, accounts AccountLookup, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		accounts:  accounts,
		validator: validation.New(),
		logger:    logger.With().Str("component", "internships").Logger(),
		now:       time.Now,
	}
}

// List returns active postings matching filters, newest first.
func (s *Service) List(ctx context.Context, filters Filters) ([]Internship, error) {
	return s.repo.List(ctx, filters)
}

// ListMine returns every posting owned by the caller in any status.
func (s *Service) ListMine(ctx context.Context, caller auth.Identity) ([]Internship, error) {
	return s.repo.ListByOwner(ctx, caller.AccountID)
}

// Get returns a posting with its owner's public fields. Malformed IDs are
// reported as not found.
func (s *Service) Get(ctx context.Context, id string) (*Internship, error) {
	if !ids.IsULID(id) {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, ids.Normalize(id))
}

// Create stores a new active posting owned by the caller.
//
// Company resolution: an explicit company wins; otherwise employers fall back
// to their profile company name, and anything else becomes "Unknown".
func (s *Service) Create(ctx context.Context, caller auth.Identity, params CreateParams) (*Internship, error) {
	if !auth.HasRole(caller.Role, auth.RoleEmployer, auth.RoleAdmin) {
		return nil, ErrForbidden
	}

	params = cleanCreateParams(params)
	if err := validation.Struct(s.validator, params, "Please fill all required fields"); err != nil {
		return nil, err
	}
	deadline, err := ParseDeadline(params.Deadline)
	if err != nil {
		return nil, err
	}

	company := params.Company
	if company == "" && caller.Role == auth.RoleEmployer {
		owner, err := s.accounts.Get(ctx, caller.AccountID)
		switch {
		case err == nil:
			company = owner.CompanyName()
		case errors.Is(err, accounts.ErrNotFound):
		default:
			return nil, fmt.Errorf("lookup poster: %w", err)
		}
	}
	if company == "" {
		company = unknownCompany
	}

	openings := DefaultOpenings
	if params.Openings != nil {
		openings = *params.Openings
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}

	created, err := s.repo.Create(ctx, Internship{
		ID:             id,
		Title:          params.Title,
		Company:        company,
		Location:       params.Location,
		Type:           WorkMode(params.Type),
		PartTime:       params.PartTime,
		Stipend:        params.Stipend,
		Duration:       params.Duration,
		StartDate:      params.StartDate,
		Deadline:       deadline,
		Openings:       openings,
		Description:    params.Description,
		SkillsRequired: nonNil(params.SkillsRequired),
		Perks:          nonNil(params.Perks),
		Questions:      nonNil(params.Questions),
		PostedBy:       caller.AccountID,
		Status:         StatusActive,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create internship: %w", err)
	}

	metrics.PostingsCreated.Inc()
	s.logger.Info().
		Str("internship_id", created.ID).
		Str("posted_by", caller.AccountID).
		Msg("internship created")
	return created, nil
}

// Delete removes a posting and its applications. Only the owner or an admin
// may delete.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, id string) error {
	posting, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanManage(caller, posting) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, posting.ID); err != nil {
		return err
	}

	metrics.PostingsDeleted.Inc()
	s.logger.Info().
		Str("internship_id", posting.ID).
		Str("deleted_by", caller.AccountID).
		Msg("internship deleted")
	return nil
}

// UpdateStatus moves a posting through its lifecycle. Setting the current
// status again returns the posting unchanged.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, id string, status string) (*Internship, error) {
	to := Status(strings.ToLower(strings.TrimSpace(status)))
	if !to.Valid() {
		return nil, validation.Fail("status", "must be one of: active, closed, rejected, pending")
	}

	posting, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanManage(caller, posting) {
		return nil, ErrForbidden
	}
	if err := CheckTransition(posting.Status, to, auth.IsAdmin(caller.Role)); err != nil {
		return nil, err
	}
	if posting.Status == to {
		return posting, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, posting.ID, posting.Status, to)
	if err != nil {
		return nil, err
	}
	updated.Owner = posting.Owner

	metrics.PostingStatusChanges.WithLabelValues(string(posting.Status), string(to)).Inc()
	s.logger.Info().
		Str("internship_id", posting.ID).
		Str("from", string(posting.Status)).
		Str("to", string(to)).
		Msg("internship status changed")
	return updated, nil
}

// CanManage reports whether caller owns the posting or is an admin.
func CanManage(caller auth.Identity, posting *Internship) bool {
	if auth.IsAdmin(caller.Role) {
		return true
	}
	return caller.Role == auth.RoleEmployer && posting.PostedBy == caller.AccountID
}

var deadlineLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDeadline accepts a calendar date or an RFC 3339 timestamp and keeps
// only the date.
func ParseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range deadlineLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			y, m, d := parsed.UTC().Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, validation.Fail("deadline", "must be a date formatted as YYYY-MM-DD")
}

func cleanCreateParams(p CreateParams) CreateParams {
	p.Title = sanitize.Text(p.Title)
	p.Company = sanitize.Text(p.Company)
	p.Location = sanitize.Text(p.Location)
	p.Type = strings.TrimSpace(p.Type)
	p.Stipend = sanitize.Text(p.Stipend)
	p.Duration = sanitize.Text(p.Duration)
	p.StartDate = sanitize.Text(p.StartDate)
	p.Description = sanitize.HTML(p.Description)
	p.SkillsRequired = sanitize.TextSlice(p.SkillsRequired)
	p.Perks = sanitize.TextSlice(p.Perks)
	p.Questions = sanitize.TextSlice(p.Questions)
	return p
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
