package applications

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
	"github.com/internhub/server/internal/domain/internships"
	"github.com/internhub/server/internal/metrics"
	"github.com/internhub/server/internal/sanitize"
	"github.com/internhub/server/internal/validation"
	"github.com/rs/zerolog"
)

type InternshipLookup interface {
	Get(ctx context.Context, id string) (*internships.Internship, error)
}

type AccountLookup interface {
	Get(ctx context.Context, accountID string) (*accounts.Account, error)
}

type ApplyParams struct {
	InternshipID string   `json:"internshipId" validate:"required"`
	CoverLetter  string   `json:"coverLetter" validate:"max=10000"`
	Resume       string   `json:"resume" validate:"max=2048"`
	Answers      []Answer `json:"answers" validate:"max=20,dive"`
}

type Service struct {
	repo        Repository
	internships InternshipLookup
	accounts    AccountLookup
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

func NewService(repo Repository, internships InternshipLookup, accounts AccountLookup, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		internships: internships,
		accounts:    accounts,
		validator:   validation.New(),
		logger:      logger.With().Str("component", "applications").Logger(),
		now:         time.Now,
	}
}

// Apply submits the caller's application. The resume falls back to the
// student's profile resume when none is given.
func (s *Service) Apply(ctx context.Context, caller auth.Identity, params ApplyParams) (*Application, error) {
	if caller.Role != auth.RoleStudent {
		return nil, ErrForbidden
	}

	params = cleanApplyParams(params)
	if err := validation.Struct(s.validator, params, "Invalid application"); err != nil {
		return nil, err
	}

	posting, err := s.internships.Get(ctx, params.InternshipID)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.Exists(ctx, posting.ID, caller.AccountID)
	if err != nil {
		return nil, fmt.Errorf("check existing application: %w", err)
	}
	if exists {
		metrics.ApplicationsRejectedDuplicate.Inc()
		return nil, ErrAlreadyApplied
	}

	now := s.now().UTC()
	if !posting.AcceptsApplications(now) {
		return nil, validation.Fail("internshipId", "internship is not accepting applications")
	}

	resume := params.Resume
	if resume == "" {
		student, err := s.accounts.Get(ctx, caller.AccountID)
		switch {
		case err == nil:
			resume = student.Resume()
		case errors.Is(err, accounts.ErrNotFound):
		default:
			return nil, fmt.Errorf("lookup student: %w", err)
		}
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}

	created, err := s.repo.Create(ctx, Application{
		ID:           id,
		InternshipID: posting.ID,
		StudentID:    caller.AccountID,
		CoverLetter:  params.CoverLetter,
		Resume:       resume,
		Answers:      params.Answers,
		Status:       StatusApplied,
		AppliedAt:    now,
	})
	if errors.Is(err, ErrAlreadyApplied) {
		metrics.ApplicationsRejectedDuplicate.Inc()
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	metrics.ApplicationsSubmitted.Inc()
	s.logger.Info().
		Str("application_id", created.ID).
		Str("internship_id", posting.ID).
		Str("student_id", caller.AccountID).
		Msg("application submitted")
	return created, nil
}

func (s *Service) ListMine(ctx context.Context, caller auth.Identity) ([]Application, error) {
	if caller.Role != auth.RoleStudent {
		return nil, ErrForbidden
	}
	return s.repo.ListByStudent(ctx, caller.AccountID)
}

// ListForInternship returns the applicants of a posting the caller manages.
func (s *Service) ListForInternship(ctx context.Context, caller auth.Identity, internshipID string) ([]Application, error) {
	posting, err := s.internships.Get(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if !internships.CanManage(caller, posting) {
		return nil, ErrForbidden
	}
	return s.repo.ListByInternship(ctx, posting.ID)
}

// UpdateStatus sets any known status, including moving backwards.
func (s *Service) UpdateStatus(ctx context.Context, caller auth.Identity, id string, status string) (*Application, error) {
	to := Status(strings.ToLower(strings.TrimSpace(status)))
	if !to.Valid() {
		return nil, validation.Fail("status", "must be one of: applied, viewed, shortlisted, hired, rejected")
	}
	if !ids.IsULID(id) {
		return nil, ErrNotFound
	}

	application, err := s.repo.Get(ctx, ids.Normalize(id))
	if err != nil {
		return nil, err
	}
	posting, err := s.internships.Get(ctx, application.InternshipID)
	switch {
	case errors.Is(err, internships.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	if !internships.CanManage(caller, posting) {
		return nil, ErrForbidden
	}

	updated, err := s.repo.UpdateStatus(ctx, application.ID, to)
	if err != nil {
		return nil, err
	}

	metrics.ApplicationStatusChanges.WithLabelValues(string(to)).Inc()
	s.logger.Info().
		Str("application_id", application.ID).
		Str("from", string(application.Status)).
		Str("to", string(to)).
		Str("updated_by", caller.AccountID).
		Msg("application status changed")
	return updated, nil
}

func cleanApplyParams(p ApplyParams) ApplyParams {
	p.InternshipID = strings.TrimSpace(p.InternshipID)
	p.CoverLetter = sanitize.Text(p.CoverLetter)
	p.Resume = strings.TrimSpace(p.Resume)

	answers := make([]Answer, 0, len(p.Answers))
	for _, a := range p.Answers {
		a.Question = sanitize.Text(a.Question)
		a.Answer = sanitize.Text(a.Answer)
		if a.Question == "" && a.Answer == "" {
			continue
		}
		answers = append(answers, a)
	}
	p.Answers = answers
	return p
}
