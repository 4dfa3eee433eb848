// Package memory is a process-local store with the same constraints as the
// Postgres schema: unique emails, one application per posting and student,
// and applications removed with their posting.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/internhub/server/internal/domain/accounts"
	"github.com/internhub/server/internal/domain/applications"
	"github.com/internhub/server/internal/domain/internships"
	"github.com/internhub/server/internal/storage"
)

type Store struct {
	mu           sync.RWMutex
	accounts     map[string]accounts.Account
	emails       map[string]string
	internships  map[string]internships.Internship
	applications map[string]applications.Application
	applied      map[pairKey]string
}

type pairKey struct {
	internshipID string
	studentID    string
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts:     make(map[string]accounts.Account),
		emails:       make(map[string]string),
		internships:  make(map[string]internships.Internship),
		applications: make(map[string]applications.Application),
		applied:      make(map[pairKey]string),
	}
}

func (s *Store) Accounts() accounts.Repository {
	return accountRepo{s}
}

func (s *Store) Internships() internships.Repository {
	return internshipRepo{s}
}

func (s *Store) Applications() applications.Repository {
	return applicationRepo{s}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() {}

type accountRepo struct{ s *Store }

func (r accountRepo) Create(ctx context.Context, account accounts.Account) (*accounts.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.emails[account.Email]; taken {
		return nil, accounts.ErrDuplicateAccount
	}
	account = cloneAccount(account)
	r.s.accounts[account.ID] = account
	r.s.emails[account.Email] = account.ID
	out := cloneAccount(account)
	return &out, nil
}

func (r accountRepo) GetByID(ctx context.Context, id string) (*accounts.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	account, ok := r.s.accounts[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	out := cloneAccount(account)
	return &out, nil
}

func (r accountRepo) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	r.s.mu.RLock()
	id, ok := r.s.emails[email]
	r.s.mu.RUnlock()
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

type internshipRepo struct{ s *Store }

func (r internshipRepo) List(ctx context.Context, filters internships.Filters) ([]internships.Internship, error) {
	return r.collect(filters.Matches), nil
}

func (r internshipRepo) ListByOwner(ctx context.Context, ownerID string) ([]internships.Internship, error) {
	return r.collect(func(in internships.Internship) bool { return in.PostedBy == ownerID }), nil
}

func (r internshipRepo) collect(keep func(internships.Internship) bool) []internships.Internship {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []internships.Internship{}
	for _, in := range r.s.internships {
		if keep(in) {
			result = append(result, cloneInternship(in))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (r internshipRepo) Get(ctx context.Context, id string) (*internships.Internship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	in, ok := r.s.internships[id]
	if !ok {
		return nil, internships.ErrNotFound
	}
	out := cloneInternship(in)
	if owner, ok := r.s.accounts[in.PostedBy]; ok {
		out.Owner = &internships.Owner{ID: owner.ID, Name: owner.Name, CompanyName: owner.CompanyName()}
	}
	return &out, nil
}

func (r internshipRepo) Create(ctx context.Context, in internships.Internship) (*internships.Internship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	in = cloneInternship(in)
	in.Owner = nil
	r.s.internships[in.ID] = in
	out := cloneInternship(in)
	return &out, nil
}

func (r internshipRepo) UpdateStatus(ctx context.Context, id string, from, to internships.Status) (*internships.Internship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	in, ok := r.s.internships[id]
	if !ok {
		return nil, internships.ErrNotFound
	}
	if in.Status != from {
		return nil, internships.ErrStatusConflict
	}
	in.Status = to
	r.s.internships[id] = in
	out := cloneInternship(in)
	return &out, nil
}

func (r internshipRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.internships[id]; !ok {
		return internships.ErrNotFound
	}
	delete(r.s.internships, id)
	for appID, application := range r.s.applications {
		if application.InternshipID == id {
			delete(r.s.applications, appID)
			delete(r.s.applied, pairKey{application.InternshipID, application.StudentID})
		}
	}
	return nil
}

type applicationRepo struct{ s *Store }

func (r applicationRepo) Create(ctx context.Context, application applications.Application) (*applications.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.internships[application.InternshipID]; !ok {
		return nil, internships.ErrNotFound
	}
	key := pairKey{application.InternshipID, application.StudentID}
	if _, dup := r.s.applied[key]; dup {
		return nil, applications.ErrAlreadyApplied
	}

	application = cloneApplication(application)
	r.s.applications[application.ID] = application
	r.s.applied[key] = application.ID
	out := cloneApplication(application)
	return &out, nil
}

func (r applicationRepo) Exists(ctx context.Context, internshipID, studentID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.applied[pairKey{internshipID, studentID}]
	return ok, nil
}

func (r applicationRepo) Get(ctx context.Context, id string) (*applications.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	application, ok := r.s.applications[id]
	if !ok {
		return nil, applications.ErrNotFound
	}
	out := cloneApplication(application)
	return &out, nil
}

func (r applicationRepo) ListByStudent(ctx context.Context, studentID string) ([]applications.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []applications.Application{}
	for _, application := range r.s.applications {
		if application.StudentID != studentID {
			continue
		}
		in, ok := r.s.internships[application.InternshipID]
		if !ok {
			continue
		}
		out := cloneApplication(application)
		out.Internship = &applications.InternshipSummary{
			ID:       in.ID,
			Title:    in.Title,
			Company:  in.Company,
			Status:   in.Status,
			Type:     in.Type,
			Location: in.Location,
			Stipend:  in.Stipend,
		}
		result = append(result, out)
	}
	sortByAppliedAt(result, true)
	return result, nil
}

func (r applicationRepo) ListByInternship(ctx context.Context, internshipID string) ([]applications.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	in, ok := r.s.internships[internshipID]
	if !ok {
		return []applications.Application{}, nil
	}

	result := []applications.Application{}
	for _, application := range r.s.applications {
		if application.InternshipID != internshipID {
			continue
		}
		student, ok := r.s.accounts[application.StudentID]
		if !ok {
			continue
		}
		out := cloneApplication(application)
		summary := &applications.StudentSummary{ID: student.ID, Name: student.Name, Email: student.Email, Skills: []string{}}
		if student.Student != nil {
			summary.Skills = append(summary.Skills, student.Student.Skills...)
			summary.Resume = student.Student.Resume
		}
		out.Student = summary
		out.InternshipTitle = in.Title
		result = append(result, out)
	}
	sortByAppliedAt(result, false)
	return result, nil
}

func (r applicationRepo) UpdateStatus(ctx context.Context, id string, status applications.Status) (*applications.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	application, ok := r.s.applications[id]
	if !ok {
		return nil, applications.ErrNotFound
	}
	application.Status = status
	r.s.applications[id] = application
	out := cloneApplication(application)
	return &out, nil
}

func sortByAppliedAt(list []applications.Application, newestFirst bool) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.AppliedAt.Equal(b.AppliedAt) {
			if newestFirst {
				return a.AppliedAt.After(b.AppliedAt)
			}
			return a.AppliedAt.Before(b.AppliedAt)
		}
		if newestFirst {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string{}, values...)
}

func cloneAccount(a accounts.Account) accounts.Account {
	if a.Employer != nil {
		employer := *a.Employer
		a.Employer = &employer
	}
	if a.Student != nil {
		student := *a.Student
		student.Skills = cloneStrings(student.Skills)
		a.Student = &student
	}
	return a
}

func cloneInternship(in internships.Internship) internships.Internship {
	in.SkillsRequired = cloneStrings(in.SkillsRequired)
	in.Perks = cloneStrings(in.Perks)
	in.Questions = cloneStrings(in.Questions)
	in.Owner = nil
	return in
}

func cloneApplication(a applications.Application) applications.Application {
	a.Answers = append([]applications.Answer{}, a.Answers...)
	a.Internship = nil
	a.Student = nil
	a.InternshipTitle = ""
	return a
}
