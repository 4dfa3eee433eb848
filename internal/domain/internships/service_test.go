package internships

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/internhub/server/internal/auth"
	"github.com/internhub/server/internal/domain/accounts"
	"github.com/internhub/server/internal/validation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	postingID  = "01HYX3KQW7ERTV9XNBM2P8QJZF"
	employerID = "01HYX3M0000000000000000001"
	otherID    = "01HYX3M0000000000000000002"
	adminID    = "01HYX3M0000000000000000003"
)

var (
	employer      = auth.Identity{AccountID: employerID, Role: auth.RoleEmployer}
	otherEmployer = auth.Identity{AccountID: otherID, Role: auth.RoleEmployer}
	admin         = auth.Identity{AccountID: adminID, Role: auth.RoleAdmin}
	student       = auth.Identity{AccountID: otherID, Role: auth.RoleStudent}
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, filters Filters) ([]Internship, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]Internship), args.Error(1)
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID string) ([]Internship, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]Internship), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id string) (*Internship, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Internship), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, internship Internship) (*Internship, error) {
	args := m.Called(ctx, internship)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Internship), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (*Internship, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Internship), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) Get(ctx context.Context, accountID string) (*accounts.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Account), args.Error(1)
}

func validParams() CreateParams {
	return CreateParams{
		Title:       "Backend Intern <script>x</script>",
		Location:    "Remote",
		Type:        "Remote",
		Stipend:     "10000/month",
		Duration:    "3 months",
		StartDate:   "Immediately",
		Deadline:    "2026-12-31",
		Description: "<p>Build <b>APIs</b></p><script>alert(1)</script>",
		Questions:   []string{"Why us?", "Earliest start?"},
	}
}

func captureCreate(repo *MockRepository, stored *Internship) {
	repo.On("Create", mock.Anything, mock.AnythingOfType("internships.Internship")).
		Run(func(args mock.Arguments) { *stored = args.Get(1).(Internship) }).
		Return(&Internship{ID: postingID}, nil)
}

func TestCreate_EmployerDefaultsToProfileCompany(t *testing.T) {
	repo := new(MockRepository)
	lookup := new(MockAccounts)
	lookup.On("Get", mock.Anything, employerID).Return(&accounts.Account{
		ID: employerID, Role: auth.RoleEmployer, Employer: &accounts.EmployerProfile{CompanyName: "Acme"},
	}, nil)
	var stored Internship
	captureCreate(repo, &stored)

	svc := NewService(repo, lookup, zerolog.Nop())
	_, err := svc.Create(context.Background(), employer, validParams())
	require.NoError(t, err)

	assert.Equal(t, "Acme", stored.Company)
	assert.Equal(t, "Backend Intern", stored.Title)
	assert.NotContains(t, stored.Description, "<script>")
	assert.Contains(t, stored.Description, "<b>APIs</b>")
	assert.Equal(t, DefaultOpenings, stored.Openings)
	assert.Equal(t, StatusActive, stored.Status)
	assert.Equal(t, employerID, stored.PostedBy)
	assert.Equal(t, []string{"Why us?", "Earliest start?"}, stored.Questions)
	assert.Equal(t, []string{}, stored.Perks)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), stored.Deadline)
}

func TestCreate_ExplicitCompanyWins(t *testing.T) {
	repo := new(MockRepository)
	lookup := new(MockAccounts)
	var stored Internship
	captureCreate(repo, &stored)

	params := validParams()
	params.Company = "Globex"
	openings := 4
	params.Openings = &openings

	_, err := NewService(repo, lookup, zerolog.Nop()).Create(context.Background(), employer, params)
	require.NoError(t, err)
	assert.Equal(t, "Globex", stored.Company)
	assert.Equal(t, 4, stored.Openings)
	lookup.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCreate_AdminWithoutCompanyIsUnknown(t *testing.T) {
	repo := new(MockRepository)
	var stored Internship
	captureCreate(repo, &stored)

	_, err := NewService(repo, new(MockAccounts), zerolog.Nop()).Create(context.Background(), admin, validParams())
	require.NoError(t, err)
	assert.Equal(t, "Unknown", stored.Company)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(new(MockRepository), new(MockAccounts), zerolog.Nop())

	params := validParams()
	params.Title = "<b></b>"
	params.Type = "Onsite"
	_, err := svc.Create(context.Background(), employer, params)
	verr, ok := validation.AsError(err)
	require.True(t, ok, "got %v", err)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "type")

	params = validParams()
	params.Deadline = "31/12/2026"
	_, err = svc.Create(context.Background(), employer, params)
	verr, ok = validation.AsError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "deadline")

	params = validParams()
	zero := 0
	params.Openings = &zero
	_, err = svc.Create(context.Background(), employer, params)
	verr, ok = validation.AsError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "openings")
}

func TestCreate_StudentForbidden(t *testing.T) {
	_, err := NewService(new(MockRepository), new(MockAccounts), zerolog.Nop()).Create(context.Background(), student, validParams())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGet_MalformedID(t *testing.T) {
	repo := new(MockRepository)
	_, err := NewService(repo, new(MockAccounts), zerolog.Nop()).Get(context.Background(), "12345")
	assert.ErrorIs(t, err, ErrNotFound)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestDelete(t *testing.T) {
	owned := &Internship{ID: postingID, PostedBy: employerID, Status: StatusActive}

	t.Run("owner", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", mock.Anything, postingID).Return(owned, nil)
		repo.On("Delete", mock.Anything, postingID).Return(nil)
		require.NoError(t, NewService(repo, nil, zerolog.Nop()).Delete(context.Background(), employer, postingID))
		repo.AssertExpectations(t)
	})

	t.Run("other employer", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", mock.Anything, postingID).Return(owned, nil)
		err := NewService(repo, nil, zerolog.Nop()).Delete(context.Background(), otherEmployer, postingID)
		assert.ErrorIs(t, err, ErrForbidden)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("admin", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", mock.Anything, postingID).Return(owned, nil)
		repo.On("Delete", mock.Anything, postingID).Return(nil)
		require.NoError(t, NewService(repo, nil, zerolog.Nop()).Delete(context.Background(), admin, postingID))
	})

	t.Run("missing", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", mock.Anything, postingID).Return(nil, ErrNotFound)
		err := NewService(repo, nil, zerolog.Nop()).Delete(context.Background(), admin, postingID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateStatus(t *testing.T) {
	owner := &Owner{ID: employerID, Name: "Acme HR", CompanyName: "Acme"}

	t.Run("owner closes posting", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", mock.Anything, postingID).Return(&Internship{ID: postingID, PostedBy: employerID, Status: StatusActive, Owner: owner}, nil)
		repo.On("UpdateStatus", mock.Anything, postingID, StatusActive, StatusClosed).
			Return(&Internship{ID: postingID, PostedBy: employerID, Status: StatusClosed}, nil)

		updated, err := NewService(repo, nil, zerolog.Nop()).UpdateStatus(context.Background(), employer, postingID, "Closed")
		require.NoError(t, err)
		assert.Equal(t, StatusClosed, updated.Status)
		assert.Equal(t, owner, updated.Owner)
	})

	t.Run("active to pending is rejected", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", mock.Anything, postingID).Return(&Internship{ID: postingID, PostedBy: employerID, Status: StatusActive}, nil)

		_, err := NewService(repo, nil, zerolog.Nop()).UpdateStatus(context.Background(), admin, postingID, "pending")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("employer cannot approve pending", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", mock.Anything, postingID).Return(&Internship{ID: postingID, PostedBy: employerID, Status: StatusPending}, nil)

		_, err := NewService(repo, nil, zerolog.Nop()).UpdateStatus(context.Background(), employer, postingID, "active")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		repo := new(MockRepository)
		current := &Internship{ID: postingID, PostedBy: employerID, Status: StatusClosed}
		repo.On("Get", mock.Anything, postingID).Return(current, nil)

		updated, err := NewService(repo, nil, zerolog.Nop()).UpdateStatus(context.Background(), employer, postingID, "closed")
		require.NoError(t, err)
		assert.Same(t, current, updated)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := NewService(new(MockRepository), nil, zerolog.Nop()).UpdateStatus(context.Background(), admin, postingID, "archived")
		_, ok := validation.AsError(err)
		assert.True(t, ok)
	})

	t.Run("not owner", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", mock.Anything, postingID).Return(&Internship{ID: postingID, PostedBy: employerID, Status: StatusActive}, nil)
		_, err := NewService(repo, nil, zerolog.Nop()).UpdateStatus(context.Background(), otherEmployer, postingID, "closed")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("concurrent change surfaces", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Get", mock.Anything, postingID).Return(&Internship{ID: postingID, PostedBy: employerID, Status: StatusActive}, nil)
		repo.On("UpdateStatus", mock.Anything, postingID, StatusActive, StatusClosed).Return(nil, ErrStatusConflict)
		_, err := NewService(repo, nil, zerolog.Nop()).UpdateStatus(context.Background(), employer, postingID, "closed")
		assert.True(t, errors.Is(err, ErrStatusConflict))
	})
}

func TestAcceptsApplications(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	posting := &Internship{Status: StatusActive, Deadline: deadline}

	assert.True(t, posting.AcceptsApplications(time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)))
	assert.False(t, posting.AcceptsApplications(time.Date(2026, 3, 11, 0, 0, 1, 0, time.UTC)))

	posting.Status = StatusClosed
	assert.False(t, posting.AcceptsApplications(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
}
