package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/internhub/server/internal/domain/accounts"
	"github.com/internhub/server/internal/domain/applications"
	"github.com/internhub/server/internal/domain/internships"
	"github.com/internhub/server/internal/metrics"
	"github.com/internhub/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements storage.Repository with a PostgreSQL backend
type Repository struct {
	pool *pgxpool.Pool

	accounts     *AccountRepository
	internships  *InternshipRepository
	applications *ApplicationRepository
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates a new PostgreSQL-backed repository
func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool cannot be nil")
	}

	return &Repository{
		pool:         pool,
		accounts:     &AccountRepository{db: pool},
		internships:  &InternshipRepository{db: pool},
		applications: &ApplicationRepository{db: pool},
	}, nil
}

func (r *Repository) Accounts() accounts.Repository {
	return r.accounts
}

func (r *Repository) Internships() internships.Repository {
	return r.internships
}

func (r *Repository) Applications() applications.Repository {
	return r.applications
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) Close() {
	r.pool.Close()
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// expectedErrors are outcomes the domain handles; they are not store failures.
var expectedErrors = []error{
	accounts.ErrNotFound,
	accounts.ErrDuplicateAccount,
	internships.ErrNotFound,
	internships.ErrStatusConflict,
	applications.ErrNotFound,
	applications.ErrAlreadyApplied,
}

func observe(operation string, start time.Time, err error) {
	for _, expected := range expectedErrors {
		if errors.Is(err, expected) {
			err = nil
			break
		}
	}
	metrics.RecordQuery(operation, start, err)
}
