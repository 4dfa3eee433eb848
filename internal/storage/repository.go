package storage

import (
	"context"

	"github.com/internhub/server/internal/domain/accounts"
	"github.com/internhub/server/internal/domain/applications"
	"github.com/internhub/server/internal/domain/internships"
)

// Repository groups data access by domain.
type Repository interface {
	Accounts() accounts.Repository
	Internships() internships.Repository
	Applications() applications.Repository

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
	Close()
}
