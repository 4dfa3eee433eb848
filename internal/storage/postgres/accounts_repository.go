package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/internhub/server/internal/auth"
	"github.com/internhub/server/internal/domain/accounts"
	"github.com/jackc/pgx/v5"
)

type AccountRepository struct {
	db queryer
}

const accountColumns = `id, name, email, password_hash, role, company_name, company_website, skills, resume, created_at`

func (r *AccountRepository) Create(ctx context.Context, account accounts.Account) (_ *accounts.Account, err error) {
	defer func(start time.Time) { observe("create_account", start, err) }(time.Now())

	var (
		companyName, companyWebsite, resume *string
		skills                              = []string{}
	)
	if account.Employer != nil {
		companyName = nullableString(account.Employer.CompanyName)
		companyWebsite = nullableString(account.Employer.CompanyWebsite)
	}
	if account.Student != nil {
		skills = nonNilStrings(account.Student.Skills)
		resume = nullableString(account.Student.Resume)
	}

	row := r.db.QueryRow(ctx, `
INSERT INTO accounts (id, name, email, password_hash, role, company_name, company_website, skills, resume, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING `+accountColumns,
		account.ID, account.Name, account.Email, account.PasswordHash, string(account.Role),
		companyName, companyWebsite, skills, resume, account.CreatedAt,
	)
	created, err := scanAccount(row)
	if err != nil {
		if constraint, ok := constraintViolation(err, codeUniqueViolation); ok && constraint == "accounts_email_key" {
			return nil, accounts.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (_ *accounts.Account, err error) {
	defer func(start time.Time) { observe("get_account", start, err) }(time.Now())
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (_ *accounts.Account, err error) {
	defer func(start time.Time) { observe("get_account_by_email", start, err) }(time.Now())
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg string) (*accounts.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, accounts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func scanAccount(row rowScanner) (*accounts.Account, error) {
	var (
		account                             accounts.Account
		role                                string
		companyName, companyWebsite, resume *string
		skills                              []string
	)
	if err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&role,
		&companyName,
		&companyWebsite,
		&skills,
		&resume,
		&account.CreatedAt,
	); err != nil {
		return nil, err
	}

	account.Role = auth.Role(role)
	switch account.Role {
	case auth.RoleEmployer:
		account.Employer = &accounts.EmployerProfile{
			CompanyName:    derefString(companyName),
			CompanyWebsite: derefString(companyWebsite),
		}
	case auth.RoleStudent:
		account.Student = &accounts.StudentProfile{
			Skills: nonNilStrings(skills),
			Resume: derefString(resume),
		}
	}
	return &account, nil
}
