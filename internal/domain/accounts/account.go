package accounts

import (
	"time"

	"github.com/internhub/server/internal/auth"
)

// Account is a registered user. Exactly one of Employer or Student is set for
// the matching role; admins carry neither.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         auth.Role
	Employer     *EmployerProfile
	Student      *StudentProfile
	CreatedAt    time.Time
}

type EmployerProfile struct {
	CompanyName    string
	CompanyWebsite string
}

type StudentProfile struct {
	Skills []string
	Resume string
}

// CompanyName returns the employer's company name, or "" for other roles.
func (a *Account) CompanyName() string {
	if a == nil || a.Employer == nil {
		return ""
	}
	return a.Employer.CompanyName
}

// Resume returns the student's profile resume reference, or "".
func (a *Account) Resume() string {
	if a == nil || a.Student == nil {
		return ""
	}
	return a.Student.Resume
}

// Identity is the token subject for this account.
func (a *Account) Identity() auth.Identity {
	return auth.Identity{AccountID: a.ID, Role: a.Role}
}

// Session is the result of a successful register or login.
type Session struct {
	Token   string
	Account *Account
}
