package handlers

import (
	"time"

	"github.com/internhub/server/internal/domain/accounts"
	"github.com/internhub/server/internal/domain/applications"
	"github.com/internhub/server/internal/domain/internships"
)

const dateLayout = "2006-01-02"

// AccountResponse is the public profile of an account. Password hashes never
// leave the service.
type AccountResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	CompanyName    string    `json:"companyName,omitempty"`
	CompanyWebsite string    `json:"companyWebsite,omitempty"`
	Skills         []string  `json:"skills,omitempty"`
	Resume         string    `json:"resume,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type SessionUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName,omitempty"`
}

type SessionResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

type OwnerResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName,omitempty"`
}

// InternshipResponse renders a posting. PostedBy is the owner id, or an
// OwnerResponse when the owner was joined.
type InternshipResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	Type           string    `json:"type"`
	PartTime       bool      `json:"partTime"`
	Stipend        string    `json:"stipend"`
	Duration       string    `json:"duration"`
	StartDate      string    `json:"startDate"`
	Deadline       string    `json:"deadline"`
	Openings       int       `json:"openings"`
	Description    string    `json:"description"`
	SkillsRequired []string  `json:"skillsRequired"`
	Perks          []string  `json:"perks"`
	Questions      []string  `json:"questions"`
	PostedBy       any       `json:"postedBy"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

type InternshipSummaryResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company,omitempty"`
	Status   string `json:"status,omitempty"`
	Type     string `json:"type,omitempty"`
	Location string `json:"location,omitempty"`
	Stipend  string `json:"stipend,omitempty"`
}

type StudentSummaryResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Skills []string `json:"skills"`
	Resume string   `json:"resume,omitempty"`
}

// ApplicationResponse renders an application. Internship and Student are ids
// unless the listing populated them with summaries.
type ApplicationResponse struct {
	ID          string                `json:"id"`
	Internship  any                   `json:"internship"`
	Student     any                   `json:"student"`
	CoverLetter string                `json:"coverLetter"`
	Resume      string                `json:"resume,omitempty"`
	Answers     []applications.Answer `json:"answers"`
	Status      string                `json:"status"`
	AppliedAt   time.Time             `json:"appliedAt"`
}

func newAccountResponse(a *accounts.Account) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt,
	}
	if a.Employer != nil {
		resp.CompanyName = a.Employer.CompanyName
		resp.CompanyWebsite = a.Employer.CompanyWebsite
	}
	if a.Student != nil {
		resp.Skills = a.Student.Skills
		resp.Resume = a.Student.Resume
	}
	return resp
}

func newSessionResponse(s *accounts.Session) SessionResponse {
	return SessionResponse{
		Token: s.Token,
		User: SessionUser{
			ID:          s.Account.ID,
			Name:        s.Account.Name,
			Role:        string(s.Account.Role),
			CompanyName: s.Account.CompanyName(),
		},
	}
}

func newInternshipResponse(in *internships.Internship) InternshipResponse {
	var postedBy any = in.PostedBy
	if in.Owner != nil {
		postedBy = OwnerResponse{ID: in.Owner.ID, Name: in.Owner.Name, CompanyName: in.Owner.CompanyName}
	}
	deadline := ""
	if !in.Deadline.IsZero() {
		deadline = in.Deadline.Format(dateLayout)
	}
	return InternshipResponse{
		ID:             in.ID,
		Title:          in.Title,
		Company:        in.Company,
		Location:       in.Location,
		Type:           string(in.Type),
		PartTime:       in.PartTime,
		Stipend:        in.Stipend,
		Duration:       in.Duration,
		StartDate:      in.StartDate,
		Deadline:       deadline,
		Openings:       in.Openings,
		Description:    in.Description,
		SkillsRequired: nonNilStrings(in.SkillsRequired),
		Perks:          nonNilStrings(in.Perks),
		Questions:      nonNilStrings(in.Questions),
		PostedBy:       postedBy,
		Status:         string(in.Status),
		CreatedAt:      in.CreatedAt,
	}
}

func newInternshipList(list []internships.Internship) []InternshipResponse {
	out := make([]InternshipResponse, 0, len(list))
	for i := range list {
		out = append(out, newInternshipResponse(&list[i]))
	}
	return out
}

func newApplicationResponse(a *applications.Application) ApplicationResponse {
	var internship any = a.InternshipID
	switch {
	case a.Internship != nil:
		internship = InternshipSummaryResponse{
			ID:       a.Internship.ID,
			Title:    a.Internship.Title,
			Company:  a.Internship.Company,
			Status:   string(a.Internship.Status),
			Type:     string(a.Internship.Type),
			Location: a.Internship.Location,
			Stipend:  a.Internship.Stipend,
		}
	case a.InternshipTitle != "":
		internship = InternshipSummaryResponse{ID: a.InternshipID, Title: a.InternshipTitle}
	}

	var student any = a.StudentID
	if a.Student != nil {
		student = StudentSummaryResponse{
			ID:     a.Student.ID,
			Name:   a.Student.Name,
			Email:  a.Student.Email,
			Skills: nonNilStrings(a.Student.Skills),
			Resume: a.Student.Resume,
		}
	}

	answers := a.Answers
	if answers == nil {
		answers = []applications.Answer{}
	}
	return ApplicationResponse{
		ID:          a.ID,
		Internship:  internship,
		Student:     student,
		CoverLetter: a.CoverLetter,
		Resume:      a.Resume,
		Answers:     answers,
		Status:      string(a.Status),
		AppliedAt:   a.AppliedAt,
	}
}

func newApplicationList(list []applications.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(list))
	for i := range list {
		out = append(out, newApplicationResponse(&list[i]))
	}
	return out
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
