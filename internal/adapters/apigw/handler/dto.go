package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ogurasousui/philocom-backoffice/internal/adapters/apigw"
	"github.com/ogurasousui/philocom-backoffice/internal/core/access"
	"github.com/ogurasousui/philocom-backoffice/internal/core/blog"
	"github.com/ogurasousui/philocom-backoffice/internal/core/contact"
	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
	"github.com/ogurasousui/philocom-backoffice/internal/core/mailbox"
	"github.com/ogurasousui/philocom-backoffice/internal/core/project"
)

type listResponse[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

func newList[E any, T any](items []E, next string, convert func(E) T) listResponse[T] {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return listResponse[T]{Items: out, NextPageToken: next}
}

// pageParams は pageSize と pageToken クエリを読み取ります。
func pageParams(req apigw.Request) (int, string, error) {
	raw := req.Query("pageSize")
	if raw == "" {
		return 0, req.Query("pageToken"), nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size < 0 {
		return 0, "", apigw.NewError(http.StatusBadRequest, "pageSize must be a non-negative integer", nil)
	}
	return size, req.Query("pageToken"), nil
}

type deletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// employee

type employeeResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	LoginEmail    string    `json:"loginEmail"`
	Department    string    `json:"department"`
	Status        string    `json:"status"`
	CognitoUserID string    `json:"cognitoUserId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:            e.ID,
		Name:          e.Name,
		Email:         e.Email,
		LoginEmail:    e.LoginEmail,
		Department:    e.Department,
		Status:        string(e.Status),
		CognitoUserID: e.CognitoUserID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// profileResponse は社員パネル向けの自分自身の情報です。未登録の場合は Provisioned が false です。
type profileResponse struct {
	employeeResponse
	Provisioned bool   `json:"provisioned"`
	Source      string `json:"source"`
}

func toProfileResponse(p *access.Principal) profileResponse {
	return profileResponse{
		employeeResponse: toEmployeeResponse(p.Employee),
		Provisioned:      !p.Synthesized,
		Source:           string(p.Source),
	}
}

type createEmployeeRequest struct {
	Name       string  `json:"name" validate:"required,max=120"`
	Email      string  `json:"email" validate:"required,email"`
	LoginEmail string  `json:"loginEmail" validate:"omitempty,email"`
	Department string  `json:"department" validate:"omitempty,max=100"`
	Status     *string `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

type updateEmployeeRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Status     *string `json:"status" validate:"omitempty,oneof=active inactive suspended"`
	Department *string `json:"department" validate:"omitempty,max=100"`
}

type updateProfileRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Department *string `json:"department" validate:"omitempty,max=100"`
}

func employeeStatus(raw *string) *employee.Status {
	if raw == nil {
		return nil
	}
	s := employee.Status(*raw)
	return &s
}

// contact

type contactResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toContactResponse(c *contact.Contact) contactResponse {
	return contactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Company:   c.Company,
		Phone:     c.Phone,
		Subject:   c.Subject,
		Message:   c.Message,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type submitContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company" validate:"max=200"`
	Phone   string `json:"phone" validate:"max=50"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type updateContactStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new read replied archived"`
}

// project

type projectResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Client      string    `json:"client,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProjectResponse(p *project.Project) projectResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return projectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Client:      p.Client,
		Summary:     p.Summary,
		Description: p.Description,
		Tags:        tags,
		ImageURL:    p.ImageURL,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type createProjectRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Client      string   `json:"client" validate:"max=200"`
	Summary     string   `json:"summary" validate:"max=500"`
	Description string   `json:"description"`
	Tags        []string `json:"tags" validate:"max=20"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,url"`
	Status      *string  `json:"status" validate:"omitempty,oneof=draft published"`
}

type updateProjectRequest struct {
	Title       *string   `json:"title" validate:"omitempty,max=200"`
	Client      *string   `json:"client" validate:"omitempty,max=200"`
	Summary     *string   `json:"summary" validate:"omitempty,max=500"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,url"`
	Status      *string   `json:"status" validate:"omitempty,oneof=draft published"`
}

func projectStatus(raw *string) *project.Status {
	if raw == nil {
		return nil
	}
	s := project.Status(*raw)
	return &s
}

// blog

type postResponse struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Body        string     `json:"body"`
	Author      string     `json:"author,omitempty"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toPostResponse(p *blog.Post) postResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Body:        p.Body,
		Author:      p.Author,
		Tags:        tags,
		Status:      string(p.Status),
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type createPostRequest struct {
	Slug    string   `json:"slug" validate:"max=120"`
	Title   string   `json:"title" validate:"required,max=200"`
	Excerpt string   `json:"excerpt" validate:"max=500"`
	Body    string   `json:"body"`
	Author  string   `json:"author" validate:"max=120"`
	Tags    []string `json:"tags" validate:"max=20"`
	Status  *string  `json:"status" validate:"omitempty,oneof=draft published"`
}

type updatePostRequest struct {
	Slug    *string   `json:"slug" validate:"omitempty,max=120"`
	Title   *string   `json:"title" validate:"omitempty,max=200"`
	Excerpt *string   `json:"excerpt" validate:"omitempty,max=500"`
	Body    *string   `json:"body"`
	Author  *string   `json:"author" validate:"omitempty,max=120"`
	Tags    *[]string `json:"tags"`
	Status  *string   `json:"status" validate:"omitempty,oneof=draft published"`
}

func postStatus(raw *string) *blog.Status {
	if raw == nil {
		return nil
	}
	s := blog.Status(*raw)
	return &s
}

// mailbox

type emailResponse struct {
	ID        string    `json:"id"`
	Folder    string    `json:"folder"`
	From      string    `json:"from"`
	To        []string  `json:"to"`
	Cc        []string  `json:"cc"`
	Subject   string    `json:"subject"`
	BodyHTML  string    `json:"bodyHtml"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toEmailResponse(e *mailbox.Email) emailResponse {
	cc := e.Cc
	if cc == nil {
		cc = []string{}
	}
	return emailResponse{
		ID:        e.ID,
		Folder:    string(e.Folder),
		From:      e.From,
		To:        e.To,
		Cc:        cc,
		Subject:   e.Subject,
		BodyHTML:  e.BodyHTML,
		Read:      e.Read,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

type sendEmailRequest struct {
	To       []string `json:"to" validate:"required,min=1,max=50,dive,email"`
	Cc       []string `json:"cc" validate:"max=50,dive,email"`
	Subject  string   `json:"subject" validate:"max=300"`
	BodyHTML string   `json:"bodyHtml"`
}

type markReadRequest struct {
	Read *bool `json:"read" validate:"required"`
}
