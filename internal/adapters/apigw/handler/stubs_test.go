package handler

import (
	"context"
	"strconv"

	"github.com/ogurasousui/philocom-backoffice/internal/core/blog"
	"github.com/ogurasousui/philocom-backoffice/internal/core/contact"
	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
	"github.com/ogurasousui/philocom-backoffice/internal/core/mailbox"
	"github.com/ogurasousui/philocom-backoffice/internal/core/project"
)

type stubEmployeeUseCase struct {
	calls []string

	createFn     func(employee.CreateEmployeeInput) (*employee.Employee, error)
	getFn        func(employee.GetEmployeeInput) (*employee.Employee, error)
	updateFn     func(employee.UpdateEmployeeInput) (*employee.Employee, error)
	profileFn    func(employee.UpdateProfileInput) (*employee.Employee, error)
	deactivateFn func(employee.DeleteEmployeeInput) (*employee.Employee, error)
	deleteFn     func(employee.DeleteEmployeeInput) error
	listFn       func(employee.ListEmployeesInput) (*employee.ListEmployeesResult, error)
}

func (s *stubEmployeeUseCase) CreateEmployee(_ context.Context, in employee.CreateEmployeeInput) (*employee.Employee, error) {
	s.calls = append(s.calls, "create")
	return s.createFn(in)
}

func (s *stubEmployeeUseCase) GetEmployee(_ context.Context, in employee.GetEmployeeInput) (*employee.Employee, error) {
	s.calls = append(s.calls, "get")
	return s.getFn(in)
}

func (s *stubEmployeeUseCase) ListEmployees(_ context.Context, in employee.ListEmployeesInput) (*employee.ListEmployeesResult, error) {
	s.calls = append(s.calls, "list")
	return s.listFn(in)
}

func (s *stubEmployeeUseCase) UpdateEmployee(_ context.Context, in employee.UpdateEmployeeInput) (*employee.Employee, error) {
	s.calls = append(s.calls, "update")
	return s.updateFn(in)
}

func (s *stubEmployeeUseCase) UpdateProfile(_ context.Context, in employee.UpdateProfileInput) (*employee.Employee, error) {
	s.calls = append(s.calls, "profile")
	return s.profileFn(in)
}

func (s *stubEmployeeUseCase) DeactivateEmployee(_ context.Context, in employee.DeleteEmployeeInput) (*employee.Employee, error) {
	s.calls = append(s.calls, "deactivate")
	return s.deactivateFn(in)
}

func (s *stubEmployeeUseCase) DeleteEmployee(_ context.Context, in employee.DeleteEmployeeInput) error {
	s.calls = append(s.calls, "delete")
	return s.deleteFn(in)
}

type stubContactUseCase struct {
	submitted *contact.SubmitContactInput
	status    contact.Status
}

func (s *stubContactUseCase) SubmitContact(_ context.Context, in contact.SubmitContactInput) (*contact.Contact, error) {
	s.submitted = &in
	return &contact.Contact{ID: "c-1", Name: in.Name, Email: in.Email, Message: in.Message, Status: contact.StatusNew}, nil
}

func (s *stubContactUseCase) GetContact(_ context.Context, id string) (*contact.Contact, error) {
	return nil, contact.ErrNotFound
}

func (s *stubContactUseCase) ListContacts(context.Context, contact.ListContactsInput) (*contact.ListContactsResult, error) {
	return &contact.ListContactsResult{}, nil
}

func (s *stubContactUseCase) UpdateContactStatus(_ context.Context, id string, status contact.Status) (*contact.Contact, error) {
	s.status = status
	return &contact.Contact{ID: id, Status: status}, nil
}

func (s *stubContactUseCase) DeleteContact(context.Context, string) error { return nil }

type stubProjectUseCase struct {
	listed   *project.ListProjectsInput
	projects map[string]*project.Project
}

func (s *stubProjectUseCase) CreateProject(_ context.Context, in project.CreateProjectInput) (*project.Project, error) {
	return &project.Project{ID: "p-1", Title: in.Title, Tags: in.Tags, Status: project.StatusDraft}, nil
}

func (s *stubProjectUseCase) GetProject(_ context.Context, id string) (*project.Project, error) {
	if p, ok := s.projects[id]; ok {
		return p, nil
	}
	return nil, project.ErrNotFound
}

func (s *stubProjectUseCase) ListProjects(_ context.Context, in project.ListProjectsInput) (*project.ListProjectsResult, error) {
	s.listed = &in
	return &project.ListProjectsResult{Projects: []*project.Project{{ID: "p-1", Title: "Site", Status: project.StatusPublished}}}, nil
}

func (s *stubProjectUseCase) UpdateProject(_ context.Context, in project.UpdateProjectInput) (*project.Project, error) {
	return &project.Project{ID: in.ID}, nil
}

func (s *stubProjectUseCase) DeleteProject(context.Context, string) error { return nil }

type stubPostUseCase struct {
	posts map[string]*blog.Post
}

func (s *stubPostUseCase) CreatePost(_ context.Context, in blog.CreatePostInput) (*blog.Post, error) {
	return &blog.Post{ID: "b-1", Title: in.Title, Slug: "b", Status: blog.StatusDraft}, nil
}

func (s *stubPostUseCase) GetPost(_ context.Context, id string) (*blog.Post, error) {
	return nil, blog.ErrPostNotFound
}

func (s *stubPostUseCase) GetPublishedPostBySlug(_ context.Context, slug string) (*blog.Post, error) {
	if p, ok := s.posts[slug]; ok && p.IsPublished() {
		return p, nil
	}
	return nil, blog.ErrPostNotFound
}

func (s *stubPostUseCase) ListPosts(context.Context, blog.ListPostsInput) (*blog.ListPostsResult, error) {
	return &blog.ListPostsResult{}, nil
}

func (s *stubPostUseCase) UpdatePost(_ context.Context, in blog.UpdatePostInput) (*blog.Post, error) {
	return &blog.Post{ID: in.ID}, nil
}

func (s *stubPostUseCase) DeletePost(context.Context, string) error { return nil }

// memEmails は mailbox.Repository のインメモリ実装です。
type memEmails struct {
	emails map[string]*mailbox.Email
	seq    int
}

func newMemEmails(seed ...*mailbox.Email) *memEmails {
	m := &memEmails{emails: make(map[string]*mailbox.Email)}
	for _, e := range seed {
		m.emails[e.ID] = e
	}
	return m
}

func (m *memEmails) Create(_ context.Context, e *mailbox.Email) (*mailbox.Email, error) {
	m.seq++
	copied := *e
	copied.ID = "gen-" + strconv.Itoa(m.seq)
	m.emails[copied.ID] = &copied
	return &copied, nil
}

func (m *memEmails) Update(_ context.Context, id string, changes mailbox.Changes) (*mailbox.Email, error) {
	e, ok := m.emails[id]
	if !ok {
		return nil, mailbox.ErrEmailNotFound
	}
	if changes.Folder != nil {
		e.Folder = *changes.Folder
	}
	if changes.Read != nil {
		e.Read = *changes.Read
	}
	e.UpdatedAt = changes.UpdatedAt
	return e, nil
}

func (m *memEmails) Delete(_ context.Context, id string) error {
	if _, ok := m.emails[id]; !ok {
		return mailbox.ErrEmailNotFound
	}
	delete(m.emails, id)
	return nil
}

func (m *memEmails) FindByID(_ context.Context, id string) (*mailbox.Email, error) {
	if e, ok := m.emails[id]; ok {
		return e, nil
	}
	return nil, mailbox.ErrEmailNotFound
}

func (m *memEmails) ListByOwner(_ context.Context, filter mailbox.ListFilter) ([]*mailbox.Email, string, error) {
	var out []*mailbox.Email
	for _, e := range m.emails {
		if e.OwnerEmail == filter.OwnerEmail && e.Folder == filter.Folder {
			out = append(out, e)
		}
	}
	return out, "", nil
}
