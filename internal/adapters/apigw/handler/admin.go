// Package handler は API Gateway のルートとユースケースを結び付けます。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ogurasousui/philocom-backoffice/internal/adapters/apigw"
	"github.com/ogurasousui/philocom-backoffice/internal/core/access"
	"github.com/ogurasousui/philocom-backoffice/internal/core/blog"
	"github.com/ogurasousui/philocom-backoffice/internal/core/contact"
	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
	"github.com/ogurasousui/philocom-backoffice/internal/core/project"
)

// AdminHandler は管理画面 API です。すべてのルートで admins グループを要求します。
type AdminHandler struct {
	authz     *access.Authorizer
	employees employee.UseCase
	contacts  contact.UseCase
	projects  project.UseCase
	posts     blog.UseCase
}

// NewAdminHandler は AdminHandler を生成します。
func NewAdminHandler(authz *access.Authorizer, employees employee.UseCase, contacts contact.UseCase, projects project.UseCase, posts blog.UseCase) *AdminHandler {
	if authz == nil {
		authz = access.NewAuthorizer(access.Options{})
	}
	return &AdminHandler{authz: authz, employees: employees, contacts: contacts, projects: projects, posts: posts}
}

// Register はルートを登録します。
func (h *AdminHandler) Register(r *apigw.Router) {
	r.Handle(http.MethodGet, "/admin/employees", h.admin(h.listEmployees))
	r.Handle(http.MethodPost, "/admin/employees", h.admin(h.createEmployee))
	r.Handle(http.MethodGet, "/admin/employees/{id}", h.admin(h.getEmployee))
	r.Handle(http.MethodPut, "/admin/employees/{id}", h.admin(h.updateEmployee))
	r.Handle(http.MethodDelete, "/admin/employees/{id}", h.admin(h.deleteEmployee))

	r.Handle(http.MethodGet, "/admin/contacts", h.admin(h.listContacts))
	r.Handle(http.MethodGet, "/admin/contacts/{id}", h.admin(h.getContact))
	r.Handle(http.MethodPut, "/admin/contacts/{id}", h.admin(h.updateContactStatus))
	r.Handle(http.MethodDelete, "/admin/contacts/{id}", h.admin(h.deleteContact))

	r.Handle(http.MethodGet, "/admin/projects", h.admin(h.listProjects))
	r.Handle(http.MethodPost, "/admin/projects", h.admin(h.createProject))
	r.Handle(http.MethodGet, "/admin/projects/{id}", h.admin(h.getProject))
	r.Handle(http.MethodPut, "/admin/projects/{id}", h.admin(h.updateProject))
	r.Handle(http.MethodDelete, "/admin/projects/{id}", h.admin(h.deleteProject))

	r.Handle(http.MethodGet, "/admin/posts", h.admin(h.listPosts))
	r.Handle(http.MethodPost, "/admin/posts", h.admin(h.createPost))
	r.Handle(http.MethodGet, "/admin/posts/{id}", h.admin(h.getPost))
	r.Handle(http.MethodPut, "/admin/posts/{id}", h.admin(h.updatePost))
	r.Handle(http.MethodDelete, "/admin/posts/{id}", h.admin(h.deletePost))
}

func (h *AdminHandler) admin(next apigw.HandlerFunc) apigw.HandlerFunc {
	return func(ctx context.Context, req apigw.Request) (any, error) {
		if _, err := h.authz.ValidateAdmin(req.Access()); err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func (h *AdminHandler) listEmployees(ctx context.Context, req apigw.Request) (any, error) {
	size, token, err := pageParams(req)
	if err != nil {
		return nil, err
	}

	in := employee.ListEmployeesInput{PageSize: size, PageToken: token}
	if status := req.Query("status"); status != "" {
		in.Status = employeeStatus(&status)
	}

	res, err := h.employees.ListEmployees(ctx, in)
	if err != nil {
		return nil, err
	}
	return newList(res.Employees, res.NextPageToken, toEmployeeResponse), nil
}

func (h *AdminHandler) createEmployee(ctx context.Context, req apigw.Request) (any, error) {
	var body createEmployeeRequest
	if err := req.DecodeJSON(&body); err != nil {
		return nil, err
	}
	if err := validateRequest(body); err != nil {
		return nil, err
	}

	created, err := h.employees.CreateEmployee(ctx, employee.CreateEmployeeInput{
		Name:       body.Name,
		Email:      body.Email,
		LoginEmail: body.LoginEmail,
		Department: body.Department,
		Status:     employeeStatus(body.Status),
	})
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(created), nil
}

func (h *AdminHandler) getEmployee(ctx context.Context, req apigw.Request) (any, error) {
	found, err := h.employees.GetEmployee(ctx, employee.GetEmployeeInput{ID: req.Param("id")})
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(found), nil
}

func (h *AdminHandler) updateEmployee(ctx context.Context, req apigw.Request) (any, error) {
	var body updateEmployeeRequest
	if err := req.DecodeJSON(&body); err != nil {
		return nil, err
	}
	if err := validateRequest(body); err != nil {
		return nil, err
	}

	updated, err := h.employees.UpdateEmployee(ctx, employee.UpdateEmployeeInput{
		ID:         req.Param("id"),
		Name:       body.Name,
		Status:     employeeStatus(body.Status),
		Department: body.Department,
	})
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(updated), nil
}

// deleteEmployee は既定で論理削除し、?hard=true の場合のみ物理削除します。
func (h *AdminHandler) deleteEmployee(ctx context.Context, req apigw.Request) (any, error) {
	in := employee.DeleteEmployeeInput{ID: req.Param("id")}

	hard := false
	if raw := req.Query("hard"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apigw.NewError(http.StatusBadRequest, "hard must be a boolean", nil)
		}
		hard = parsed
	}

	if hard {
		if err := h.employees.DeleteEmployee(ctx, in); err != nil {
			return nil, err
		}
		return deletedResponse{ID: in.ID, Deleted: true}, nil
	}

	deactivated, err := h.employees.DeactivateEmployee(ctx, in)
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(deactivated), nil
}

func (h *AdminHandler) listContacts(ctx context.Context, req apigw.Request) (any, error) {
	size, token, err := pageParams(req)
	if err != nil {
		return nil, err
	}

	in := contact.ListContactsInput{PageSize: size, PageToken: token}
	if status := req.Query("status"); status != "" {
		s := contact.Status(status)
		in.Status = &s
	}

	res, err := h.contacts.ListContacts(ctx, in)
	if err != nil {
		return nil, err
	}
	return newList(res.Contacts, res.NextPageToken, toContactResponse), nil
}

func (h *AdminHandler) getContact(ctx context.Context, req apigw.Request) (any, error) {
	found, err := h.contacts.GetContact(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	return toContactResponse(found), nil
}

func (h *AdminHandler) updateContactStatus(ctx context.Context, req apigw.Request) (any, error) {
	var body updateContactStatusRequest
	if err := req.DecodeJSON(&body); err != nil {
		return nil, err
	}
	if err := validateRequest(body); err != nil {
		return nil, err
	}

	updated, err := h.contacts.UpdateContactStatus(ctx, req.Param("id"), contact.Status(body.Status))
	if err != nil {
		return nil, err
	}
	return toContactResponse(updated), nil
}

func (h *AdminHandler) deleteContact(ctx context.Context, req apigw.Request) (any, error) {
	id := req.Param("id")
	if err := h.contacts.DeleteContact(ctx, id); err != nil {
		return nil, err
	}
	return deletedResponse{ID: id, Deleted: true}, nil
}

func (h *AdminHandler) listProjects(ctx context.Context, req apigw.Request) (any, error) {
	size, token, err := pageParams(req)
	if err != nil {
		return nil, err
	}

	res, err := h.projects.ListProjects(ctx, project.ListProjectsInput{PageSize: size, PageToken: token})
	if err != nil {
		return nil, err
	}
	return newList(res.Projects, res.NextPageToken, toProjectResponse), nil
}

func (h *AdminHandler) createProject(ctx context.Context, req apigw.Request) (any, error) {
	var body createProjectRequest
	if err := req.DecodeJSON(&body); err != nil {
		return nil, err
	}
	if err := validateRequest(body); err != nil {
		return nil, err
	}

	created, err := h.projects.CreateProject(ctx, project.CreateProjectInput{
		Title:       body.Title,
		Client:      body.Client,
		Summary:     body.Summary,
		Description: body.Description,
		Tags:        body.Tags,
		ImageURL:    body.ImageURL,
		Status:      projectStatus(body.Status),
	})
	if err != nil {
		return nil, err
	}
	return toProjectResponse(created), nil
}

func (h *AdminHandler) getProject(ctx context.Context, req apigw.Request) (any, error) {
	found, err := h.projects.GetProject(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	return toProjectResponse(found), nil
}

func (h *AdminHandler) updateProject(ctx context.Context, req apigw.Request) (any, error) {
	var body updateProjectRequest
	if err := req.DecodeJSON(&body); err != nil {
		return nil, err
	}
	if err := validateRequest(body); err != nil {
		return nil, err
	}

	updated, err := h.projects.UpdateProject(ctx, project.UpdateProjectInput{
		ID:          req.Param("id"),
		Title:       body.Title,
		Client:      body.Client,
		Summary:     body.Summary,
		Description: body.Description,
		Tags:        body.Tags,
		ImageURL:    body.ImageURL,
		Status:      projectStatus(body.Status),
	})
	if err != nil {
		return nil, err
	}
	return toProjectResponse(updated), nil
}

func (h *AdminHandler) deleteProject(ctx context.Context, req apigw.Request) (any, error) {
	id := req.Param("id")
	if err := h.projects.DeleteProject(ctx, id); err != nil {
		return nil, err
	}
	return deletedResponse{ID: id, Deleted: true}, nil
}

func (h *AdminHandler) listPosts(ctx context.Context, req apigw.Request) (any, error) {
	size, token, err := pageParams(req)
	if err != nil {
		return nil, err
	}

	res, err := h.posts.ListPosts(ctx, blog.ListPostsInput{PageSize: size, PageToken: token})
	if err != nil {
		return nil, err
	}
	return newList(res.Posts, res.NextPageToken, toPostResponse), nil
}

func (h *AdminHandler) createPost(ctx context.Context, req apigw.Request) (any, error) {
	var body createPostRequest
	if err := req.DecodeJSON(&body); err != nil {
		return nil, err
	}
	if err := validateRequest(body); err != nil {
		return nil, err
	}

	created, err := h.posts.CreatePost(ctx, blog.CreatePostInput{
		Slug:    body.Slug,
		Title:   body.Title,
		Excerpt: body.Excerpt,
		Body:    body.Body,
		Author:  body.Author,
		Tags:    body.Tags,
		Status:  postStatus(body.Status),
	})
	if err != nil {
		return nil, err
	}
	return toPostResponse(created), nil
}

func (h *AdminHandler) getPost(ctx context.Context, req apigw.Request) (any, error) {
	found, err := h.posts.GetPost(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	return toPostResponse(found), nil
}

func (h *AdminHandler) updatePost(ctx context.Context, req apigw.Request) (any, error) {
	var body updatePostRequest
	if err := req.DecodeJSON(&body); err != nil {
		return nil, err
	}
	if err := validateRequest(body); err != nil {
		return nil, err
	}

	updated, err := h.posts.UpdatePost(ctx, blog.UpdatePostInput{
		ID:      req.Param("id"),
		Slug:    body.Slug,
		Title:   body.Title,
		Excerpt: body.Excerpt,
		Body:    body.Body,
		Author:  body.Author,
		Tags:    body.Tags,
		Status:  postStatus(body.Status),
	})
	if err != nil {
		return nil, err
	}
	return toPostResponse(updated), nil
}

func (h *AdminHandler) deletePost(ctx context.Context, req apigw.Request) (any, error) {
	id := req.Param("id")
	if err := h.posts.DeletePost(ctx, id); err != nil {
		return nil, err
	}
	return deletedResponse{ID: id, Deleted: true}, nil
}
