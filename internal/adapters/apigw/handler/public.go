package handler

import (
	"context"
	"net/http"

	"github.com/ogurasousui/philocom-backoffice/internal/adapters/apigw"
	"github.com/ogurasousui/philocom-backoffice/internal/core/blog"
	"github.com/ogurasousui/philocom-backoffice/internal/core/contact"
	"github.com/ogurasousui/philocom-backoffice/internal/core/project"
)

// PublicHandler はウェブサイト向けの認証不要 API です。公開済みのコンテンツのみを返します。
type PublicHandler struct {
	contacts contact.UseCase
	projects project.UseCase
	posts    blog.UseCase
}

func NewPublicHandler(contacts contact.UseCase, projects project.UseCase, posts blog.UseCase) *PublicHandler {
	return &PublicHandler{contacts: contacts, projects: projects, posts: posts}
}

func (h *PublicHandler) Register(r *apigw.Router) {
	r.Handle(http.MethodPost, "/contact", h.submitContact)
	r.Handle(http.MethodGet, "/projects", h.listProjects)
	r.Handle(http.MethodGet, "/projects/{id}", h.getProject)
	r.Handle(http.MethodGet, "/posts", h.listPosts)
	r.Handle(http.MethodGet, "/posts/{slug}", h.getPost)
}

func (h *PublicHandler) submitContact(ctx context.Context, req apigw.Request) (any, error) {
	var body submitContactRequest
	if err := req.DecodeJSON(&body); err != nil {
		return nil, err
	}
	if err := validateRequest(body); err != nil {
		return nil, err
	}

	created, err := h.contacts.SubmitContact(ctx, contact.SubmitContactInput{
		Name:    body.Name,
		Email:   body.Email,
		Company: body.Company,
		Phone:   body.Phone,
		Subject: body.Subject,
		Message: body.Message,
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"id": created.ID}, nil
}

func (h *PublicHandler) listProjects(ctx context.Context, req apigw.Request) (any, error) {
	size, token, err := pageParams(req)
	if err != nil {
		return nil, err
	}

	res, err := h.projects.ListProjects(ctx, project.ListProjectsInput{PageSize: size, PageToken: token, PublishedOnly: true})
	if err != nil {
		return nil, err
	}
	return newList(res.Projects, res.NextPageToken, toProjectResponse), nil
}

func (h *PublicHandler) getProject(ctx context.Context, req apigw.Request) (any, error) {
	found, err := h.projects.GetProject(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	if found.Status != project.StatusPublished {
		return nil, project.ErrNotFound
	}
	return toProjectResponse(found), nil
}

func (h *PublicHandler) listPosts(ctx context.Context, req apigw.Request) (any, error) {
	size, token, err := pageParams(req)
	if err != nil {
		return nil, err
	}

	res, err := h.posts.ListPosts(ctx, blog.ListPostsInput{PageSize: size, PageToken: token, PublishedOnly: true})
	if err != nil {
		return nil, err
	}
	return newList(res.Posts, res.NextPageToken, toPostResponse), nil
}

func (h *PublicHandler) getPost(ctx context.Context, req apigw.Request) (any, error) {
	found, err := h.posts.GetPublishedPostBySlug(ctx, req.Param("slug"))
	if err != nil {
		return nil, err
	}
	return toPostResponse(found), nil
}
