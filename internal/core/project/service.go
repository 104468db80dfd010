package project

import (
	"context"
	"strings"
	"time"

	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

const (
	maxTitleLength = 200
	maxTags        = 20
)

// Service は制作実績のユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase は制作実績ユースケースの公開インターフェースです。
type UseCase interface {
	CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context, in ListProjectsInput) (*ListProjectsResult, error)
	UpdateProject(ctx context.Context, in UpdateProjectInput) (*Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

type CreateProjectInput struct {
	Title       string
	Client      string
	Summary     string
	Description string
	Tags        []string
	ImageURL    string
	Status      *Status
}

type UpdateProjectInput struct {
	ID          string
	Title       *string
	Client      *string
	Summary     *string
	Description *string
	Tags        *[]string
	ImageURL    *string
	Status      *Status
}

// ListProjectsInput は一覧取得時の入力です。PublishedOnly は公開サイト向けです。
type ListProjectsInput struct {
	PageSize      int
	PageToken     string
	PublishedOnly bool
}

type ListProjectsResult struct {
	Projects      []*Project
	NextPageToken string
}

// CreateProject は制作実績を作成します。ステータス省略時は draft です。
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	status := StatusDraft
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status = *in.Status
	}

	now := s.clock.Now()
	return s.repo.Create(ctx, &Project{
		Title:       title,
		Client:      strings.TrimSpace(in.Client),
		Summary:     strings.TrimSpace(in.Summary),
		Description: strings.TrimSpace(in.Description),
		Tags:        tags,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *Service) GetProject(ctx context.Context, id string) (*Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context, in ListProjectsInput) (*ListProjectsResult, error) {
	limit, err := record.NormalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	filter := ListFilter{Limit: limit, PageToken: strings.TrimSpace(in.PageToken)}
	if in.PublishedOnly {
		published := StatusPublished
		filter.Status = &published
	}

	projects, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListProjectsResult{Projects: projects, NextPageToken: next}, nil
}

// UpdateProject は指定されたフィールドのみを更新します。
func (s *Service) UpdateProject(ctx context.Context, in UpdateProjectInput) (*Project, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, ErrInvalidID
	}

	var changes Changes
	if in.Title != nil {
		title, err := normalizeTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		changes.Title = &title
	}
	changes.Client = trimmed(in.Client)
	changes.Summary = trimmed(in.Summary)
	changes.Description = trimmed(in.Description)
	changes.ImageURL = trimmed(in.ImageURL)
	if in.Tags != nil {
		tags, err := normalizeTags(*in.Tags)
		if err != nil {
			return nil, err
		}
		changes.Tags = &tags
	}
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		changes.Status = &status
	}

	if changes == (Changes{}) {
		return nil, record.NewValidationError("no valid fields to update")
	}

	changes.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, in.ID, changes)
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" || len(title) > maxTitleLength {
		return "", ErrInvalidTitle
	}
	return title, nil
}

func normalizeTags(raw []string) ([]string, error) {
	if len(raw) > maxTags {
		return nil, ErrInvalidTag
	}
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		t := strings.TrimSpace(tag)
		if t == "" {
			return nil, ErrInvalidTag
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}
