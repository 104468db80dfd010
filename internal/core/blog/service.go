package blog

import (
	"context"
	"errors"
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

const maxTitleLength = 200

// Service はブログ記事のユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase はブログユースケースの公開インターフェースです。
type UseCase interface {
	CreatePost(ctx context.Context, in CreatePostInput) (*Post, error)
	GetPost(ctx context.Context, id string) (*Post, error)
	GetPublishedPostBySlug(ctx context.Context, slug string) (*Post, error)
	ListPosts(ctx context.Context, in ListPostsInput) (*ListPostsResult, error)
	UpdatePost(ctx context.Context, in UpdatePostInput) (*Post, error)
	DeletePost(ctx context.Context, id string) error
}

func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// CreatePostInput は記事作成時の入力です。Slug 省略時はタイトルから生成します。
type CreatePostInput struct {
	Slug    string
	Title   string
	Excerpt string
	Body    string
	Author  string
	Tags    []string
	Status  *Status
}

type UpdatePostInput struct {
	ID      string
	Slug    *string
	Title   *string
	Excerpt *string
	Body    *string
	Author  *string
	Tags    *[]string
	Status  *Status
}

type ListPostsInput struct {
	PageSize      int
	PageToken     string
	PublishedOnly bool
}

type ListPostsResult struct {
	Posts         []*Post
	NextPageToken string
}

// CreatePost は記事を作成します。published で作成した場合は PublishedAt を設定します。
func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (*Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > maxTitleLength {
		return nil, ErrInvalidTitle
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if !ValidSlug(slug) {
		return nil, ErrInvalidSlug
	}

	status := StatusDraft
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status = *in.Status
	}

	if err := s.ensureSlugAvailable(ctx, slug, ""); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	post := &Post{
		Slug:      slug,
		Title:     title,
		Excerpt:   strings.TrimSpace(in.Excerpt),
		Body:      in.Body,
		Author:    strings.TrimSpace(in.Author),
		Tags:      cleanTags(in.Tags),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == StatusPublished {
		post.PublishedAt = &now
	}

	return s.repo.Create(ctx, post)
}

func (s *Service) GetPost(ctx context.Context, id string) (*Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

// GetPublishedPostBySlug は公開済み記事のみを返します。下書きは存在しないものとして扱います。
func (s *Service) GetPublishedPostBySlug(ctx context.Context, slug string) (*Post, error) {
	slug = strings.TrimSpace(slug)
	if !ValidSlug(slug) {
		return nil, ErrPostNotFound
	}

	post, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *Service) ListPosts(ctx context.Context, in ListPostsInput) (*ListPostsResult, error) {
	limit, err := record.NormalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	filter := ListFilter{Limit: limit, PageToken: strings.TrimSpace(in.PageToken)}
	if in.PublishedOnly {
		published := StatusPublished
		filter.Status = &published
	}

	posts, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListPostsResult{Posts: posts, NextPageToken: next}, nil
}

// UpdatePost は指定フィールドを更新します。初めて公開される場合は PublishedAt を設定します。
func (s *Service) UpdatePost(ctx context.Context, in UpdatePostInput) (*Post, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	var changes Changes
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || len(title) > maxTitleLength {
			return nil, ErrInvalidTitle
		}
		changes.Title = &title
	}
	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		if !ValidSlug(slug) {
			return nil, ErrInvalidSlug
		}
		if slug != existing.Slug {
			if err := s.ensureSlugAvailable(ctx, slug, existing.ID); err != nil {
				return nil, err
			}
			changes.Slug = &slug
		}
	}
	if in.Excerpt != nil {
		excerpt := strings.TrimSpace(*in.Excerpt)
		changes.Excerpt = &excerpt
	}
	if in.Body != nil {
		body := *in.Body
		changes.Body = &body
	}
	if in.Author != nil {
		author := strings.TrimSpace(*in.Author)
		changes.Author = &author
	}
	if in.Tags != nil {
		tags := cleanTags(*in.Tags)
		changes.Tags = &tags
	}

	now := s.clock.Now()
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		changes.Status = &status
		if status == StatusPublished && existing.PublishedAt == nil {
			changes.PublishedAt = &now
		}
	}

	if changes == (Changes{}) {
		if in.Slug != nil {
			return existing, nil
		}
		return nil, record.NewValidationError("no valid fields to update")
	}

	changes.UpdatedAt = now
	return s.repo.Update(ctx, existing.ID, changes)
}

func (s *Service) DeletePost(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ensureSlugAvailable(ctx context.Context, slug, selfID string) error {
	found, err := s.repo.FindBySlug(ctx, slug)
	if err != nil && !errors.Is(err, ErrPostNotFound) {
		return err
	}
	if found != nil && found.ID != selfID {
		return ErrSlugAlreadyExists
	}
	return nil
}

func cleanTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
