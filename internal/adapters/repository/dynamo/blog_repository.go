package dynamo

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ogurasousui/philocom-backoffice/internal/core/blog"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	dynamoapi "github.com/ogurasousui/philocom-backoffice/internal/platform/db/dynamo"
)

const BlogSlugIndex = "slug-index"

type postItem struct {
	ID          string     `dynamodbav:"id"`
	Slug        string     `dynamodbav:"slug"`
	Title       string     `dynamodbav:"title"`
	Excerpt     string     `dynamodbav:"excerpt"`
	Body        string     `dynamodbav:"body"`
	Author      string     `dynamodbav:"author"`
	Tags        []string   `dynamodbav:"tags"`
	Status      string     `dynamodbav:"status"`
	PublishedAt *time.Time `dynamodbav:"publishedAt,omitempty"`
	CreatedAt   time.Time  `dynamodbav:"createdAt"`
	UpdatedAt   time.Time  `dynamodbav:"updatedAt"`
}

func (i postItem) toEntity() *blog.Post {
	return &blog.Post{
		ID:          i.ID,
		Slug:        i.Slug,
		Title:       i.Title,
		Excerpt:     i.Excerpt,
		Body:        i.Body,
		Author:      i.Author,
		Tags:        i.Tags,
		Status:      blog.Status(i.Status),
		PublishedAt: i.PublishedAt,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// PostRepository はブログ記事テーブルの実装です。slug の検索に slug-index を使います。
type PostRepository struct {
	table
}

func NewPostRepository(client dynamoapi.API, tableName string) *PostRepository {
	return &PostRepository{table{client: client, name: tableName}}
}

func (r *PostRepository) Create(ctx context.Context, p *blog.Post) (*blog.Post, error) {
	item := postItem{
		ID:          uuid.NewString(),
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Body:        p.Body,
		Author:      p.Author,
		Tags:        p.Tags,
		Status:      string(p.Status),
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if err := r.putNew(ctx, item); err != nil {
		return nil, err
	}
	return item.toEntity(), nil
}

func (r *PostRepository) Update(ctx context.Context, id string, c blog.Changes) (*blog.Post, error) {
	fields := record.Fields{}
	setString := func(name string, v *string) {
		if v != nil {
			fields.Set(name, *v)
		}
	}
	setString("slug", c.Slug)
	setString("title", c.Title)
	setString("excerpt", c.Excerpt)
	setString("body", c.Body)
	setString("author", c.Author)
	if c.Tags != nil {
		fields.Set("tags", *c.Tags)
	}
	if c.Status != nil {
		fields.Set("status", string(*c.Status))
	}
	if c.PublishedAt != nil {
		fields.Set("publishedAt", *c.PublishedAt)
	}
	if len(fields) > 0 {
		fields.Set(attrUpdatedAt, c.UpdatedAt)
	}

	var item postItem
	if err := r.update(ctx, id, fields, &item); err != nil {
		return nil, translate(err, blog.ErrPostNotFound)
	}
	return item.toEntity(), nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return translate(r.delete(ctx, id), blog.ErrPostNotFound)
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*blog.Post, error) {
	var item postItem
	if err := r.get(ctx, id, &item); err != nil {
		return nil, translate(err, blog.ErrPostNotFound)
	}
	return item.toEntity(), nil
}

func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	var item postItem
	if err := r.queryOne(ctx, BlogSlugIndex, "slug", slug, &item); err != nil {
		return nil, translate(err, blog.ErrPostNotFound)
	}
	return item.toEntity(), nil
}

func (r *PostRepository) List(ctx context.Context, filter blog.ListFilter) ([]*blog.Post, string, error) {
	var filters []eqFilter
	if filter.Status != nil {
		filters = append(filters, eqFilter{attr: "status", value: string(*filter.Status)})
	}

	var items []postItem
	next, err := r.scanPage(ctx, filters, filter.Limit, filter.PageToken, &items)
	if err != nil {
		return nil, "", err
	}

	sort.Slice(items, func(i, j int) bool { return sortTime(items[i]).After(sortTime(items[j])) })

	posts := make([]*blog.Post, 0, len(items))
	for _, item := range items {
		posts = append(posts, item.toEntity())
	}
	return posts, next, nil
}

func sortTime(i postItem) time.Time {
	if i.PublishedAt != nil {
		return *i.PublishedAt
	}
	return i.CreatedAt
}
