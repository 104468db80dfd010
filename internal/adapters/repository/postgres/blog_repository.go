package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/philocom-backoffice/internal/core/blog"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	pgdb "github.com/ogurasousui/philocom-backoffice/internal/platform/db/postgres"
)

var postColumns = []string{"id", "slug", "title", "excerpt", "body", "author", "tags", "status", "published_at", "created_at", "updated_at"}

var postSelect = "SELECT " + strings.Join(postColumns, ", ") + " FROM blog_posts"

// PostRepository はブログ記事の PostgreSQL 実装です。slug には一意制約があります。
type PostRepository struct {
	pool pgdb.Queryer
}

func NewPostRepository(pool pgdb.Queryer) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, p *blog.Post) (*blog.Post, error) {
	row := pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, `
        INSERT INTO blog_posts (slug, title, excerpt, body, author, tags, status, published_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+strings.Join(postColumns, ", "),
		p.Slug, p.Title, p.Excerpt, p.Body, p.Author, nonNilTags(p.Tags), string(p.Status), p.PublishedAt, p.CreatedAt, p.UpdatedAt,
	)
	created, err := scanPost(row)
	if err != nil {
		return nil, translatePostPgError(err)
	}
	return created, nil
}

func (r *PostRepository) Update(ctx context.Context, id string, changes blog.Changes) (*blog.Post, error) {
	fields := record.Fields{}
	if changes.Slug != nil {
		fields.Set("slug", *changes.Slug)
	}
	if changes.Title != nil {
		fields.Set("title", *changes.Title)
	}
	if changes.Excerpt != nil {
		fields.Set("excerpt", *changes.Excerpt)
	}
	if changes.Body != nil {
		fields.Set("body", *changes.Body)
	}
	if changes.Author != nil {
		fields.Set("author", *changes.Author)
	}
	if changes.Tags != nil {
		fields.Set("tags", nonNilTags(*changes.Tags))
	}
	if changes.Status != nil {
		fields.Set("status", string(*changes.Status))
	}
	if changes.PublishedAt != nil {
		fields.Set("published_at", *changes.PublishedAt)
	}
	if len(fields) > 0 {
		fields.Set("updated_at", changes.UpdatedAt)
	}

	row, err := UpdateRow(ctx, pgdb.QueryerFromContext(ctx, r.pool), "blog_posts", record.Key{"id": id}, fields, postColumns)
	if err != nil {
		return nil, err
	}
	updated, err := scanPost(row)
	if err != nil {
		return nil, translatePostPgError(err)
	}
	return updated, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	tag, err := pgdb.QueryerFromContext(ctx, r.pool).Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*blog.Post, error) {
	return scanPost(pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, postSelect+` WHERE id = $1`, id))
}

func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	return scanPost(pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, postSelect+` WHERE slug = $1`, slug))
}

func (r *PostRepository) List(ctx context.Context, filter blog.ListFilter) ([]*blog.Post, string, error) {
	if filter.Limit <= 0 {
		return nil, "", record.ErrInvalidPageSize
	}

	var page listPage
	if filter.Status != nil {
		page.where("status", string(*filter.Status))
	}
	query, args, offset, err := page.build(postSelect, "created_at DESC, id DESC", filter.Limit, filter.PageToken)
	if err != nil {
		return nil, "", err
	}

	rows, err := pgdb.QueryerFromContext(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var posts []*blog.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, "", err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := nextToken(len(posts), filter.Limit, offset)
	if next != "" {
		posts = posts[:filter.Limit]
	}
	return posts, next, nil
}

func scanPost(row pgx.Row) (*blog.Post, error) {
	var (
		p           blog.Post
		status      string
		publishedAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Body, &p.Author, &p.Tags, &status, &publishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrPostNotFound
		}
		return nil, err
	}
	p.Status = blog.Status(status)
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	return &p, nil
}

func translatePostPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return blog.ErrSlugAlreadyExists
	}
	return err
}
