package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/philocom-backoffice/internal/core/project"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	pgdb "github.com/ogurasousui/philocom-backoffice/internal/platform/db/postgres"
)

var projectColumns = []string{"id", "title", "client", "summary", "description", "tags", "image_url", "status", "created_at", "updated_at"}

var projectSelect = "SELECT " + strings.Join(projectColumns, ", ") + " FROM projects"

// ProjectRepository は制作実績の PostgreSQL 実装です。tags は text[] 列です。
type ProjectRepository struct {
	pool pgdb.Queryer
}

func NewProjectRepository(pool pgdb.Queryer) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (*project.Project, error) {
	row := pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, `
        INSERT INTO projects (title, client, summary, description, tags, image_url, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+strings.Join(projectColumns, ", "),
		p.Title, p.Client, p.Summary, p.Description, nonNilTags(p.Tags), p.ImageURL, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	return scanProject(row)
}

func (r *ProjectRepository) Update(ctx context.Context, id string, changes project.Changes) (*project.Project, error) {
	fields := record.Fields{}
	if changes.Title != nil {
		fields.Set("title", *changes.Title)
	}
	if changes.Client != nil {
		fields.Set("client", *changes.Client)
	}
	if changes.Summary != nil {
		fields.Set("summary", *changes.Summary)
	}
	if changes.Description != nil {
		fields.Set("description", *changes.Description)
	}
	if changes.Tags != nil {
		fields.Set("tags", nonNilTags(*changes.Tags))
	}
	if changes.ImageURL != nil {
		fields.Set("image_url", *changes.ImageURL)
	}
	if changes.Status != nil {
		fields.Set("status", string(*changes.Status))
	}
	if len(fields) > 0 {
		fields.Set("updated_at", changes.UpdatedAt)
	}

	row, err := UpdateRow(ctx, pgdb.QueryerFromContext(ctx, r.pool), "projects", record.Key{"id": id}, fields, projectColumns)
	if err != nil {
		return nil, err
	}
	return scanProject(row)
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := pgdb.QueryerFromContext(ctx, r.pool).Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return project.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*project.Project, error) {
	return scanProject(pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, projectSelect+` WHERE id = $1`, id))
}

func (r *ProjectRepository) List(ctx context.Context, filter project.ListFilter) ([]*project.Project, string, error) {
	if filter.Limit <= 0 {
		return nil, "", record.ErrInvalidPageSize
	}

	var page listPage
	if filter.Status != nil {
		page.where("status", string(*filter.Status))
	}
	query, args, offset, err := page.build(projectSelect, "created_at DESC, id DESC", filter.Limit, filter.PageToken)
	if err != nil {
		return nil, "", err
	}

	rows, err := pgdb.QueryerFromContext(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, "", err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := nextToken(len(projects), filter.Limit, offset)
	if next != "" {
		projects = projects[:filter.Limit]
	}
	return projects, next, nil
}

func scanProject(row pgx.Row) (*project.Project, error) {
	var (
		p      project.Project
		status string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Client, &p.Summary, &p.Description, &p.Tags, &p.ImageURL, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrNotFound
		}
		return nil, err
	}
	p.Status = project.Status(status)
	return &p, nil
}

// nonNilTags は NULL ではなく空配列を書き込むために nil を空スライスにします。
func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
