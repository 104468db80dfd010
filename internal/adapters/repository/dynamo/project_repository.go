package dynamo

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ogurasousui/philocom-backoffice/internal/core/project"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	dynamoapi "github.com/ogurasousui/philocom-backoffice/internal/platform/db/dynamo"
)

type projectItem struct {
	ID          string    `dynamodbav:"id"`
	Title       string    `dynamodbav:"title"`
	Client      string    `dynamodbav:"client"`
	Summary     string    `dynamodbav:"summary"`
	Description string    `dynamodbav:"description"`
	Tags        []string  `dynamodbav:"tags"`
	ImageURL    string    `dynamodbav:"imageUrl"`
	Status      string    `dynamodbav:"status"`
	CreatedAt   time.Time `dynamodbav:"createdAt"`
	UpdatedAt   time.Time `dynamodbav:"updatedAt"`
}

func (i projectItem) toEntity() *project.Project {
	return &project.Project{
		ID:          i.ID,
		Title:       i.Title,
		Client:      i.Client,
		Summary:     i.Summary,
		Description: i.Description,
		Tags:        i.Tags,
		ImageURL:    i.ImageURL,
		Status:      project.Status(i.Status),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// ProjectRepository は制作実績テーブルの実装です。
type ProjectRepository struct {
	table
}

func NewProjectRepository(client dynamoapi.API, tableName string) *ProjectRepository {
	return &ProjectRepository{table{client: client, name: tableName}}
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (*project.Project, error) {
	item := projectItem{
		ID:          uuid.NewString(),
		Title:       p.Title,
		Client:      p.Client,
		Summary:     p.Summary,
		Description: p.Description,
		Tags:        p.Tags,
		ImageURL:    p.ImageURL,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if err := r.putNew(ctx, item); err != nil {
		return nil, err
	}
	return item.toEntity(), nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, c project.Changes) (*project.Project, error) {
	fields := record.Fields{}
	setString := func(name string, v *string) {
		if v != nil {
			fields.Set(name, *v)
		}
	}
	setString("title", c.Title)
	setString("client", c.Client)
	setString("summary", c.Summary)
	setString("description", c.Description)
	setString("imageUrl", c.ImageURL)
	if c.Tags != nil {
		fields.Set("tags", *c.Tags)
	}
	if c.Status != nil {
		fields.Set("status", string(*c.Status))
	}
	if len(fields) > 0 {
		fields.Set(attrUpdatedAt, c.UpdatedAt)
	}

	var item projectItem
	if err := r.update(ctx, id, fields, &item); err != nil {
		return nil, translate(err, project.ErrNotFound)
	}
	return item.toEntity(), nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return translate(r.delete(ctx, id), project.ErrNotFound)
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*project.Project, error) {
	var item projectItem
	if err := r.get(ctx, id, &item); err != nil {
		return nil, translate(err, project.ErrNotFound)
	}
	return item.toEntity(), nil
}

func (r *ProjectRepository) List(ctx context.Context, filter project.ListFilter) ([]*project.Project, string, error) {
	var filters []eqFilter
	if filter.Status != nil {
		filters = append(filters, eqFilter{attr: "status", value: string(*filter.Status)})
	}

	var items []projectItem
	next, err := r.scanPage(ctx, filters, filter.Limit, filter.PageToken, &items)
	if err != nil {
		return nil, "", err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })

	projects := make([]*project.Project, 0, len(items))
	for _, item := range items {
		projects = append(projects, item.toEntity())
	}
	return projects, next, nil
}
