package dynamo

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ogurasousui/philocom-backoffice/internal/core/contact"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	dynamoapi "github.com/ogurasousui/philocom-backoffice/internal/platform/db/dynamo"
)

type contactItem struct {
	ID        string    `dynamodbav:"id"`
	Name      string    `dynamodbav:"name"`
	Email     string    `dynamodbav:"email"`
	Company   string    `dynamodbav:"company,omitempty"`
	Phone     string    `dynamodbav:"phone,omitempty"`
	Subject   string    `dynamodbav:"subject,omitempty"`
	Message   string    `dynamodbav:"message"`
	Status    string    `dynamodbav:"status"`
	CreatedAt time.Time `dynamodbav:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updatedAt"`
}

func (i contactItem) toEntity() *contact.Contact {
	return &contact.Contact{
		ID:        i.ID,
		Name:      i.Name,
		Email:     i.Email,
		Company:   i.Company,
		Phone:     i.Phone,
		Subject:   i.Subject,
		Message:   i.Message,
		Status:    contact.Status(i.Status),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// ContactRepository は問い合わせテーブルの実装です。
type ContactRepository struct {
	table
}

func NewContactRepository(client dynamoapi.API, tableName string) *ContactRepository {
	return &ContactRepository{table{client: client, name: tableName}}
}

func (r *ContactRepository) Create(ctx context.Context, c *contact.Contact) (*contact.Contact, error) {
	item := contactItem{
		ID:        uuid.NewString(),
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
	if err := r.putNew(ctx, item); err != nil {
		return nil, err
	}
	return item.toEntity(), nil
}

func (r *ContactRepository) UpdateStatus(ctx context.Context, id string, status contact.Status, updatedAt time.Time) (*contact.Contact, error) {
	var item contactItem
	fields := record.Fields{"status": string(status), attrUpdatedAt: updatedAt}
	if err := r.update(ctx, id, fields, &item); err != nil {
		return nil, translate(err, contact.ErrNotFound)
	}
	return item.toEntity(), nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	return translate(r.delete(ctx, id), contact.ErrNotFound)
}

func (r *ContactRepository) FindByID(ctx context.Context, id string) (*contact.Contact, error) {
	var item contactItem
	if err := r.get(ctx, id, &item); err != nil {
		return nil, translate(err, contact.ErrNotFound)
	}
	return item.toEntity(), nil
}

func (r *ContactRepository) List(ctx context.Context, filter contact.ListFilter) ([]*contact.Contact, string, error) {
	var filters []eqFilter
	if filter.Status != nil {
		filters = append(filters, eqFilter{attr: "status", value: string(*filter.Status)})
	}

	var items []contactItem
	next, err := r.scanPage(ctx, filters, filter.Limit, filter.PageToken, &items)
	if err != nil {
		return nil, "", err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })

	contacts := make([]*contact.Contact, 0, len(items))
	for _, item := range items {
		contacts = append(contacts, item.toEntity())
	}
	return contacts, next, nil
}
