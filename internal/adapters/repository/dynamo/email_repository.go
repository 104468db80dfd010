package dynamo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ogurasousui/philocom-backoffice/internal/core/mailbox"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	dynamoapi "github.com/ogurasousui/philocom-backoffice/internal/platform/db/dynamo"
)

// EmailOwnerIndex は ownerEmail をパーティション、createdAt をソートキーとする GSI です。
const EmailOwnerIndex = "ownerEmail-index"

type emailItem struct {
	ID         string    `dynamodbav:"id"`
	OwnerEmail string    `dynamodbav:"ownerEmail"`
	Folder     string    `dynamodbav:"folder"`
	From       string    `dynamodbav:"from"`
	To         []string  `dynamodbav:"to"`
	Cc         []string  `dynamodbav:"cc,omitempty"`
	Subject    string    `dynamodbav:"subject"`
	BodyHTML   string    `dynamodbav:"bodyHtml"`
	Read       bool      `dynamodbav:"read"`
	CreatedAt  time.Time `dynamodbav:"createdAt"`
	UpdatedAt  time.Time `dynamodbav:"updatedAt"`
}

func (i emailItem) toEntity() *mailbox.Email {
	return &mailbox.Email{
		ID:         i.ID,
		OwnerEmail: i.OwnerEmail,
		Folder:     mailbox.Folder(i.Folder),
		From:       i.From,
		To:         i.To,
		Cc:         i.Cc,
		Subject:    i.Subject,
		BodyHTML:   i.BodyHTML,
		Read:       i.Read,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

// EmailRepository は社員メールテーブルの実装です。
type EmailRepository struct {
	table
}

func NewEmailRepository(client dynamoapi.API, tableName string) *EmailRepository {
	return &EmailRepository{table{client: client, name: tableName}}
}

func (r *EmailRepository) Create(ctx context.Context, e *mailbox.Email) (*mailbox.Email, error) {
	item := emailItem{
		ID:         uuid.NewString(),
		OwnerEmail: e.OwnerEmail,
		Folder:     string(e.Folder),
		From:       e.From,
		To:         e.To,
		Cc:         e.Cc,
		Subject:    e.Subject,
		BodyHTML:   e.BodyHTML,
		Read:       e.Read,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	if err := r.putNew(ctx, item); err != nil {
		return nil, err
	}
	return item.toEntity(), nil
}

func (r *EmailRepository) Update(ctx context.Context, id string, c mailbox.Changes) (*mailbox.Email, error) {
	fields := record.Fields{}
	if c.Folder != nil {
		fields.Set("folder", string(*c.Folder))
	}
	if c.Read != nil {
		fields.Set("read", *c.Read)
	}
	if len(fields) > 0 {
		fields.Set(attrUpdatedAt, c.UpdatedAt)
	}

	var item emailItem
	if err := r.update(ctx, id, fields, &item); err != nil {
		return nil, translate(err, mailbox.ErrEmailNotFound)
	}
	return item.toEntity(), nil
}

func (r *EmailRepository) Delete(ctx context.Context, id string) error {
	return translate(r.delete(ctx, id), mailbox.ErrEmailNotFound)
}

func (r *EmailRepository) FindByID(ctx context.Context, id string) (*mailbox.Email, error) {
	var item emailItem
	if err := r.get(ctx, id, &item); err != nil {
		return nil, translate(err, mailbox.ErrEmailNotFound)
	}
	return item.toEntity(), nil
}

func (r *EmailRepository) ListByOwner(ctx context.Context, filter mailbox.ListFilter) ([]*mailbox.Email, string, error) {
	var items []emailItem
	next, err := r.queryPage(ctx, EmailOwnerIndex,
		eqFilter{attr: "ownerEmail", value: filter.OwnerEmail},
		[]eqFilter{{attr: "folder", value: string(filter.Folder)}},
		filter.Limit, filter.PageToken, &items)
	if err != nil {
		return nil, "", err
	}

	emails := make([]*mailbox.Email, 0, len(items))
	for _, item := range items {
		emails = append(emails, item.toEntity())
	}
	return emails, next, nil
}
