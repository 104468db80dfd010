package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/philocom-backoffice/internal/core/mailbox"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	pgdb "github.com/ogurasousui/philocom-backoffice/internal/platform/db/postgres"
)

var emailColumns = []string{"id", "owner_email", "folder", "from_address", "to_addresses", "cc_addresses", "subject", "body_html", "is_read", "created_at", "updated_at"}

var emailSelect = "SELECT " + strings.Join(emailColumns, ", ") + " FROM emails"

// EmailRepository は社員メールボックスの PostgreSQL 実装です。
type EmailRepository struct {
	pool pgdb.Queryer
}

func NewEmailRepository(pool pgdb.Queryer) *EmailRepository {
	return &EmailRepository{pool: pool}
}

func (r *EmailRepository) Create(ctx context.Context, e *mailbox.Email) (*mailbox.Email, error) {
	row := pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, `
        INSERT INTO emails (owner_email, folder, from_address, to_addresses, cc_addresses, subject, body_html, is_read, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+strings.Join(emailColumns, ", "),
		e.OwnerEmail, string(e.Folder), e.From, nonNilTags(e.To), nonNilTags(e.Cc), e.Subject, e.BodyHTML, e.Read, e.CreatedAt, e.UpdatedAt,
	)
	return scanEmail(row)
}

func (r *EmailRepository) Update(ctx context.Context, id string, changes mailbox.Changes) (*mailbox.Email, error) {
	fields := record.Fields{}
	if changes.Folder != nil {
		fields.Set("folder", string(*changes.Folder))
	}
	if changes.Read != nil {
		fields.Set("is_read", *changes.Read)
	}
	if len(fields) > 0 {
		fields.Set("updated_at", changes.UpdatedAt)
	}

	row, err := UpdateRow(ctx, pgdb.QueryerFromContext(ctx, r.pool), "emails", record.Key{"id": id}, fields, emailColumns)
	if err != nil {
		return nil, err
	}
	return scanEmail(row)
}

func (r *EmailRepository) Delete(ctx context.Context, id string) error {
	tag, err := pgdb.QueryerFromContext(ctx, r.pool).Exec(ctx, `DELETE FROM emails WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mailbox.ErrEmailNotFound
	}
	return nil
}

func (r *EmailRepository) FindByID(ctx context.Context, id string) (*mailbox.Email, error) {
	return scanEmail(pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, emailSelect+` WHERE id = $1`, id))
}

// ListByOwner は所有者のフォルダ内のメールを新しい順に返します。
func (r *EmailRepository) ListByOwner(ctx context.Context, filter mailbox.ListFilter) ([]*mailbox.Email, string, error) {
	if filter.Limit <= 0 {
		return nil, "", record.ErrInvalidPageSize
	}

	var page listPage
	page.where("owner_email", filter.OwnerEmail)
	page.where("folder", string(filter.Folder))
	query, args, offset, err := page.build(emailSelect, "created_at DESC, id DESC", filter.Limit, filter.PageToken)
	if err != nil {
		return nil, "", err
	}

	rows, err := pgdb.QueryerFromContext(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var emails []*mailbox.Email
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, "", err
		}
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := nextToken(len(emails), filter.Limit, offset)
	if next != "" {
		emails = emails[:filter.Limit]
	}
	return emails, next, nil
}

func scanEmail(row pgx.Row) (*mailbox.Email, error) {
	var (
		e      mailbox.Email
		folder string
	)
	if err := row.Scan(&e.ID, &e.OwnerEmail, &folder, &e.From, &e.To, &e.Cc, &e.Subject, &e.BodyHTML, &e.Read, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mailbox.ErrEmailNotFound
		}
		return nil, err
	}
	e.Folder = mailbox.Folder(folder)
	return &e, nil
}
