package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/philocom-backoffice/internal/core/contact"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	pgdb "github.com/ogurasousui/philocom-backoffice/internal/platform/db/postgres"
)

var contactColumns = []string{"id", "name", "email", "company", "phone", "subject", "message", "status", "created_at", "updated_at"}

var contactSelect = "SELECT " + strings.Join(contactColumns, ", ") + " FROM contacts"

// ContactRepository は問い合わせの PostgreSQL 実装です。
type ContactRepository struct {
	pool pgdb.Queryer
}

func NewContactRepository(pool pgdb.Queryer) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Create(ctx context.Context, c *contact.Contact) (*contact.Contact, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO contacts (name, email, company, phone, subject, message, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+strings.Join(contactColumns, ", "),
		c.Name, c.Email, c.Company, c.Phone, c.Subject, c.Message, string(c.Status), c.CreatedAt, c.UpdatedAt,
	)
	return scanContact(row)
}

func (r *ContactRepository) UpdateStatus(ctx context.Context, id string, status contact.Status, updatedAt time.Time) (*contact.Contact, error) {
	fields := record.Fields{"status": string(status), "updated_at": updatedAt}
	row, err := UpdateRow(ctx, pgdb.QueryerFromContext(ctx, r.pool), "contacts", record.Key{"id": id}, fields, contactColumns)
	if err != nil {
		return nil, err
	}
	return scanContact(row)
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	tag, err := pgdb.QueryerFromContext(ctx, r.pool).Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}

func (r *ContactRepository) FindByID(ctx context.Context, id string) (*contact.Contact, error) {
	return scanContact(pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, contactSelect+` WHERE id = $1`, id))
}

// List は新しい順に問い合わせを返します。
func (r *ContactRepository) List(ctx context.Context, filter contact.ListFilter) ([]*contact.Contact, string, error) {
	if filter.Limit <= 0 {
		return nil, "", record.ErrInvalidPageSize
	}

	var page listPage
	if filter.Status != nil {
		page.where("status", string(*filter.Status))
	}
	query, args, offset, err := page.build(contactSelect, "created_at DESC, id DESC", filter.Limit, filter.PageToken)
	if err != nil {
		return nil, "", err
	}

	rows, err := pgdb.QueryerFromContext(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var contacts []*contact.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, "", err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := nextToken(len(contacts), filter.Limit, offset)
	if next != "" {
		contacts = contacts[:filter.Limit]
	}
	return contacts, next, nil
}

func scanContact(row pgx.Row) (*contact.Contact, error) {
	var (
		c      contact.Contact
		status string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Company, &c.Phone, &c.Subject, &c.Message, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contact.ErrNotFound
		}
		return nil, err
	}
	c.Status = contact.Status(status)
	return &c, nil
}
