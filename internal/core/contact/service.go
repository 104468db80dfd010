package contact

import (
	"context"
	"fmt"
	"net/mail"
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
	maxShortField = 200
	maxMessage    = 5000
)

// Service は問い合わせに関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase は問い合わせユースケースの公開インターフェースです。
type UseCase interface {
	SubmitContact(ctx context.Context, in SubmitContactInput) (*Contact, error)
	GetContact(ctx context.Context, id string) (*Contact, error)
	ListContacts(ctx context.Context, in ListContactsInput) (*ListContactsResult, error)
	UpdateContactStatus(ctx context.Context, id string, status Status) (*Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// SubmitContactInput は公開フォームからの入力です。
type SubmitContactInput struct {
	Name    string
	Email   string
	Company string
	Phone   string
	Subject string
	Message string
}

// ListContactsInput は一覧取得時の入力です。
type ListContactsInput struct {
	PageSize  int
	PageToken string
	Status    *Status
}

// ListContactsResult は一覧取得結果です。
type ListContactsResult struct {
	Contacts      []*Contact
	NextPageToken string
}

// SubmitContact は問い合わせを new 状態で登録します。
func (s *Service) SubmitContact(ctx context.Context, in SubmitContactInput) (*Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return nil, ErrInvalidEmail
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, ErrInvalidMessage
	}
	if len(message) > maxMessage {
		return nil, fmt.Errorf("message: %w", ErrFieldTooLong)
	}

	fields := map[string]string{
		"name":    name,
		"company": strings.TrimSpace(in.Company),
		"phone":   strings.TrimSpace(in.Phone),
		"subject": strings.TrimSpace(in.Subject),
	}
	for field, value := range fields {
		if len(value) > maxShortField {
			return nil, fmt.Errorf("%s: %w", field, ErrFieldTooLong)
		}
	}

	now := s.clock.Now()
	return s.repo.Create(ctx, &Contact{
		Name:      name,
		Email:     strings.ToLower(addr.Address),
		Company:   fields["company"],
		Phone:     fields["phone"],
		Subject:   fields["subject"],
		Message:   message,
		Status:    StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// GetContact は問い合わせを取得します。
func (s *Service) GetContact(ctx context.Context, id string) (*Contact, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

// ListContacts は問い合わせを新しい順に一覧します。
func (s *Service) ListContacts(ctx context.Context, in ListContactsInput) (*ListContactsResult, error) {
	limit, err := record.NormalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && !IsValidStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}

	contacts, next, err := s.repo.List(ctx, ListFilter{
		Status:    in.Status,
		Limit:     limit,
		PageToken: strings.TrimSpace(in.PageToken),
	})
	if err != nil {
		return nil, err
	}
	return &ListContactsResult{Contacts: contacts, NextPageToken: next}, nil
}

// UpdateContactStatus は対応状況のみを更新します。
func (s *Service) UpdateContactStatus(ctx context.Context, id string, status Status) (*Contact, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	if !IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status, s.clock.Now())
}

// DeleteContact は問い合わせを削除します。
func (s *Service) DeleteContact(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}
