package mailbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
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

// Directory は宛先が社員かどうかを調べるための社員ストアです。
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*employee.Employee, error)
}

// OutgoingMessage は外部配送に渡すメッセージです。
type OutgoingMessage struct {
	From     string
	To       []string
	Cc       []string
	Subject  string
	BodyHTML string
}

// Sender はメールを外部に配送します。
type Sender interface {
	Send(ctx context.Context, msg OutgoingMessage) error
}

type noopSender struct{}

func (noopSender) Send(context.Context, OutgoingMessage) error { return nil }

const (
	maxSubjectLength = 300
	maxRecipients    = 50
)

// Service は社員メールボックスのユースケースをまとめます。
// すべての操作は呼び出し元社員 (actor) を受け取り、active であることを要求します。
type Service struct {
	repo      Repository
	directory Directory
	sender    Sender
	clock     Clock
}

// UseCase はメールボックスユースケースの公開インターフェースです。
type UseCase interface {
	SendEmail(ctx context.Context, actor *employee.Employee, in SendEmailInput) (*Email, error)
	ListFolder(ctx context.Context, actor *employee.Employee, in ListFolderInput) (*ListFolderResult, error)
	GetEmail(ctx context.Context, actor *employee.Employee, id string) (*Email, error)
	MarkRead(ctx context.Context, actor *employee.Employee, id string, read bool) (*Email, error)
	TrashEmail(ctx context.Context, actor *employee.Employee, id string) (*Email, error)
}

// NewService は Service を生成します。sender と clock は nil の場合に既定実装を使います。
func NewService(repo Repository, directory Directory, sender Sender, clock Clock) *Service {
	if sender == nil {
		sender = noopSender{}
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, directory: directory, sender: sender, clock: clock}
}

type SendEmailInput struct {
	To       []string
	Cc       []string
	Subject  string
	BodyHTML string
}

type ListFolderInput struct {
	Folder    Folder
	PageSize  int
	PageToken string
}

type ListFolderResult struct {
	Emails        []*Email
	NextPageToken string
}

// SendEmail はメールを配送し、送信者の sent と社員である宛先それぞれの inbox に保存します。
func (s *Service) SendEmail(ctx context.Context, actor *employee.Employee, in SendEmailInput) (*Email, error) {
	if !employee.IsEmployeeActive(actor) {
		return nil, employee.ErrEmployeeInactive
	}

	to, err := normalizeRecipients(in.To)
	if err != nil {
		return nil, err
	}
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}
	cc, err := normalizeRecipients(in.Cc)
	if err != nil {
		return nil, err
	}
	if len(to)+len(cc) > maxRecipients {
		return nil, fmt.Errorf("%w: too many recipients", ErrInvalidRecipient)
	}

	subject := strings.TrimSpace(in.Subject)
	if len(subject) > maxSubjectLength {
		return nil, ErrInvalidSubject
	}

	if err := s.sender.Send(ctx, OutgoingMessage{
		From:     actor.Email,
		To:       to,
		Cc:       cc,
		Subject:  subject,
		BodyHTML: in.BodyHTML,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	now := s.clock.Now()
	base := Email{
		From:      actor.Email,
		To:        to,
		Cc:        cc,
		Subject:   subject,
		BodyHTML:  in.BodyHTML,
		CreatedAt: now,
		UpdatedAt: now,
	}

	sent := base
	sent.OwnerEmail = actor.Email
	sent.Folder = FolderSent
	sent.Read = true
	stored, err := s.repo.Create(ctx, &sent)
	if err != nil {
		return nil, err
	}

	for _, recipient := range uniqueRecipients(to, cc) {
		if _, err := s.directory.FindByEmail(ctx, recipient); err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				continue
			}
			return nil, err
		}

		inbox := base
		inbox.OwnerEmail = recipient
		inbox.Folder = FolderInbox
		if _, err := s.repo.Create(ctx, &inbox); err != nil {
			return nil, err
		}
	}

	return stored, nil
}

// ListFolder は呼び出し元のフォルダ内のメールを一覧します。
func (s *Service) ListFolder(ctx context.Context, actor *employee.Employee, in ListFolderInput) (*ListFolderResult, error) {
	if !employee.IsEmployeeActive(actor) {
		return nil, employee.ErrEmployeeInactive
	}

	folder := in.Folder
	if folder == "" {
		folder = FolderInbox
	}
	if !IsValidFolder(folder) {
		return nil, ErrInvalidFolder
	}

	limit, err := record.NormalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	emails, next, err := s.repo.ListByOwner(ctx, ListFilter{
		OwnerEmail: actor.Email,
		Folder:     folder,
		Limit:      limit,
		PageToken:  strings.TrimSpace(in.PageToken),
	})
	if err != nil {
		return nil, err
	}
	return &ListFolderResult{Emails: emails, NextPageToken: next}, nil
}

// GetEmail は所有者本人のメールのみを返します。
func (s *Service) GetEmail(ctx context.Context, actor *employee.Employee, id string) (*Email, error) {
	return s.owned(ctx, actor, id)
}

// MarkRead は既読状態を変更します。
func (s *Service) MarkRead(ctx context.Context, actor *employee.Employee, id string, read bool) (*Email, error) {
	email, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if email.Read == read {
		return email, nil
	}
	return s.repo.Update(ctx, email.ID, Changes{Read: &read, UpdatedAt: s.clock.Now()})
}

// TrashEmail はメールを trash に移します。既に trash にあるメールは完全に削除します。
func (s *Service) TrashEmail(ctx context.Context, actor *employee.Employee, id string) (*Email, error) {
	email, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if email.Folder == FolderTrash {
		if err := s.repo.Delete(ctx, email.ID); err != nil {
			return nil, err
		}
		return email, nil
	}

	trash := FolderTrash
	return s.repo.Update(ctx, email.ID, Changes{Folder: &trash, UpdatedAt: s.clock.Now()})
}

// owned は存在しない ID と他人のメールを区別せず ErrNotOwner を返します。
func (s *Service) owned(ctx context.Context, actor *employee.Employee, id string) (*Email, error) {
	if !employee.IsEmployeeActive(actor) {
		return nil, employee.ErrEmployeeInactive
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	email, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrEmailNotFound) {
		return nil, ErrNotOwner
	}
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(email.OwnerEmail, actor.Email) {
		return nil, ErrNotOwner
	}
	return email, nil
}

func normalizeRecipients(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		addr, err := employee.NormalizeEmail(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRecipient, r)
		}
		out = append(out, addr)
	}
	return out, nil
}

func uniqueRecipients(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, addr := range list {
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			out = append(out, addr)
		}
	}
	return out
}
