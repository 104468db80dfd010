package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ogurasousui/philocom-backoffice/internal/adapters/apigw"
	"github.com/ogurasousui/philocom-backoffice/internal/core/access"
	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
	"github.com/ogurasousui/philocom-backoffice/internal/core/mailbox"
)

// EmployeeHandler は社員パネル API です。
// 更新系のルートはすべて access.RequireActive を通過した社員でのみ実行されます。
type EmployeeHandler struct {
	resolver  *access.Resolver
	employees employee.UseCase
	mailbox   mailbox.UseCase
	logger    *slog.Logger
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(resolver *access.Resolver, employees employee.UseCase, mail mailbox.UseCase, logger *slog.Logger) *EmployeeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmployeeHandler{resolver: resolver, employees: employees, mailbox: mail, logger: logger}
}

// Register はルートを登録します。
func (h *EmployeeHandler) Register(r *apigw.Router) {
	r.Handle(http.MethodGet, "/employee/me", h.getProfile)
	r.Handle(http.MethodPut, "/employee/me", h.active(h.updateProfile))

	r.Handle(http.MethodGet, "/employee/emails", h.active(h.listEmails))
	r.Handle(http.MethodPost, "/employee/emails", h.active(h.sendEmail))
	r.Handle(http.MethodGet, "/employee/emails/{id}", h.active(h.getEmail))
	r.Handle(http.MethodPut, "/employee/emails/{id}/read", h.active(h.markRead))
	r.Handle(http.MethodDelete, "/employee/emails/{id}", h.active(h.trashEmail))
}

type activeHandlerFunc func(ctx context.Context, actor *employee.Employee, req apigw.Request) (any, error)

// principal は認可判定と社員解決を行います。
func (h *EmployeeHandler) principal(ctx context.Context, req apigw.Request) (*access.Principal, error) {
	areq := req.Access()

	decision := h.resolver.Authorizer().ValidateAccess(areq)
	if !decision.Authorized {
		return nil, decision.Err
	}

	p, err := h.resolver.ResolveEmployee(ctx, areq)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, access.ErrNoAuthorization
	}
	if p.Source == access.SourceHeader {
		h.logger.WarnContext(ctx, "employee identified by unsigned header", slog.String("email", p.Email()))
	}
	return p, nil
}

// active は有効な社員でない場合に 403 で拒否します。
func (h *EmployeeHandler) active(next activeHandlerFunc) apigw.HandlerFunc {
	return func(ctx context.Context, req apigw.Request) (any, error) {
		p, err := h.principal(ctx, req)
		if err != nil {
			return nil, err
		}
		actor, err := access.RequireActive(p)
		if err != nil {
			return nil, err
		}
		return next(ctx, actor, req)
	}
}

// getProfile は読み取り専用のため、未登録の社員にも合成されたプロフィールを返します。
func (h *EmployeeHandler) getProfile(ctx context.Context, req apigw.Request) (any, error) {
	p, err := h.principal(ctx, req)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(p), nil
}

func (h *EmployeeHandler) updateProfile(ctx context.Context, actor *employee.Employee, req apigw.Request) (any, error) {
	var body updateProfileRequest
	if err := req.DecodeJSON(&body); err != nil {
		return nil, err
	}
	if err := validateRequest(body); err != nil {
		return nil, err
	}

	updated, err := h.employees.UpdateProfile(ctx, employee.UpdateProfileInput{
		ID:         actor.ID,
		Name:       body.Name,
		Department: body.Department,
	})
	if err != nil {
		// 解決後に削除された場合も存在を明かさない
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, access.ErrNotProvisioned
		}
		return nil, err
	}
	return toEmployeeResponse(updated), nil
}

func (h *EmployeeHandler) listEmails(ctx context.Context, actor *employee.Employee, req apigw.Request) (any, error) {
	size, token, err := pageParams(req)
	if err != nil {
		return nil, err
	}

	res, err := h.mailbox.ListFolder(ctx, actor, mailbox.ListFolderInput{
		Folder:    mailbox.Folder(req.Query("folder")),
		PageSize:  size,
		PageToken: token,
	})
	if err != nil {
		return nil, err
	}
	return newList(res.Emails, res.NextPageToken, toEmailResponse), nil
}

func (h *EmployeeHandler) sendEmail(ctx context.Context, actor *employee.Employee, req apigw.Request) (any, error) {
	var body sendEmailRequest
	if err := req.DecodeJSON(&body); err != nil {
		return nil, err
	}
	if err := validateRequest(body); err != nil {
		return nil, err
	}

	sent, err := h.mailbox.SendEmail(ctx, actor, mailbox.SendEmailInput{
		To:       body.To,
		Cc:       body.Cc,
		Subject:  body.Subject,
		BodyHTML: body.BodyHTML,
	})
	if err != nil {
		return nil, err
	}
	return toEmailResponse(sent), nil
}

func (h *EmployeeHandler) getEmail(ctx context.Context, actor *employee.Employee, req apigw.Request) (any, error) {
	found, err := h.mailbox.GetEmail(ctx, actor, req.Param("id"))
	if err != nil {
		return nil, err
	}
	return toEmailResponse(found), nil
}

func (h *EmployeeHandler) markRead(ctx context.Context, actor *employee.Employee, req apigw.Request) (any, error) {
	var body markReadRequest
	if err := req.DecodeJSON(&body); err != nil {
		return nil, err
	}
	if err := validateRequest(body); err != nil {
		return nil, err
	}

	updated, err := h.mailbox.MarkRead(ctx, actor, req.Param("id"), *body.Read)
	if err != nil {
		return nil, err
	}
	return toEmailResponse(updated), nil
}

func (h *EmployeeHandler) trashEmail(ctx context.Context, actor *employee.Employee, req apigw.Request) (any, error) {
	trashed, err := h.mailbox.TrashEmail(ctx, actor, req.Param("id"))
	if err != nil {
		return nil, err
	}
	return toEmailResponse(trashed), nil
}
