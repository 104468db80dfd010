package handler

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/ogurasousui/philocom-backoffice/internal/adapters/apigw"
	"github.com/ogurasousui/philocom-backoffice/internal/core/access"
	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
	"github.com/ogurasousui/philocom-backoffice/internal/core/mailbox"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
)

var (
	jane = &employee.Employee{ID: "emp-jane", Name: "Jane", Email: "jane@philocom.co", Status: employee.StatusActive, CognitoUserID: "sub-jane", CreatedAt: testTime, UpdatedAt: testTime}
	ken  = &employee.Employee{ID: "emp-ken", Name: "Ken", Email: "ken@philocom.co", Status: employee.StatusActive, CognitoUserID: "sub-ken", CreatedAt: testTime, UpdatedAt: testTime}
	sam  = &employee.Employee{ID: "emp-sam", Name: "Sam", Email: "sam@philocom.co", Status: employee.StatusSuspended, CognitoUserID: "sub-sam", CreatedAt: testTime, UpdatedAt: testTime}
	ivy  = &employee.Employee{ID: "emp-ivy", Name: "Ivy", Email: "ivy@philocom.co", Status: employee.StatusInactive, CognitoUserID: "sub-ivy", CreatedAt: testTime, UpdatedAt: testTime}
)

type employeeFixture struct {
	router    *apigw.Router
	employees *stubEmployeeUseCase
	emails    *memEmails
}

func newEmployeeFixture(opts access.Options, finder *fakeFinder, seed ...*mailbox.Email) employeeFixture {
	if finder == nil {
		finder = &fakeFinder{employees: []*employee.Employee{jane, ken, sam, ivy}}
	}
	employees := &stubEmployeeUseCase{
		profileFn: func(in employee.UpdateProfileInput) (*employee.Employee, error) {
			if in.Name == nil && in.Department == nil {
				return nil, record.NewValidationError("no valid fields to update (allowed: name, department)")
			}
			updated := *jane
			updated.Name = *in.Name
			return &updated, nil
		},
	}
	emails := newMemEmails(seed...)
	mail := mailbox.NewService(emails, finder, nil, nil)

	router := apigw.NewRouter(apigw.NewCORS(nil, "", ""), testLogger)
	resolver := access.NewResolver(access.NewAuthorizer(opts), finder)
	NewEmployeeHandler(resolver, employees, mail, testLogger).Register(router)

	return employeeFixture{router: router, employees: employees, emails: emails}
}

func TestEmployeeHandler_GetProfile(t *testing.T) {
	t.Parallel()

	f := newEmployeeFixture(access.Options{}, nil)
	resp := serve(t, f.router, event{method: http.MethodGet, path: "/employee/me", claims: employeeClaims("sub-jane", "jane@philocom.co")})

	if resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.status, resp.body)
	}
	data := resp.data()
	if data["id"] != "emp-jane" || data["provisioned"] != true || data["source"] != "claims" {
		t.Fatalf("unexpected profile: %v", data)
	}
}

func TestEmployeeHandler_GetProfile_SynthesizedForUnknownIdentity(t *testing.T) {
	t.Parallel()

	f := newEmployeeFixture(access.Options{}, nil)
	resp := serve(t, f.router, event{method: http.MethodGet, path: "/employee/me", claims: employeeClaims("sub-new", "new@philocom.co")})

	if resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.status)
	}
	data := resp.data()
	if data["provisioned"] != false || data["name"] != access.DefaultEmployeeName || data["email"] != "new@philocom.co" {
		t.Fatalf("unexpected synthesized profile: %v", data)
	}
}

func TestEmployeeHandler_NoAuthorization(t *testing.T) {
	t.Parallel()

	f := newEmployeeFixture(access.Options{}, nil)
	resp := serve(t, f.router, event{method: http.MethodGet, path: "/employee/me"})

	if resp.status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.status)
	}
	if msg, _ := resp.body["error"].(string); !strings.Contains(msg, "no authorization found") {
		t.Fatalf("unexpected error message: %v", resp.body)
	}
}

func TestEmployeeHandler_HeaderIdentityRequiresOptIn(t *testing.T) {
	t.Parallel()

	headers := map[string]string{"x-employee-email": "Jane@Philocom.co"}

	disabled := newEmployeeFixture(access.Options{}, nil)
	if resp := serve(t, disabled.router, event{method: http.MethodGet, path: "/employee/me", headers: headers}); resp.status != http.StatusForbidden {
		t.Fatalf("expected header identity to be ignored, got %d", resp.status)
	}

	enabled := newEmployeeFixture(access.Options{AllowHeaderIdentity: true}, nil)
	resp := serve(t, enabled.router, event{method: http.MethodGet, path: "/employee/me", headers: headers})
	if resp.status != http.StatusOK || resp.data()["id"] != "emp-jane" || resp.data()["source"] != "header" {
		t.Fatalf("expected header identity to resolve jane, got %d %v", resp.status, resp.body)
	}
}

func TestEmployeeHandler_MutatingRoutesRequireActiveEmployee(t *testing.T) {
	t.Parallel()

	seed := &mailbox.Email{ID: "m-1", OwnerEmail: "sam@philocom.co", Folder: mailbox.FolderInbox, To: []string{"sam@philocom.co"}}

	routes := []event{
		{method: http.MethodPut, path: "/employee/me", body: `{"name":"New"}`},
		{method: http.MethodPost, path: "/employee/emails", body: `{"to":["ken@philocom.co"],"subject":"Hi"}`},
		{method: http.MethodPut, path: "/employee/emails/m-1/read", body: `{"read":true}`},
		{method: http.MethodDelete, path: "/employee/emails/m-1"},
	}
	principals := map[string]map[string]any{
		"synthesized": employeeClaims("sub-ghost", "ghost@philocom.co"),
		"suspended":   employeeClaims("sub-sam", "sam@philocom.co"),
		"inactive":    employeeClaims("sub-ivy", "ivy@philocom.co"),
	}

	for name, claims := range principals {
		for _, route := range routes {
			f := newEmployeeFixture(access.Options{}, nil, seed)
			route.claims = claims

			resp := serve(t, f.router, route)
			if resp.status != http.StatusForbidden {
				t.Errorf("%s %s %s: expected 403, got %d", name, route.method, route.path, resp.status)
			}
			if len(f.employees.calls) != 0 {
				t.Errorf("%s %s %s: use case must not be called, got %v", name, route.method, route.path, f.employees.calls)
			}
			if len(f.emails.emails) != 1 || f.emails.emails["m-1"].Read || f.emails.emails["m-1"].Folder != mailbox.FolderInbox {
				t.Errorf("%s %s %s: mailbox was modified", name, route.method, route.path)
			}
		}
	}
}

func TestEmployeeHandler_UpdateProfile(t *testing.T) {
	t.Parallel()

	f := newEmployeeFixture(access.Options{}, nil)
	resp := serve(t, f.router, event{method: http.MethodPut, path: "/employee/me", body: `{"name":"Jane D."}`, claims: employeeClaims("sub-jane", "jane@philocom.co")})

	if resp.status != http.StatusOK || resp.data()["name"] != "Jane D." {
		t.Fatalf("unexpected response: %d %v", resp.status, resp.body)
	}
}

func TestEmployeeHandler_UpdateProfile_NoRecognizedFields(t *testing.T) {
	t.Parallel()

	f := newEmployeeFixture(access.Options{}, nil)
	resp := serve(t, f.router, event{method: http.MethodPut, path: "/employee/me", body: `{"status":"active","email":"x@philocom.co"}`, claims: employeeClaims("sub-jane", "jane@philocom.co")})

	if resp.status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.status)
	}
	if errs := resp.errors(); len(errs) != 1 || !strings.Contains(errs[0], "no valid fields") {
		t.Fatalf("unexpected errors: %v", resp.body)
	}
}

func TestEmployeeHandler_UpdateProfile_MalformedJSON(t *testing.T) {
	t.Parallel()

	f := newEmployeeFixture(access.Options{}, nil)
	resp := serve(t, f.router, event{method: http.MethodPut, path: "/employee/me", body: `{"name":`, claims: employeeClaims("sub-jane", "jane@philocom.co")})

	if resp.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.status)
	}
}

func TestEmployeeHandler_StoreFailureIsServerError(t *testing.T) {
	t.Parallel()

	f := newEmployeeFixture(access.Options{}, &fakeFinder{err: errors.New("dynamodb: request timeout")})
	resp := serve(t, f.router, event{method: http.MethodGet, path: "/employee/me", claims: employeeClaims("sub-jane", "jane@philocom.co")})

	if resp.status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.status)
	}
	if details, _ := resp.body["details"].(string); !strings.Contains(details, "request timeout") {
		t.Fatalf("expected store failure in details, got %v", resp.body)
	}
}

func TestEmployeeHandler_MailboxOwnership(t *testing.T) {
	t.Parallel()

	kensMail := &mailbox.Email{ID: "m-ken", OwnerEmail: "ken@philocom.co", Folder: mailbox.FolderInbox, Subject: "private", To: []string{"ken@philocom.co"}}
	f := newEmployeeFixture(access.Options{}, nil, kensMail)

	janeClaims := employeeClaims("sub-jane", "jane@philocom.co")
	for _, e := range []event{
		{method: http.MethodGet, path: "/employee/emails/m-ken"},
		{method: http.MethodPut, path: "/employee/emails/m-ken/read", body: `{"read":true}`},
		{method: http.MethodDelete, path: "/employee/emails/m-ken"},
		{method: http.MethodGet, path: "/employee/emails/m-missing"},
		{method: http.MethodPut, path: "/employee/emails/m-missing/read", body: `{"read":true}`},
		{method: http.MethodDelete, path: "/employee/emails/m-missing"},
	} {
		e.claims = janeClaims
		if resp := serve(t, f.router, e); resp.status != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403, got %d", e.method, e.path, resp.status)
		}
	}

	resp := serve(t, f.router, event{method: http.MethodGet, path: "/employee/emails/m-ken", claims: employeeClaims("sub-ken", "ken@philocom.co")})
	if resp.status != http.StatusOK || resp.data()["subject"] != "private" {
		t.Fatalf("expected owner to read the email, got %d %v", resp.status, resp.body)
	}
}

func TestEmployeeHandler_SendEmail(t *testing.T) {
	t.Parallel()

	f := newEmployeeFixture(access.Options{}, nil)
	resp := serve(t, f.router, event{
		method: http.MethodPost,
		path:   "/employee/emails",
		body:   `{"to":["Ken@philocom.co","client@example.com"],"subject":"Estimate","bodyHtml":"<p>hi</p>"}`,
		claims: employeeClaims("sub-jane", "jane@philocom.co"),
	})
	if resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", resp.status, resp.body)
	}
	if resp.data()["folder"] != "sent" || resp.data()["from"] != "jane@philocom.co" {
		t.Fatalf("unexpected sent copy: %v", resp.data())
	}

	inbox := serve(t, f.router, event{method: http.MethodGet, path: "/employee/emails", query: map[string]string{"folder": "inbox"}, claims: employeeClaims("sub-ken", "ken@philocom.co")})
	items, _ := inbox.data()["items"].([]any)
	if inbox.status != http.StatusOK || len(items) != 1 {
		t.Fatalf("expected one inbox copy for ken, got %d %v", inbox.status, inbox.body)
	}
}

func TestEmployeeHandler_SendEmail_Validation(t *testing.T) {
	t.Parallel()

	f := newEmployeeFixture(access.Options{}, nil)
	resp := serve(t, f.router, event{
		method: http.MethodPost,
		path:   "/employee/emails",
		body:   `{"to":["not-an-email"]}`,
		claims: employeeClaims("sub-jane", "jane@philocom.co"),
	})
	if resp.status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.status)
	}
	if errs := resp.errors(); len(errs) != 1 || errs[0] != "to[0] must be a valid email address" {
		t.Fatalf("unexpected errors: %v", errs)
	}
}
