package apigw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/ogurasousui/philocom-backoffice/internal/core/access"
	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
)

var fixedNow = time.Date(2026, 10, 1, 12, 30, 45, 123_000_000, time.FixedZone("JST", 9*60*60))

func newTestRouter(logs io.Writer) *Router {
	if logs == nil {
		logs = io.Discard
	}
	r := NewRouter(NewCORS([]string{"https://admin.philocom.co"}, "https://philocom.co", ""), slog.New(slog.NewJSONHandler(logs, nil)))
	r.now = func() time.Time { return fixedNow }
	return r
}

func decodeBody(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", resp.Body, err)
	}
	return body
}

func TestRouter_SuccessEnvelope(t *testing.T) {
	t.Parallel()

	r := newTestRouter(nil)
	r.Handle(http.MethodGet, "/admin/employees/{id}", func(_ context.Context, req Request) (any, error) {
		return map[string]string{"id": req.Param("id")}, nil
	})

	resp, err := r.ServeEvent(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		Resource:       "/admin/employees/{id}",
		Path:           "/admin/employees/emp-1",
		PathParameters: map[string]string{"id": "emp-1"},
	})
	if err != nil {
		t.Fatalf("ServeEvent returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["success"] != true || body["timestamp"] != "2026-10-01T03:30:45.123Z" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if data := body["data"].(map[string]any); data["id"] != "emp-1" {
		t.Fatalf("unexpected data: %v", data)
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Fatalf("missing content type: %v", resp.Headers)
	}
}

func TestRouter_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantDetail bool
	}{
		{name: "access denied", err: access.ErrNoAuthorization, wantStatus: http.StatusForbidden, wantError: access.ErrNoAuthorization.Error()},
		{name: "inactive", err: access.ErrEmployeeNotActive, wantStatus: http.StatusForbidden, wantError: access.ErrEmployeeNotActive.Error()},
		{name: "not found", err: employee.ErrEmployeeNotFound, wantStatus: http.StatusNotFound, wantError: "employee: not found"},
		{name: "conflict", err: employee.ErrEmailAlreadyExists, wantStatus: http.StatusBadRequest, wantError: "employee: email already exists"},
		{name: "store unavailable", err: &access.StoreError{Op: "find by email", Err: errors.New("timeout")}, wantStatus: http.StatusInternalServerError, wantError: "Employee lookup failed", wantDetail: true},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantError: "Internal server error", wantDetail: true},
		{name: "explicit", err: NewError(http.StatusBadRequest, "Invalid JSON body", nil), wantStatus: http.StatusBadRequest, wantError: "Invalid JSON body"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestRouter(nil)
			r.Handle(http.MethodPost, "/x", func(context.Context, Request) (any, error) { return nil, tt.err })

			resp, _ := r.ServeEvent(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Resource: "/x", Path: "/x"})
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}

			body := decodeBody(t, resp)
			if body["success"] != false || body["error"] != tt.wantError {
				t.Fatalf("unexpected envelope: %v", body)
			}
			if _, present := body["details"]; !present {
				t.Fatalf("details key must always be present: %v", body)
			}
			if tt.wantDetail && body["details"] == nil {
				t.Fatalf("expected details: %v", body)
			}
			if !tt.wantDetail && body["details"] != nil {
				t.Fatalf("expected null details: %v", body)
			}
		})
	}
}

func TestRouter_ValidationEnvelope(t *testing.T) {
	t.Parallel()

	r := newTestRouter(nil)
	r.Handle(http.MethodPut, "/x", func(context.Context, Request) (any, error) {
		return nil, record.NewValidationError("no valid fields to update")
	})

	resp, _ := r.ServeEvent(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodPut, Resource: "/x", Path: "/x"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	errs, _ := body["errors"].([]any)
	if body["error"] != ValidationFailedMessage || len(errs) != 1 || errs[0] != "no valid fields to update" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestRouter_LogsServerErrors(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := newTestRouter(&logs)
	r.Handle(http.MethodGet, "/x", func(context.Context, Request) (any, error) {
		return nil, &access.StoreError{Op: "find by cognito user id", Err: errors.New("connection reset")}
	})

	_, _ = r.ServeEvent(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Resource: "/x", Path: "/x"})
	if !strings.Contains(logs.String(), "connection reset") {
		t.Fatalf("expected store failure to be logged, got %q", logs.String())
	}
}

func TestRouter_RecoversPanic(t *testing.T) {
	t.Parallel()

	r := newTestRouter(nil)
	r.Handle(http.MethodGet, "/x", func(context.Context, Request) (any, error) {
		panic("nil map")
	})

	resp, err := r.ServeEvent(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Resource: "/x", Path: "/x"})
	if err != nil {
		t.Fatalf("ServeEvent returned error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if resp.Headers["Access-Control-Allow-Origin"] == "" {
		t.Fatalf("expected CORS headers on panic response")
	}
}

func TestRouter_ProxyFallbackMatchesTemplates(t *testing.T) {
	t.Parallel()

	r := newTestRouter(nil)
	r.Handle(http.MethodGet, "/posts/{slug}", func(_ context.Context, req Request) (any, error) {
		return "slug:" + req.Param("slug"), nil
	})
	r.Handle(http.MethodGet, "/posts/featured", func(context.Context, Request) (any, error) {
		return "featured", nil
	})

	for path, want := range map[string]string{"/posts/hello-world": "slug:hello-world", "/posts/featured/": "featured"} {
		resp, _ := r.ServeEvent(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodGet,
			Resource:   "/{proxy+}",
			Path:       path,
		})
		if body := decodeBody(t, resp); body["data"] != want {
			t.Fatalf("%s: expected %q, got %v", path, want, body["data"])
		}
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()

	r := newTestRouter(nil)
	resp, _ := r.ServeEvent(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodDelete, Path: "/nope"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRouter_OptionsPreflight(t *testing.T) {
	t.Parallel()

	r := newTestRouter(nil)
	resp, _ := r.ServeEvent(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodOptions,
		Path:       "/anything",
		Headers:    map[string]string{"origin": "https://admin.philocom.co"},
	})
	if resp.StatusCode != http.StatusOK || resp.Body != "" {
		t.Fatalf("unexpected preflight response: %+v", resp)
	}
	if resp.Headers["Access-Control-Allow-Origin"] != "https://admin.philocom.co" {
		t.Fatalf("expected origin to be reflected, got %v", resp.Headers)
	}
	if !strings.Contains(resp.Headers["Access-Control-Allow-Headers"], "X-Employee-Email") {
		t.Fatalf("expected identity header to be allowed, got %s", resp.Headers["Access-Control-Allow-Headers"])
	}
}

func TestCORS_ReflectsAllowListedOriginsOnly(t *testing.T) {
	t.Parallel()

	cors := NewCORS([]string{"https://admin.philocom.co/", "https://panel.philocom.co"}, "https://philocom.co", "")

	tests := map[string]string{
		"https://admin.philocom.co": "https://admin.philocom.co",
		"https://panel.philocom.co": "https://panel.philocom.co",
		"https://evil.example":      "https://philocom.co",
		"":                          "https://philocom.co",
	}
	for origin, want := range tests {
		if got := cors.Origin(origin); got != want {
			t.Errorf("origin %q: expected %q, got %q", origin, want, got)
		}
	}

	if got := NewCORS(nil, "", "").Origin("https://x.example"); got != "*" {
		t.Errorf("expected wildcard without default origin, got %q", got)
	}
}

func TestCORS_CredentialsOnlyWithConcreteOrigin(t *testing.T) {
	t.Parallel()

	wildcard := NewCORS(nil, "", "").Headers("https://x.example")
	if wildcard["Access-Control-Allow-Origin"] != "*" {
		t.Fatalf("expected wildcard origin, got %v", wildcard)
	}
	if _, ok := wildcard["Access-Control-Allow-Credentials"]; ok {
		t.Fatalf("credentials must not be allowed with a wildcard origin: %v", wildcard)
	}

	concrete := NewCORS([]string{"https://admin.philocom.co"}, "", "").Headers("https://admin.philocom.co")
	if concrete["Access-Control-Allow-Credentials"] != "true" {
		t.Fatalf("expected credentials for an allow-listed origin, got %v", concrete)
	}
}

func TestAccessRequest_ReadsCognitoClaims(t *testing.T) {
	t.Parallel()

	evt := events.APIGatewayProxyRequest{
		Headers:           map[string]string{"X-Employee-Email": "jane@philocom.co"},
		MultiValueHeaders: map[string][]string{"Origin": {"https://philocom.co"}},
		RequestContext: events.APIGatewayProxyRequestContext{
			Authorizer: map[string]any{
				"claims": map[string]any{"sub": "sub-1", "cognito:groups": "employees"},
			},
		},
	}

	req := AccessRequest(evt)
	if req.Claim("sub") != "sub-1" {
		t.Fatalf("expected claims to be extracted, got %v", req.Claims)
	}
	if req.Header("x-employee-email") != "jane@philocom.co" || req.Header("origin") != "https://philocom.co" {
		t.Fatalf("unexpected headers: %v", req.Headers)
	}

	if claims := AccessRequest(events.APIGatewayProxyRequest{}).Claims; claims != nil {
		t.Fatalf("expected no claims, got %v", claims)
	}
}

func TestRequest_DecodeJSON(t *testing.T) {
	t.Parallel()

	var dst struct {
		Name string `json:"name"`
	}

	tests := []struct {
		body    string
		wantErr bool
	}{
		{body: `{"name":"Jane"}`},
		{body: ``, wantErr: true},
		{body: `{"name":`, wantErr: true},
		{body: `{"unknown":1}`},
	}
	for _, tt := range tests {
		err := Request{Event: events.APIGatewayProxyRequest{Body: tt.body}}.DecodeJSON(&dst)
		if (err != nil) != tt.wantErr {
			t.Fatalf("body %q: unexpected error state %v", tt.body, err)
		}
		var httpErr *Error
		if err != nil && (!errors.As(err, &httpErr) || httpErr.Status != http.StatusBadRequest) {
			t.Fatalf("body %q: expected 400 error, got %v", tt.body, err)
		}
	}
	if dst.Name != "Jane" {
		t.Fatalf("expected decoded name, got %q", dst.Name)
	}
}
