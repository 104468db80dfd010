package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/ogurasousui/philocom-backoffice/internal/adapters/apigw"
	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type event struct {
	method  string
	path    string
	params  map[string]string
	query   map[string]string
	body    string
	claims  map[string]any
	headers map[string]string
}

func (e event) proxy() events.APIGatewayProxyRequest {
	evt := events.APIGatewayProxyRequest{
		HTTPMethod:            e.method,
		Resource:              "/{proxy+}",
		Path:                  e.path,
		PathParameters:        e.params,
		QueryStringParameters: e.query,
		Body:                  e.body,
		Headers:               e.headers,
	}
	if e.claims != nil {
		evt.RequestContext.Authorizer = map[string]any{"claims": e.claims}
	}
	return evt
}

type response struct {
	status int
	body   map[string]any
}

func serve(t *testing.T, r *apigw.Router, e event) response {
	t.Helper()

	resp, err := r.ServeEvent(context.Background(), e.proxy())
	if err != nil {
		t.Fatalf("ServeEvent returned error: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", resp.Body, err)
	}
	return response{status: resp.StatusCode, body: body}
}

func (r response) data() map[string]any {
	data, _ := r.body["data"].(map[string]any)
	return data
}

func (r response) errors() []string {
	raw, _ := r.body["errors"].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(string))
	}
	return out
}

func employeeClaims(sub, email string) map[string]any {
	return map[string]any{
		"sub":                   sub,
		"cognito:groups":        "employees",
		"custom:assigned_email": email,
	}
}

var adminClaims = map[string]any{"sub": "admin-sub", "email": "boss@philocom.co", "cognito:groups": []any{"admins", "employees"}}

var testTime = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

type fakeFinder struct {
	employees []*employee.Employee
	err       error
}

func (f *fakeFinder) FindByCognitoUserID(_ context.Context, sub string) (*employee.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.employees {
		if e.CognitoUserID == sub {
			return e, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

func (f *fakeFinder) FindByEmail(_ context.Context, email string) (*employee.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.employees {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}
