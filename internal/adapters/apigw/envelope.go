package apigw

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// TimestampLayout は envelope の timestamp 形式です。UTC のミリ秒付き ISO-8601 です。
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ValidationFailedMessage は 422 応答の error に入る固定文言です。
const ValidationFailedMessage = "Validation failed"

type successBody struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

type errorBody struct {
	Success   bool    `json:"success"`
	Error     string  `json:"error"`
	Details   *string `json:"details"`
	Timestamp string  `json:"timestamp"`
}

type validationBody struct {
	Success   bool     `json:"success"`
	Error     string   `json:"error"`
	Errors    []string `json:"errors"`
	Timestamp string   `json:"timestamp"`
}

func timestamp(now time.Time) string {
	return now.UTC().Format(TimestampLayout)
}

func success(now time.Time, data any) (int, any) {
	return http.StatusOK, successBody{Success: true, Data: data, Timestamp: timestamp(now)}
}

func failure(now time.Time, p problem) (int, any) {
	if len(p.errors) > 0 {
		return p.status, validationBody{Error: ValidationFailedMessage, Errors: p.errors, Timestamp: timestamp(now)}
	}
	body := errorBody{Error: p.message, Timestamp: timestamp(now)}
	if p.details != "" {
		details := p.details
		body.Details = &details
	}
	return p.status, body
}

func respond(status int, body any, headers map[string]string) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{StatusCode: status, Headers: headers}
	if body == nil {
		return resp
	}

	payload, err := json.Marshal(body)
	if err != nil {
		resp.StatusCode = http.StatusInternalServerError
		payload = []byte(`{"success":false,"error":"Internal server error","details":"response encoding failed"}`)
	}
	resp.Headers["Content-Type"] = "application/json"
	resp.Body = string(payload)
	return resp
}
