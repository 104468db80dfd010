package apigw

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/ogurasousui/philocom-backoffice/internal/core/access"
)

// Request はルーティング済みの API Gateway イベントです。
type Request struct {
	Event  events.APIGatewayProxyRequest
	Params map[string]string
}

// Param はパステンプレートの値を返します。
func (r Request) Param(name string) string {
	return r.Params[name]
}

// Query はクエリ文字列の値を前後の空白を除いて返します。
func (r Request) Query(name string) string {
	return strings.TrimSpace(r.Event.QueryStringParameters[name])
}

// Header は大文字小文字を区別せずにヘッダ値を返します。
func (r Request) Header(name string) string {
	return headerValue(r.Event, name)
}

// Access は認可判定用の入力を返します。
func (r Request) Access() access.Request {
	return AccessRequest(r.Event)
}

// DecodeJSON はボディを dst にデコードします。未知のフィールドは無視し、不正な JSON は 400 になります。
func (r Request) DecodeJSON(dst any) error {
	body := r.Event.Body
	if r.Event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return NewError(http.StatusBadRequest, "Invalid request body", err)
		}
		body = string(decoded)
	}
	if strings.TrimSpace(body) == "" {
		return NewError(http.StatusBadRequest, "Request body is required", nil)
	}

	if err := json.NewDecoder(bytes.NewBufferString(body)).Decode(dst); err != nil {
		return NewError(http.StatusBadRequest, "Invalid JSON body", err)
	}
	return nil
}

// AccessRequest はイベントからオーソライザのクレームとヘッダを取り出します。
// クレームは Cognito オーソライザの authorizer.claims、なければ authorizer 直下から読みます。
func AccessRequest(evt events.APIGatewayProxyRequest) access.Request {
	headers := make(map[string]string, len(evt.Headers)+len(evt.MultiValueHeaders))
	for name, values := range evt.MultiValueHeaders {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}
	for name, value := range evt.Headers {
		headers[name] = value
	}

	return access.Request{Claims: claimsOf(evt.RequestContext.Authorizer), Headers: headers}
}

func claimsOf(authorizer map[string]any) map[string]any {
	if len(authorizer) == 0 {
		return nil
	}
	if claims, ok := authorizer["claims"].(map[string]any); ok {
		return claims
	}
	if _, ok := authorizer[access.ClaimSubject]; ok {
		return authorizer
	}
	return nil
}

func headerValue(evt events.APIGatewayProxyRequest, name string) string {
	for key, value := range evt.Headers {
		if strings.EqualFold(key, name) {
			return strings.TrimSpace(value)
		}
	}
	for key, values := range evt.MultiValueHeaders {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
	}
	return ""
}
