package apigw

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// HandlerFunc はルートごとのハンドラです。戻り値の data は success envelope に包まれます。
type HandlerFunc func(ctx context.Context, req Request) (any, error)

// Route はメソッドとリソーステンプレート（例: /admin/employees/{id}）の組です。
type Route struct {
	Method   string
	Resource string
}

func (r Route) key() string {
	return r.Method + " " + r.Resource
}

// Router は API Gateway のプロキシ統合イベントをハンドラに振り分けます。
type Router struct {
	routes map[string]HandlerFunc
	order  []Route
	cors   CORS
	logger *slog.Logger
	now    func() time.Time
}

// NewRouter は Router を生成します。logger が nil の場合は slog.Default を使います。
func NewRouter(cors CORS, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		routes: make(map[string]HandlerFunc),
		cors:   cors,
		logger: logger,
		now:    time.Now,
	}
}

// Handle はルートを登録します。同じルートの再登録は後勝ちです。
func (r *Router) Handle(method, resource string, h HandlerFunc) {
	route := Route{Method: strings.ToUpper(method), Resource: resource}
	if _, exists := r.routes[route.key()]; !exists {
		r.order = append(r.order, route)
	}
	r.routes[route.key()] = h
}

// Routes は登録済みのルートを登録順に返します。
func (r *Router) Routes() []Route {
	routes := make([]Route, len(r.order))
	copy(routes, r.order)
	return routes
}

// ServeEvent はイベントを処理します。エラーはすべて envelope に変換され、戻り値の error は常に nil です。
func (r *Router) ServeEvent(ctx context.Context, evt events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, _ error) {
	headers := r.cors.Headers(headerValue(evt, "Origin"))
	method := strings.ToUpper(evt.HTTPMethod)

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "handler panicked",
				slog.String("method", method),
				slog.String("path", evt.Path),
				slog.Any("panic", rec),
			)
			resp = r.fail(headers, fmt.Errorf("panic: %v", rec))
		}
	}()

	if method == http.MethodOptions {
		return respond(http.StatusOK, nil, headers), nil
	}

	h, params, ok := r.match(method, evt)
	if !ok {
		return r.fail(headers, NewError(http.StatusNotFound, "Route not found", fmt.Errorf("%s %s", method, evt.Path))), nil
	}

	data, err := h(ctx, Request{Event: evt, Params: params})
	if err != nil {
		p := toProblem(err)
		if p.status >= http.StatusInternalServerError {
			r.logger.ErrorContext(ctx, "request failed",
				slog.String("method", method),
				slog.String("path", evt.Path),
				slog.Int("status", p.status),
				slog.Any("error", err),
			)
		}
		status, body := failure(r.now(), p)
		return respond(status, body, headers), nil
	}

	status, body := success(r.now(), data)
	return respond(status, body, headers), nil
}

func (r *Router) fail(headers map[string]string, err error) events.APIGatewayProxyResponse {
	status, body := failure(r.now(), toProblem(err))
	return respond(status, body, headers)
}

// match はリソーステンプレートの完全一致を優先し、{proxy+} などの場合は実パスをテンプレートと照合します。
func (r *Router) match(method string, evt events.APIGatewayProxyRequest) (HandlerFunc, map[string]string, bool) {
	if h, ok := r.routes[Route{Method: method, Resource: evt.Resource}.key()]; ok && evt.Resource != "" {
		params := make(map[string]string, len(evt.PathParameters))
		for k, v := range evt.PathParameters {
			params[k] = v
		}
		return h, params, true
	}

	candidates := make([]Route, 0, len(r.order))
	for _, route := range r.order {
		if route.Method == method {
			candidates = append(candidates, route)
		}
	}
	// 静的セグメントの多いテンプレートを優先する
	sort.SliceStable(candidates, func(i, j int) bool {
		return staticSegments(candidates[i].Resource) > staticSegments(candidates[j].Resource)
	})

	for _, route := range candidates {
		if params, ok := matchTemplate(route.Resource, evt.Path); ok {
			return r.routes[route.key()], params, true
		}
	}
	return nil, nil, false
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func isParam(segment string) bool {
	return strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}

func staticSegments(template string) int {
	n := 0
	for _, s := range splitPath(template) {
		if !isParam(s) {
			n++
		}
	}
	return n
}

func matchTemplate(template, path string) (map[string]string, bool) {
	want := splitPath(template)
	got := splitPath(path)
	if len(want) != len(got) {
		return nil, false
	}

	params := make(map[string]string)
	for i, segment := range want {
		if isParam(segment) {
			if got[i] == "" {
				return nil, false
			}
			params[strings.Trim(segment, "{}")] = got[i]
			continue
		}
		if segment != got[i] {
			return nil, false
		}
	}
	return params, true
}
