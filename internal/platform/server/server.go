// Package server はローカル開発用に API Gateway のプロキシ統合を HTTP で再現します。
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gorilla/mux"

	"github.com/ogurasousui/philocom-backoffice/internal/adapters/apigw"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Server は HTTP サーバーのライフサイクルを管理します。
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New は router のルートを mux に登録したサーバーを構築します。
// claims が空でなければ、すべてのリクエストに Cognito オーソライザのクレームとして付与します。
func New(listenAddr string, router *apigw.Router, claims map[string]any, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              listenAddr,
			Handler:           Handler(router, claims, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler は Router を http.Handler として公開します。
func Handler(router *apigw.Router, claims map[string]any, logger *slog.Logger) http.Handler {
	m := mux.NewRouter()
	for _, route := range router.Routes() {
		m.Handle(route.Resource, proxy(router, route.Resource, claims, logger)).Methods(route.Method, http.MethodOptions)
	}
	fallback := proxy(router, "/{proxy+}", claims, logger)
	m.NotFoundHandler = fallback
	m.MethodNotAllowedHandler = fallback
	return m
}

func proxy(router *apigw.Router, resource string, claims map[string]any, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		evt, err := toEvent(r, resource, claims)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp, err := router.ServeEvent(r.Context(), evt)
		if err != nil {
			logger.ErrorContext(r.Context(), "serve event failed", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		for k, values := range resp.MultiValueHeaders {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, resp.Body)

		logger.DebugContext(r.Context(), "request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", resp.StatusCode),
		)
	})
}

func toEvent(r *http.Request, resource string, claims map[string]any) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return events.APIGatewayProxyRequest{}, fmt.Errorf("read body: %w", err)
	}

	evt := events.APIGatewayProxyRequest{
		Resource:                        resource,
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         make(map[string]string, len(r.Header)),
		MultiValueHeaders:               make(map[string][]string, len(r.Header)),
		QueryStringParameters:           make(map[string]string),
		MultiValueQueryStringParameters: make(map[string][]string),
		PathParameters:                  mux.Vars(r),
		Body:                            string(body),
	}
	for k, values := range r.Header {
		evt.Headers[k] = values[0]
		evt.MultiValueHeaders[k] = values
	}
	for k, values := range r.URL.Query() {
		evt.QueryStringParameters[k] = values[0]
		evt.MultiValueQueryStringParameters[k] = values
	}
	if len(claims) > 0 {
		evt.RequestContext.Authorizer = map[string]any{"claims": claims}
	}
	return evt, nil
}

// Run はサーバーを起動し、コンテキストがキャンセルされると Shutdown します。
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
