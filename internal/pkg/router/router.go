package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gopatient/internal/pkg/config"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"github.com/shandysiswandi/gopatient/internal/pkg/uid"
	"github.com/shandysiswandi/gopatient/internal/pkg/validator"
)

type errorResponse struct {
	Message string            `json:"message" example:"example string message"`
	Error   map[string]string `json:"error,omitempty"`
	Details []errorDetail     `json:"details,omitempty"`
}

type errorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type successResponse struct {
	Message string         `json:"message" example:"example string message"`
	Data    any            `json:"data" swaggertype:"object"`
	Meta    map[string]any `json:"meta,omitempty" swaggertype:"object"`
}

// Handler is the application-style handler used by this router.
//
// It returns a response payload (that will be JSON encoded) or an error. A
// payload implementing result.Resulter is mapped to the status code of its
// outcome.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	// Config provides runtime configuration values.
	Config config.Config
	// UUID generates request correlation IDs.
	UUID uid.StringID
	// Instrument provides tracing and metrics helpers.
	Instrument instrument.Instrumentation
}

// Router is an http.Handler that wraps httprouter and a middleware chain.
type Router struct {
	hr         *httprouter.Router
	errorCodec func(ctx context.Context, w http.ResponseWriter, err error)
	encoder    func(ctx context.Context, w http.ResponseWriter, resp any)
	mws        []Middleware
}

// NewRouter builds the default application router with standard middleware.
func NewRouter(cfg Config) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, errorResponse{Message: "endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	hr.GET("/", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, map[string]string{"message": "Welcome to API GoPatient"}, http.StatusOK)
	})

	if cfg.Instrument == nil {
		cfg.Instrument = instrument.NewNoop()
	}

	return &Router{
		hr:         hr,
		errorCodec: encodeError,
		encoder:    encodeSuccess,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareIP,
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, cfg.Instrument),
			middlewareMaintenance(cfg.Config),
		},
	}
}

// GET registers a GET endpoint using the application Handler signature.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// GETRaw registers a GET endpoint that writes directly to the response writer.
func (r *Router) GETRaw(path string, h http.Handler, mws ...Middleware) {
	r.hr.Handler(http.MethodGet, path, Chain(h, append(r.mws, mws...)...))
}

// POST registers a POST endpoint using the application Handler signature.
func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

// PUT registers a PUT endpoint using the application Handler signature.
func (r *Router) PUT(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPut, path, h, mws...)
}

// DELETE registers a DELETE endpoint using the application Handler signature.
func (r *Router) DELETE(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodDelete, path, h, mws...)
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	r.hr.Handler(method, path, Chain(http.HandlerFunc(func(w http.ResponseWriter, re *http.Request) {
		resp, err := h(&Request{Request: re})
		if err != nil {
			if setter, ok := w.(interface{ SetError(error) }); ok {
				setter.SetError(err)
			}
			r.errorCodec(re.Context(), w, err)
			return
		}
		r.encoder(re.Context(), w, resp)
	}), append(r.mws, mws...)...))
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func encodeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		err = goerror.NewContext(err)
	}

	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unhandled error reached the router", "error", err)
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	errResp := errorResponse{Message: gerr.Msg()}

	var errValidate validator.V10ValidationError
	if errors.As(err, &errValidate) {
		errResp.Error = errValidate.Values()
	} else if len(gerr.Fields()) > 0 {
		errResp.Error = gerr.Fields()
	}

	writeJSON(w, errResp, gerr.StatusCode())
}

func encodeSuccess(ctx context.Context, w http.ResponseWriter, resp any) {
	if res, ok := resp.(result.Resulter); ok {
		encodeResult(w, res)
		return
	}

	code := http.StatusOK
	if sc, ok := resp.(interface {
		StatusCode() int
	}); ok {
		code = sc.StatusCode()
	}

	if code == http.StatusNoContent || resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, successResponse{
		Message: messageOf(resp, "request has been successfully"),
		Data:    resp,
		Meta:    metaOf(resp),
	}, code)
}

func encodeResult(w http.ResponseWriter, res result.Resulter) {
	code := StatusCode(res.Status())

	switch res.Status() {
	case result.StatusOk, result.StatusCreated:
		payload := res.Payload()
		writeJSON(w, successResponse{
			Message: messageOf(payload, "request has been successfully"),
			Data:    payload,
			Meta:    metaOf(payload),
		}, code)

	case result.StatusInvalid:
		findings := res.ValidationErrors()
		errResp := errorResponse{
			Message: "Validation error",
			Error:   make(map[string]string, len(findings)),
			Details: make([]errorDetail, 0, len(findings)),
		}
		for _, f := range findings {
			field := f.Identifier
			if field == "" {
				field = "request"
			}
			if _, exists := errResp.Error[field]; !exists {
				errResp.Error[field] = f.ErrorMessage
			}
			errResp.Details = append(errResp.Details, errorDetail{Field: field, Message: f.ErrorMessage, Code: f.ErrorCode})
		}
		writeJSON(w, errResp, code)

	default:
		msg := strings.Join(res.Errors(), "; ")
		if msg == "" {
			msg = defaultMessage(res.Status())
		}
		writeJSON(w, errorResponse{Message: msg}, code)
	}
}

// StatusCode maps a result status to its HTTP status code.
func StatusCode(s result.Status) int {
	switch s {
	case result.StatusOk:
		return http.StatusOK
	case result.StatusCreated:
		return http.StatusCreated
	case result.StatusInvalid:
		return http.StatusBadRequest
	case result.StatusNotFound:
		return http.StatusNotFound
	case result.StatusConflict:
		return http.StatusConflict
	case result.StatusForbidden:
		return http.StatusForbidden
	case result.StatusUnauthorized:
		return http.StatusUnauthorized
	case result.StatusUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func defaultMessage(s result.Status) string {
	switch s {
	case result.StatusNotFound:
		return "Resource not found"
	case result.StatusConflict:
		return "Resource conflict"
	case result.StatusForbidden:
		return "Forbidden"
	case result.StatusUnauthorized:
		return "Authentication required"
	case result.StatusUnavailable:
		return "Service unavailable"
	default:
		return "Internal server error"
	}
}

func messageOf(resp any, fallback string) string {
	if m, ok := resp.(interface {
		Message() string
	}); ok {
		return m.Message()
	}
	return fallback
}

func metaOf(resp any) map[string]any {
	if m, ok := resp.(interface {
		Meta() map[string]any
	}); ok {
		return m.Meta()
	}
	return nil
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: failed to encode data to json", "error", err)
	}
}
