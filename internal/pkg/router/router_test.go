package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/gopatient/internal/pkg/config"
	"github.com/shandysiswandi/gopatient/internal/pkg/goerror"
	"github.com/shandysiswandi/gopatient/internal/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type patientView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	return NewRouter(Config{Config: cfg, UUID: fixedID("generated-cid")})
}

type envelope struct {
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
	Details []errorDetail     `json:"details"`
}

func serve(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestRouter_ResultMapping(t *testing.T) {
	tests := []struct {
		name       string
		res        any
		wantStatus int
		wantMsg    string
	}{
		{name: "ok", res: result.Success(patientView{ID: "1", Name: "Ada"}), wantStatus: http.StatusOK, wantMsg: "request has been successfully"},
		{name: "created", res: result.Created(patientView{ID: "2"}), wantStatus: http.StatusCreated, wantMsg: "request has been successfully"},
		{name: "not found", res: result.NotFound[patientView](), wantStatus: http.StatusNotFound, wantMsg: "Resource not found"},
		{name: "conflict", res: result.Conflict[patientView]("medical record number already registered"), wantStatus: http.StatusConflict, wantMsg: "medical record number already registered"},
		{name: "forbidden", res: result.Forbidden[patientView](), wantStatus: http.StatusForbidden, wantMsg: "Forbidden"},
		{name: "unauthorized", res: result.Unauthorized[patientView](), wantStatus: http.StatusUnauthorized, wantMsg: "Authentication required"},
		{name: "unavailable", res: result.Unavailable[patientView](), wantStatus: http.StatusServiceUnavailable, wantMsg: "Service unavailable"},
		{name: "error", res: result.Error[patientView]("boom"), wantStatus: http.StatusInternalServerError, wantMsg: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, "app:\n  name: test\n")
			r.GET("/api/v1/patients/:id", func(*Request) (any, error) { return tt.res, nil })

			rec, env := serve(t, r, http.MethodGet, "/api/v1/patients/1", "", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, env.Message)
		})
	}
}

func TestRouter_InvalidResultCarriesOrderedDetails(t *testing.T) {
	r := newTestRouter(t, "app:\n  name: test\n")
	r.GET("/api/v1/patients/:id", func(req *Request) (any, error) {
		assert.Equal(t, "abc", req.GetParam("id"))
		return result.Invalid[patientView](
			result.NewValidationError("id", "must not be empty"),
			result.NewValidationError("id", "must be a valid positive number"),
			result.NewValidationError("", "request rejected"),
		), nil
	})

	rec, env := serve(t, r, http.MethodGet, "/api/v1/patients/abc", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation error", env.Message)
	assert.Equal(t, map[string]string{"id": "must not be empty", "request": "request rejected"}, env.Error)
	require.Len(t, env.Details, 3)
	assert.Equal(t, "must be a valid positive number", env.Details[1].Message)
}

func TestRouter_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantFields map[string]string
	}{
		{name: "plain error hides detail", err: errors.New("pq: broken"), wantStatus: http.StatusInternalServerError},
		{name: "invalid format", err: goerror.NewInvalidFormat(), wantStatus: http.StatusBadRequest},
		{name: "fields", err: goerror.NewInvalidInput(nil, "format", "unsupported"), wantStatus: http.StatusUnprocessableEntity, wantFields: map[string]string{"format": "unsupported"}},
		{name: "deadline", err: context.DeadlineExceeded, wantStatus: http.StatusRequestTimeout},
		{name: "unavailable", err: goerror.NewUnavailable(errors.New("redis")), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, "app:\n  name: test\n")
			r.POST("/api/v1/patients", func(*Request) (any, error) { return nil, tt.err })

			rec, env := serve(t, r, http.MethodPost, "/api/v1/patients", `{}`, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantFields, env.Error)
			assert.NotContains(t, rec.Body.String(), "pq: broken")
		})
	}
}

func TestRouter_CorrelationID(t *testing.T) {
	r := newTestRouter(t, "app:\n  name: test\n")
	r.GET("/health", func(*Request) (any, error) { return map[string]string{"status": "ok"}, nil })

	rec, _ := serve(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "generated-cid", rec.Header().Get(HeaderCorrelationID))

	rec, _ = serve(t, r, http.MethodGet, "/health", "", map[string]string{HeaderRequestID: "from-proxy"})
	assert.Equal(t, "from-proxy", rec.Header().Get(HeaderCorrelationID))

	rec, _ = serve(t, r, http.MethodGet, "/health", "", map[string]string{HeaderCorrelationID: "bad id\tvalue"})
	assert.Equal(t, "generated-cid", rec.Header().Get(HeaderCorrelationID))
}

func TestRouter_Maintenance(t *testing.T) {
	r := newTestRouter(t, "app:\n  maintenance:\n    endpoints: /api/v1/patients/export\n")
	r.POST("/api/v1/patients/export", func(*Request) (any, error) { return result.Success("x"), nil })
	r.POST("/api/v1/patients", func(*Request) (any, error) { return result.Created("y"), nil })

	rec, env := serve(t, r, http.MethodPost, "/api/v1/patients/export", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "service is under maintenance", env.Message)

	rec, _ = serve(t, r, http.MethodPost, "/api/v1/patients", "", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_RecoversPanics(t *testing.T) {
	r := newTestRouter(t, "app:\n  name: test\n")
	r.GET("/boom", func(*Request) (any, error) { panic("kaboom") })

	rec, env := serve(t, r, http.MethodGet, "/boom", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", env.Message)
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, "app:\n  name: test\n")
	r.GET("/api/v1/patients", func(*Request) (any, error) { return result.Success(1), nil })

	rec, _ := serve(t, r, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = serve(t, r, http.MethodDelete, "/api/v1/patients", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequest_DecodeBody(t *testing.T) {
	type body struct {
		Format string `json:"format"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "valid", payload: `{"format":"csv"}`},
		{name: "unknown field", payload: `{"format":"csv","x":1}`, wantErr: true},
		{name: "trailing data", payload: `{"format":"csv"}{}`, wantErr: true},
		{name: "not json", payload: `format=csv`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))}

			var dst body
			err := req.DecodeBody(&dst)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "csv", dst.Format)
		})
	}
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", realIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	assert.Equal(t, "203.0.113.9", realIP(req))

	req.Header.Set("X-Real-IP", "not-an-ip")
	assert.Equal(t, "203.0.113.9", realIP(req))
}
