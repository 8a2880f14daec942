package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	usvchttp "github.com/singhpravendra/user-service/internal/adapter/http"
	"github.com/singhpravendra/user-service/internal/adapter/memory"
	"github.com/singhpravendra/user-service/internal/middleware"
	"github.com/singhpravendra/user-service/internal/service"
)

// newRouter assembles the pipeline the way the composition root does.
func newRouter(readyChecks ...usvchttp.ReadinessCheck) http.Handler {
	svc := service.NewUserService(memory.New(), nil)
	handlers := &usvchttp.Handlers{Users: svc}
	health := &usvchttp.HealthHandlers{Service: "user-service", Checks: readyChecks}

	r := chi.NewRouter()
	r.Use(middleware.TraceID)
	r.Use(middleware.RequestLogger)
	r.Use(usvchttp.Recover)
	usvchttp.MountRoutes(r, handlers, health)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

type userBody struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	TraceID   string `json:"trace_id"`
}

type errBody struct {
	Error struct {
		Message string         `json:"message"`
		Type    string         `json:"type"`
		Details map[string]any `json:"details"`
		TraceID string         `json:"trace_id"`
	} `json:"error"`
}

func TestCreateUserScenario(t *testing.T) {
	router := newRouter()

	rec := doJSON(t, router, http.MethodPost, "/users", map[string]string{
		"name": "Jo", "email": "Jo@X.com",
	}, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	u := decode[userBody](t, rec)
	if u.ID == "" {
		t.Error("expected generated id")
	}
	if u.Email != "jo@x.com" {
		t.Errorf("expected lower-cased email, got %q", u.Email)
	}
	if u.CreatedAt == "" {
		t.Error("expected created_at set")
	}
	if u.TraceID == "" {
		t.Error("expected trace_id in body")
	}

	// Repeating the identical POST conflicts.
	rec = doJSON(t, router, http.MethodPost, "/users", map[string]string{
		"name": "Jo", "email": "jo@x.com",
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	e := decode[errBody](t, rec)
	if e.Error.Type != "ConflictError" {
		t.Errorf("expected ConflictError, got %q", e.Error.Type)
	}
}

func TestGetUnknownUserReturnsNotFound(t *testing.T) {
	router := newRouter()

	rec := doJSON(t, router, http.MethodGet, "/users/badid", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	e := decode[errBody](t, rec)
	if e.Error.Type != "NotFoundError" {
		t.Errorf("expected NotFoundError, got %q", e.Error.Type)
	}
	if e.Error.Message != "User with id 'badid' not found" {
		t.Errorf("unexpected message %q", e.Error.Message)
	}
	if e.Error.TraceID == "" {
		t.Error("expected trace_id in error body")
	}
}

func TestCreateUserValidation(t *testing.T) {
	router := newRouter()

	rec := doJSON(t, router, http.MethodPost, "/users", map[string]string{
		"name": "", "email": "not-an-email",
	}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	e := decode[errBody](t, rec)
	if e.Error.Type != "ValidationError" {
		t.Errorf("expected ValidationError, got %q", e.Error.Type)
	}
	raw, ok := e.Error.Details["errors"].([]any)
	if !ok || len(raw) != 2 {
		t.Fatalf("expected 2 field errors, got %v", e.Error.Details)
	}
	first, _ := raw[0].(map[string]any)
	if first["field"] != "name" || first["message"] == "" || first["type"] == "" {
		t.Errorf("unexpected field error shape: %v", first)
	}
}

func TestCreateUserMalformedJSON(t *testing.T) {
	router := newRouter()

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed body, got %d", rec.Code)
	}
}

func TestListUsersShapeAndOrder(t *testing.T) {
	router := newRouter()

	for i := range 3 {
		rec := doJSON(t, router, http.MethodPost, "/users", map[string]string{
			"name": "User", "email": fmt.Sprintf("u%d@x.com", i),
		}, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed create %d: %d", i, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/users", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var list struct {
		Users   []userBody `json:"users"`
		Total   int        `json:"total"`
		TraceID string     `json:"trace_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 3 || len(list.Users) != 3 {
		t.Fatalf("expected 3 users, got total=%d len=%d", list.Total, len(list.Users))
	}
	for i, u := range list.Users {
		if want := fmt.Sprintf("u%d@x.com", i); u.Email != want {
			t.Errorf("position %d: expected %s, got %s", i, want, u.Email)
		}
	}
	if list.TraceID == "" {
		t.Error("expected trace_id on list response")
	}
}

func TestListUsersEmptyIsArray(t *testing.T) {
	router := newRouter()

	rec := doJSON(t, router, http.MethodGet, "/users", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"users":[]`)) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestDeleteUser(t *testing.T) {
	router := newRouter()

	rec := doJSON(t, router, http.MethodPost, "/users", map[string]string{
		"name": "Jo", "email": "jo@x.com",
	}, nil)
	created := decode[userBody](t, rec)

	rec = doJSON(t, router, http.MethodDelete, "/users/"+created.ID, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/users/"+created.ID, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestTraceHeadersOnEveryResponse(t *testing.T) {
	router := newRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/missing"},
		{http.MethodGet, "/health"},
		{http.MethodGet, "/no-such-route"},
	}
	for _, p := range paths {
		rec := doJSON(t, router, p.method, p.path, nil, nil)
		if rec.Header().Get("x-trace-id") == "" {
			t.Errorf("%s %s: missing x-trace-id", p.method, p.path)
		}
		raw := rec.Header().Get("x-response-time-ms")
		if raw == "" {
			t.Errorf("%s %s: missing x-response-time-ms", p.method, p.path)
			continue
		}
		if ms, err := strconv.ParseFloat(raw, 64); err != nil || ms < 0 {
			t.Errorf("%s %s: bad x-response-time-ms %q", p.method, p.path, raw)
		}
	}
}

func TestInboundTraceIDEchoed(t *testing.T) {
	router := newRouter()

	rec := doJSON(t, router, http.MethodGet, "/users", nil, map[string]string{"x-trace-id": "abc"})
	if got := rec.Header().Get("x-trace-id"); got != "abc" {
		t.Errorf("expected header echo abc, got %q", got)
	}
	var list struct {
		TraceID string `json:"trace_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.TraceID != "abc" {
		t.Errorf("expected body trace id abc, got %q", list.TraceID)
	}
}

func TestConcurrentDuplicatePostOneSuccessOneConflict(t *testing.T) {
	router := newRouter()

	const attempts = 8
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rec := doJSON(t, router, http.MethodPost, "/users", map[string]string{
				"name": "Jo", "email": "jo@x.com",
			}, nil)
			codes[n] = rec.Code
		}(i)
	}
	wg.Wait()

	created, conflicted := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			t.Errorf("unexpected status %d", c)
		}
	}
	if created != 1 {
		t.Errorf("expected exactly 1 created, got %d", created)
	}
	if conflicted != attempts-1 {
		t.Errorf("expected %d conflicts, got %d", attempts-1, conflicted)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newRouter()

	for path, wantStatus := range map[string]string{
		"/health":       "healthy",
		"/health/live":  "alive",
		"/health/ready": "ready",
	} {
		rec := doJSON(t, router, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
			continue
		}
		var body struct {
			Status    string `json:"status"`
			Service   string `json:"service"`
			Timestamp string `json:"timestamp"`
			TraceID   string `json:"trace_id"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Status != wantStatus {
			t.Errorf("%s: expected status %q, got %q", path, wantStatus, body.Status)
		}
		if body.Service != "user-service" || body.Timestamp == "" || body.TraceID == "" {
			t.Errorf("%s: incomplete body %+v", path, body)
		}
	}
}

func TestReadinessFailureReturns503(t *testing.T) {
	router := newRouter(usvchttp.ReadinessCheck{
		Name:  "postgres",
		Check: func(context.Context) error { return errors.New("connection refused") },
	})

	rec := doJSON(t, router, http.MethodGet, "/health/ready", nil, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "not_ready" {
		t.Errorf("expected not_ready, got %q", body.Status)
	}
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	router := newRouter()

	rec := doJSON(t, router, http.MethodGet, "/nope", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	e := decode[errBody](t, rec)
	if e.Error.Type != "HTTPException" {
		t.Errorf("expected HTTPException type, got %q", e.Error.Type)
	}
}
