package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/gateway"
	"github.com/shaiso/Shellboard/internal/repo"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDashboard() *domain.Dashboard {
	disk := domain.CommandConfig{
		Slug:    "disk",
		Command: "df -h $MOUNT",
		Inputs:  []domain.InputSpec{{Slug: "MOUNT"}},
	}
	ops := domain.CategoryConfig{Slug: "ops", Name: "Operations", Color: "green"}

	return &domain.Dashboard{
		Views: []domain.ViewConfig{
			{Name: "Disk", Slug: "disk", Command: &disk, Category: ops},
		},
		Categories: []domain.CategoryConfig{ops},
		Commands:   map[string]domain.CommandConfig{"disk": disk},
	}
}

type call struct {
	command string
	inputs  []domain.InputValue
}

func newServer(t *testing.T, gw gateway.Gateway, store VersionStore) *httptest.Server {
	t.Helper()

	h := NewHandler(Config{
		Dashboard: testDashboard(),
		Gateway:   gw,
		Versions:  store,
		Logger:    testLogger(),
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func recordingGateway(calls *[]call, result *domain.ExecutionResult, err error) gateway.Func {
	return func(_ context.Context, ref string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
		*calls = append(*calls, call{command: ref, inputs: inputs})
		return result, err
	}
}

func decodeData(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()

	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if err := json.Unmarshal(body.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func decodeError(t *testing.T, resp *http.Response) ErrorDetail {
	t.Helper()
	defer resp.Body.Close()

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return body.Error
}

// --- Execute Tests ---

func TestExecuteCommand_POST(t *testing.T) {
	var calls []call
	gw := recordingGateway(&calls, &domain.ExecutionResult{Stdout: "ok\n", ExitCode: 0}, nil)
	srv := newServer(t, gw, nil)

	body := `{"inputs":[{"name":"MOUNT","value":"/"}]}`
	resp, err := http.Post(srv.URL+"/api/v1/commands/disk/execute", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result ExecuteResponse
	decodeData(t, resp, &result)

	if result.Command != "disk" || result.Stdout != "ok\n" || result.ExitCode != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(calls) != 1 || calls[0].command != "disk" {
		t.Fatalf("calls = %+v", calls)
	}
	if len(calls[0].inputs) != 1 || calls[0].inputs[0] != (domain.InputValue{Name: "MOUNT", Value: "/"}) {
		t.Errorf("inputs = %+v", calls[0].inputs)
	}
}

func TestExecuteCommand_NonZeroExitIsResult(t *testing.T) {
	var calls []call
	gw := recordingGateway(&calls, &domain.ExecutionResult{Stderr: "boom", ExitCode: 2}, nil)
	srv := newServer(t, gw, nil)

	resp, err := http.Post(srv.URL+"/api/v1/commands/disk/execute", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result ExecuteResponse
	decodeData(t, resp, &result)
	if result.ExitCode != 2 || result.Stderr != "boom" {
		t.Errorf("result = %+v", result)
	}
}

func TestExecuteCommand_EmptyBody(t *testing.T) {
	var calls []call
	gw := recordingGateway(&calls, &domain.ExecutionResult{}, nil)
	srv := newServer(t, gw, nil)

	resp, err := http.Post(srv.URL+"/api/v1/commands/disk/execute", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if len(calls) != 1 {
		t.Errorf("expected 1 call, got %d", len(calls))
	}
}

func TestExecuteCommand_InvalidBody(t *testing.T) {
	var calls []call
	srv := newServer(t, recordingGateway(&calls, nil, nil), nil)

	resp, err := http.Post(srv.URL+"/api/v1/commands/disk/execute", "application/json", strings.NewReader(`{`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if detail := decodeError(t, resp); detail.Code != ErrCodeBadRequest {
		t.Errorf("code = %s", detail.Code)
	}
	if len(calls) != 0 {
		t.Error("gateway must not be called")
	}
}

func TestExecuteCommand_UnknownCommand(t *testing.T) {
	var calls []call
	srv := newServer(t, recordingGateway(&calls, nil, nil), nil)

	resp, err := http.Post(srv.URL+"/api/v1/commands/nope/execute", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if detail := decodeError(t, resp); detail.Code != ErrCodeNotFound {
		t.Errorf("code = %s", detail.Code)
	}
	if len(calls) != 0 {
		t.Error("gateway must not be called")
	}
}

func TestExecuteCommand_GatewayErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"unknown", fmt.Errorf("%w: disk", gateway.ErrUnknownCommand), http.StatusNotFound, ErrCodeNotFound},
		{"bad request", fmt.Errorf("%w: empty", gateway.ErrBadRequest), http.StatusBadRequest, ErrCodeBadRequest},
		{"timeout", fmt.Errorf("%w: 30s", gateway.ErrTimeout), http.StatusGatewayTimeout, ErrCodeTimeout},
		{"unavailable", fmt.Errorf("%w: no channel", gateway.ErrUnavailable), http.StatusServiceUnavailable, ErrCodeUnavailable},
		{"service", fmt.Errorf("%w: exec failed", gateway.ErrService), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []call
			srv := newServer(t, recordingGateway(&calls, nil, tt.err), nil)

			resp, err := http.Post(srv.URL+"/api/v1/commands/disk/execute", "application/json", nil)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if detail := decodeError(t, resp); detail.Code != tt.code {
				t.Errorf("code = %s, want %s", detail.Code, tt.code)
			}
		})
	}
}

func TestExecuteCommand_NoGateway(t *testing.T) {
	srv := newServer(t, nil, nil)

	resp, err := http.Post(srv.URL+"/api/v1/commands/disk/execute", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestExecuteCommandQuery_Inputs(t *testing.T) {
	var calls []call
	srv := newServer(t, recordingGateway(&calls, &domain.ExecutionResult{Stdout: "x"}, nil), nil)

	resp, err := http.Get(srv.URL + "/api/v1/commands/disk/execute?input_MOUNT=%2Fvar&input_B=2&other=1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var result ExecuteResponse
	decodeData(t, resp, &result)

	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	want := []domain.InputValue{{Name: "B", Value: "2"}, {Name: "MOUNT", Value: "/var"}}
	if len(calls[0].inputs) != len(want) {
		t.Fatalf("inputs = %+v, want %+v", calls[0].inputs, want)
	}
	for i := range want {
		if calls[0].inputs[i] != want[i] {
			t.Errorf("inputs[%d] = %+v, want %+v", i, calls[0].inputs[i], want[i])
		}
	}
}

func TestExecuteCommandQuery_Raw(t *testing.T) {
	tests := []struct {
		name   string
		result domain.ExecutionResult
		want   string
	}{
		{"stdout", domain.ExecutionResult{Stdout: "out", Stderr: "err"}, "out"},
		{"stderr fallback", domain.ExecutionResult{Stderr: "err", ExitCode: 1}, "err"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []call
			result := tt.result
			srv := newServer(t, recordingGateway(&calls, &result, nil), nil)

			resp, err := http.Get(srv.URL + "/api/v1/commands/disk/execute?format=raw")
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("Content-Type = %q", ct)
			}
			body, _ := io.ReadAll(resp.Body)
			if string(body) != tt.want {
				t.Errorf("body = %q, want %q", body, tt.want)
			}
		})
	}
}

func TestExecute_ThroughHTTPGateway(t *testing.T) {
	var calls []call
	srv := newServer(t, recordingGateway(&calls, &domain.ExecutionResult{Stdout: "42", ExitCode: 3}, nil), nil)

	client := gateway.NewHTTP(srv.URL, time.Second)
	result, err := client.Execute(context.Background(), "disk", []domain.InputValue{{Name: "MOUNT", Value: "/"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stdout != "42" || result.ExitCode != 3 {
		t.Errorf("result = %+v", result)
	}

	dash, err := client.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.Views) != 1 || len(dash.Categories) != 1 {
		t.Errorf("dashboard = %+v", dash)
	}
	if _, ok := dash.Command("disk"); !ok {
		t.Error("expected command disk in dashboard")
	}
}

// --- View Tests ---

func TestListViews(t *testing.T) {
	srv := newServer(t, nil, nil)

	resp, err := http.Get(srv.URL + "/api/v1/views")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var views []domain.ViewConfig
	decodeData(t, resp, &views)

	if len(views) != 1 || views[0].Slug != "disk" || views[0].Command == nil {
		t.Errorf("views = %+v", views)
	}
}

func TestGetView(t *testing.T) {
	srv := newServer(t, nil, nil)

	resp, err := http.Get(srv.URL + "/api/v1/views/disk")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var view domain.ViewConfig
	decodeData(t, resp, &view)
	if view.Name != "Disk" {
		t.Errorf("view = %+v", view)
	}

	resp, err = http.Get(srv.URL + "/api/v1/views/missing")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListCategories(t *testing.T) {
	srv := newServer(t, nil, nil)

	resp, err := http.Get(srv.URL + "/api/v1/categories")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var categories []domain.CategoryConfig
	decodeData(t, resp, &categories)

	if len(categories) != 1 || categories[0].Color != "green" {
		t.Errorf("categories = %+v", categories)
	}
}

// --- Version Tests ---

type memoryStore struct {
	versions map[string][]domain.DashboardVersion
}

func newMemoryStore() *memoryStore {
	return &memoryStore{versions: make(map[string][]domain.DashboardVersion)}
}

func (s *memoryStore) CreateVersion(_ context.Context, name string, spec domain.Definition) (*domain.DashboardVersion, error) {
	dv := domain.DashboardVersion{
		ID:        uuid.New(),
		Name:      name,
		Version:   len(s.versions[name]) + 1,
		Spec:      spec,
		CreatedAt: time.Now(),
	}
	s.versions[name] = append(s.versions[name], dv)
	return &dv, nil
}

func (s *memoryStore) GetVersion(_ context.Context, name string, version int) (*domain.DashboardVersion, error) {
	list := s.versions[name]
	if version < 1 || version > len(list) {
		return nil, repo.ErrNotFound
	}
	return &list[version-1], nil
}

func (s *memoryStore) GetLatest(_ context.Context, name string) (*domain.DashboardVersion, error) {
	list := s.versions[name]
	if len(list) == 0 {
		return nil, repo.ErrNotFound
	}
	return &list[len(list)-1], nil
}

func (s *memoryStore) ListVersions(_ context.Context, name string) ([]domain.DashboardVersion, error) {
	return s.versions[name], nil
}

func (s *memoryStore) ListNames(context.Context) ([]string, error) {
	var names []string
	for name := range s.versions {
		names = append(names, name)
	}
	return names, nil
}

const validSpec = `{"spec":{
	"commands":[{"slug":"up","command":"uptime"}],
	"categories":[{"slug":"sys","name":"System","color":"blue"}],
	"views":[{"name":"Uptime","command":"up","category":"sys"}]
}}`

func TestCreateVersion(t *testing.T) {
	store := newMemoryStore()
	srv := newServer(t, nil, store)

	for want := 1; want <= 2; want++ {
		resp, err := http.Post(srv.URL+"/api/v1/dashboards/ops/versions", "application/json", strings.NewReader(validSpec))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}

		var v VersionResponse
		decodeData(t, resp, &v)
		if v.Name != "ops" || v.Version != want {
			t.Errorf("version = %+v, want version %d", v, want)
		}
	}

	resp, err := http.Get(srv.URL + "/api/v1/dashboards/ops/versions/latest")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var latest VersionResponse
	decodeData(t, resp, &latest)
	if latest.Version != 2 || len(latest.Spec.Views) != 1 {
		t.Errorf("latest = %+v", latest)
	}

	resp, err = http.Get(srv.URL + "/api/v1/dashboards/ops/versions")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var list []VersionSummary
	decodeData(t, resp, &list)
	if len(list) != 2 {
		t.Errorf("expected 2 versions, got %d", len(list))
	}
}

func TestCreateVersion_InvalidSpec(t *testing.T) {
	store := newMemoryStore()
	srv := newServer(t, nil, store)

	body := `{"spec":{"views":[{"name":"Broken","command":"missing","category":"none"}]}}`
	resp, err := http.Post(srv.URL+"/api/v1/dashboards/ops/versions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	if detail := decodeError(t, resp); detail.Code != ErrCodeInvalidSpec {
		t.Errorf("code = %s", detail.Code)
	}
	if len(store.versions["ops"]) != 0 {
		t.Error("invalid spec must not be stored")
	}
}

func TestCreateVersion_InvalidName(t *testing.T) {
	store := newMemoryStore()
	srv := newServer(t, nil, store)

	resp, err := http.Post(srv.URL+"/api/v1/dashboards/Ops/versions", "application/json", strings.NewReader(validSpec))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if detail := decodeError(t, resp); detail.Code != ErrCodeBadRequest {
		t.Errorf("code = %s", detail.Code)
	}
	if len(store.versions) != 0 {
		t.Error("nothing must be stored for an invalid name")
	}
}

func TestGetVersion_Errors(t *testing.T) {
	srv := newServer(t, nil, newMemoryStore())

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/dashboards/ops/versions/abc", http.StatusBadRequest},
		{"/api/v1/dashboards/ops/versions/0", http.StatusBadRequest},
		{"/api/v1/dashboards/ops/versions/1", http.StatusNotFound},
		{"/api/v1/dashboards/ops/versions/latest", http.StatusNotFound},
	}

	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.status {
			t.Errorf("GET %s: status = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
	}
}

func TestVersions_NoStore(t *testing.T) {
	srv := newServer(t, nil, nil)

	resp, err := http.Get(srv.URL + "/api/v1/dashboards")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

// --- Middleware Tests ---

func TestRecovery(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Chain(Recovery(testLogger()), Metrics(), Logging(testLogger()))(panicking).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(mark("a"), mark("b"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "a,b,handler" {
		t.Errorf("order = %v", order)
	}
}
