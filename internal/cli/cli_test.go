package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/Shellboard/internal/api"
	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/gateway"
	"github.com/shaiso/Shellboard/internal/repo"
	"github.com/shaiso/Shellboard/internal/sequencer"
)

const localDefinition = `
inputs:
  - slug: WHO
commands:
  - slug: greet
    command: printf 'hello %s' "$WHO"
    inputs:
      - input: WHO
  - slug: fail
    command: exit 3
  - slug: done
    command: printf done
sequences:
  - slug: pipeline
    steps:
      - name: Greet
        command: greet
      - name: Done
        command: done
  - slug: broken
    steps:
      - name: Fail
        command: fail
      - name: Done
        command: done
categories:
  - slug: ops
    name: Operations
    color: green
views:
  - name: Pipeline
    sequence: pipeline
    category: ops
  - name: Broken
    sequence: broken
    category: ops
`

func writeDefinition(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shellboard.yaml")
	if err := os.WriteFile(path, []byte(localDefinition), 0o644); err != nil {
		t.Fatalf("write definition: %v", err)
	}
	return path
}

func testEnv() (*Env, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Env{
		Timeout: 5 * time.Second,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stdout:  &stdout,
		Stderr:  &stderr,
	}
	return env, &stdout, &stderr
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func sequenceView(steps ...string) domain.ViewConfig {
	seq := &domain.SequenceConfig{Slug: "seq"}
	for _, s := range steps {
		cmd := domain.CommandConfig{Slug: s, Command: "true"}
		if s == "ask" {
			cmd.Inputs = []domain.InputSpec{{Slug: "NAME"}}
		}
		seq.Steps = append(seq.Steps, domain.Step{Name: strings.ToUpper(s), Command: cmd})
	}
	return domain.ViewConfig{Name: "Seq", Slug: "seq", Sequence: seq}
}

// --- Inputs Tests ---

func TestParseInputs(t *testing.T) {
	values, err := ParseInputs([]string{"A=1", "B=x=y", " C =", "A=2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{"A": "2", "B": "x=y", "C": ""}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %v", len(want), values)
	}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("expected %s=%q, got %q", k, v, values[k])
		}
	}
}

func TestParseInputs_Invalid(t *testing.T) {
	for _, in := range []string{"NOVALUE", "=x", " =x"} {
		if _, err := ParseInputs([]string{in}); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%q: expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestInputValues_KeepsOrder(t *testing.T) {
	values, err := InputValues([]string{"B=1", "A=2", "B=3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.InputValue{{Name: "B", Value: "3"}, {Name: "A", Value: "2"}}
	if len(values) != len(want) {
		t.Fatalf("expected %v, got %v", want, values)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("values[%d]: expected %v, got %v", i, want[i], values[i])
		}
	}
}

// --- RunView Tests ---

func TestRunView_AllSteps(t *testing.T) {
	var calls []string
	gw := gateway.Func(func(_ context.Context, ref string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
		calls = append(calls, ref)
		out := ref
		if len(inputs) > 0 {
			out += ":" + inputs[0].Value
		}
		return &domain.ExecutionResult{Stdout: out}, nil
	})

	var reports []StepReport
	err := RunView(context.Background(), sequenceView("ask", "next"), gw,
		map[string]string{"NAME": "bob"}, sequencer.GateAnyInput,
		func(r StepReport) { reports = append(reports, r) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Join(calls, ",") != "ask,next" {
		t.Errorf("expected calls ask,next, got %v", calls)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].Result.Stdout != "ask:bob" {
		t.Errorf("expected stdout ask:bob, got %q", reports[0].Result.Stdout)
	}
	if reports[1].Index != 1 || reports[1].Name != "NEXT" {
		t.Errorf("unexpected second report: %+v", reports[1])
	}
}

func TestRunView_MissingInput(t *testing.T) {
	gw := gateway.Func(func(context.Context, string, []domain.InputValue) (*domain.ExecutionResult, error) {
		t.Fatal("gateway must not be called")
		return nil, nil
	})

	err := RunView(context.Background(), sequenceView("ask"), gw, nil, sequencer.GateAnyInput, nil)
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "NAME") {
		t.Errorf("expected input name in error, got %q", err)
	}
}

func TestRunView_StopsOnFailure(t *testing.T) {
	var calls []string
	gw := gateway.Func(func(_ context.Context, ref string, _ []domain.InputValue) (*domain.ExecutionResult, error) {
		calls = append(calls, ref)
		if ref == "first" {
			return &domain.ExecutionResult{Stderr: "boom", ExitCode: 4}, nil
		}
		return &domain.ExecutionResult{}, nil
	})

	err := RunView(context.Background(), sequenceView("first", "second"), gw, nil, sequencer.GateAnyInput, nil)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 4 || exitErr.Command != "first" {
		t.Errorf("unexpected exit error: %+v", exitErr)
	}
	if len(calls) != 1 {
		t.Errorf("expected 1 call, got %v", calls)
	}
}

func TestRunView_GatewayError(t *testing.T) {
	gw := gateway.Func(func(context.Context, string, []domain.InputValue) (*domain.ExecutionResult, error) {
		return nil, gateway.ErrUnavailable
	})

	err := RunView(context.Background(), sequenceView("first"), gw, nil, sequencer.GateAnyInput, nil)
	if !errors.Is(err, gateway.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestRunView_PrePhaseNotReported(t *testing.T) {
	view := sequenceView("first")
	view.Inputs = []domain.InputSpec{{Slug: "ENV"}}

	var got []domain.InputValue
	gw := gateway.Func(func(_ context.Context, _ string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
		got = inputs
		return &domain.ExecutionResult{}, nil
	})

	var reports []StepReport
	err := RunView(context.Background(), view, gw, map[string]string{"ENV": "prod"}, sequencer.GateAnyInput,
		func(r StepReport) { reports = append(reports, r) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(reports) != 1 || reports[0].Command != "first" {
		t.Errorf("expected one report for first, got %+v", reports)
	}
	if len(got) != 1 || got[0] != (domain.InputValue{Name: "ENV", Value: "prod"}) {
		t.Errorf("expected view input passed to step, got %v", got)
	}
}

// --- Output Tests ---

func TestOutput_Table(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo(false, &buf, io.Discard)

	out.Print([]string{"SLUG", "NAME"}, [][]string{{"disk", "Disk usage"}}, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "SLUG") || !strings.HasPrefix(lines[1], "----") {
		t.Errorf("unexpected header: %q", lines[:2])
	}
	if !strings.Contains(lines[2], "Disk usage") {
		t.Errorf("unexpected row: %q", lines[2])
	}
}

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo(true, &buf, io.Discard)

	out.Print([]string{"NAME"}, [][]string{{"ignored"}}, map[string]int{"views": 2})

	var got map[string]int
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if got["views"] != 2 {
		t.Errorf("expected views=2, got %v", got)
	}
}

func TestOutput_Raw(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo(false, &buf, io.Discard)

	out.Raw("a")
	out.Raw("b\n")
	out.Raw("")

	if buf.String() != "a\nb\n" {
		t.Errorf("unexpected raw output %q", buf.String())
	}
}

// --- Local Commands Tests ---

func TestRunCmd_LocalGateway(t *testing.T) {
	env, stdout, _ := testEnv()
	env.Source = writeDefinition(t)

	err := execute(t, NewRunCmd(env), "pipeline", "--input", "WHO=world", "--raw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stdout.String() != "hello world\ndone\n" {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestRunCmd_ExitCode(t *testing.T) {
	env, _, _ := testEnv()
	env.Source = writeDefinition(t)

	err := execute(t, NewRunCmd(env), "broken")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Fatalf("expected exit code 3, got %v", err)
	}
}

func TestRunCmd_UnknownView(t *testing.T) {
	env, _, _ := testEnv()
	env.Source = writeDefinition(t)

	if err := execute(t, NewRunCmd(env), "missing"); err == nil {
		t.Fatal("expected error for unknown view")
	}
}

func TestRunCmd_JSON(t *testing.T) {
	env, stdout, _ := testEnv()
	env.Source = writeDefinition(t)
	env.JSON = true

	if err := execute(t, NewRunCmd(env), "pipeline", "-i", "WHO=json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var steps []stepOutput
	if err := json.Unmarshal(stdout.Bytes(), &steps); err != nil {
		t.Fatalf("invalid json %q: %v", stdout.String(), err)
	}
	if len(steps) != 2 || steps[0].Stdout != "hello json" || steps[1].Command != "done" {
		t.Errorf("unexpected steps: %+v", steps)
	}
}

func TestExecCmd_Local(t *testing.T) {
	env, stdout, _ := testEnv()
	env.Source = writeDefinition(t)

	if err := execute(t, NewExecCmd(env), "greet", "-i", "WHO=local", "--raw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout.String() != "hello local\n" {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestViewsCmd_Local(t *testing.T) {
	env, stdout, _ := testEnv()
	env.Source = writeDefinition(t)
	env.JSON = true

	if err := execute(t, NewViewsCmd(env)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var views []domain.ViewConfig
	if err := json.Unmarshal(stdout.Bytes(), &views); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(views) != 2 || views[0].Slug != "pipeline" {
		t.Errorf("unexpected views: %+v", views)
	}
}

func TestValidateCmd(t *testing.T) {
	_, stdout, stderr := testEnv()
	outputFn := func() *Output { return NewOutputTo(false, stdout, stderr) }

	if err := execute(t, NewValidateCmd(outputFn), writeDefinition(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr.String(), "valid") {
		t.Errorf("expected success message, got %q", stderr.String())
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("views:\n  - name: X\n    command: nope\n    category: none\n"), 0o644)
	if err := execute(t, NewValidateCmd(outputFn), bad); err == nil {
		t.Fatal("expected validation error")
	}
}

// --- API Commands Tests ---

func apiDashboard() *domain.Dashboard {
	disk := domain.CommandConfig{
		Slug:    "disk",
		Command: "df -h $MOUNT",
		Inputs:  []domain.InputSpec{{Slug: "MOUNT"}},
	}
	ops := domain.CategoryConfig{Slug: "ops", Name: "Operations", Color: "green"}

	return &domain.Dashboard{
		Views:      []domain.ViewConfig{{Name: "Disk", Slug: "disk", Command: &disk, Category: ops}},
		Categories: []domain.CategoryConfig{ops},
		Commands:   map[string]domain.CommandConfig{"disk": disk},
	}
}

type memoryStore struct {
	mu       sync.Mutex
	versions map[string][]domain.DashboardVersion
}

func (s *memoryStore) CreateVersion(_ context.Context, name string, spec domain.Definition) (*domain.DashboardVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions == nil {
		s.versions = make(map[string][]domain.DashboardVersion)
	}
	v := domain.DashboardVersion{
		ID:        uuid.New(),
		Name:      name,
		Version:   len(s.versions[name]) + 1,
		Spec:      spec,
		CreatedAt: time.Now(),
	}
	s.versions[name] = append(s.versions[name], v)
	return &v, nil
}

func (s *memoryStore) GetVersion(_ context.Context, name string, version int) (*domain.DashboardVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vs := s.versions[name]
	if version < 1 || version > len(vs) {
		return nil, repo.ErrNotFound
	}
	v := vs[version-1]
	return &v, nil
}

func (s *memoryStore) GetLatest(ctx context.Context, name string) (*domain.DashboardVersion, error) {
	s.mu.Lock()
	n := len(s.versions[name])
	s.mu.Unlock()
	return s.GetVersion(ctx, name, n)
}

func (s *memoryStore) ListVersions(_ context.Context, name string) ([]domain.DashboardVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.DashboardVersion(nil), s.versions[name]...), nil
}

func (s *memoryStore) ListNames(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for name := range s.versions {
		names = append(names, name)
	}
	return names, nil
}

func newAPI(t *testing.T, gw gateway.Gateway, store api.VersionStore) *httptest.Server {
	t.Helper()

	h := api.NewHandler(api.Config{
		Dashboard: apiDashboard(),
		Gateway:   gw,
		Versions:  store,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestExecCmd_API(t *testing.T) {
	var got []domain.InputValue
	srv := newAPI(t, gateway.Func(func(_ context.Context, ref string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
		got = inputs
		return &domain.ExecutionResult{Stdout: "Filesystem\n", ExitCode: 0}, nil
	}), nil)

	env, stdout, _ := testEnv()
	env.APIURL = srv.URL
	env.JSON = true

	if err := execute(t, NewExecCmd(env), "disk", "--input", "MOUNT=/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res execResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("invalid json %q: %v", stdout.String(), err)
	}
	if res.Command != "disk" || res.Stdout != "Filesystem\n" {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(got) != 1 || got[0] != (domain.InputValue{Name: "MOUNT", Value: "/"}) {
		t.Errorf("expected MOUNT=/ passed to gateway, got %v", got)
	}
}

func TestExecCmd_API_NonZeroExit(t *testing.T) {
	srv := newAPI(t, gateway.Func(func(context.Context, string, []domain.InputValue) (*domain.ExecutionResult, error) {
		return &domain.ExecutionResult{Stderr: "denied", ExitCode: 2}, nil
	}), nil)

	env, _, _ := testEnv()
	env.APIURL = srv.URL

	err := execute(t, NewExecCmd(env), "disk")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("expected exit code 2, got %v", err)
	}
}

func TestExecCmd_API_UnknownCommand(t *testing.T) {
	srv := newAPI(t, gateway.Func(func(context.Context, string, []domain.InputValue) (*domain.ExecutionResult, error) {
		return &domain.ExecutionResult{}, nil
	}), nil)

	env, _, _ := testEnv()
	env.APIURL = srv.URL

	err := execute(t, NewExecCmd(env), "nope")
	if !errors.Is(err, gateway.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestCategoriesCmd_API(t *testing.T) {
	srv := newAPI(t, nil, nil)

	env, stdout, _ := testEnv()
	env.APIURL = srv.URL

	if err := execute(t, NewCategoriesCmd(env)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Operations") {
		t.Errorf("expected category in output, got %q", stdout.String())
	}
}

func TestDashboardCmd_PublishAndShow(t *testing.T) {
	store := &memoryStore{}
	srv := newAPI(t, nil, store)

	env, stdout, stderr := testEnv()
	env.APIURL = srv.URL
	clientFn := env.Client
	outputFn := env.Output

	file := writeDefinition(t)
	if err := execute(t, NewDashboardCmd(clientFn, outputFn), "publish", file, "--name", "ops"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := execute(t, NewDashboardCmd(clientFn, outputFn), "publish", file, "--name", "ops"); err != nil {
		t.Fatalf("second publish failed: %v", err)
	}
	if !strings.Contains(stderr.String(), "version 2") {
		t.Errorf("expected version 2 message, got %q", stderr.String())
	}

	stdout.Reset()
	env.JSON = true
	if err := execute(t, NewDashboardCmd(clientFn, outputFn), "show", "ops"); err != nil {
		t.Fatalf("show failed: %v", err)
	}

	var v VersionResponse
	if err := json.Unmarshal(stdout.Bytes(), &v); err != nil {
		t.Fatalf("invalid json %q: %v", stdout.String(), err)
	}
	if v.Version != 2 || len(v.Spec.Views) != 2 {
		t.Errorf("unexpected version: %+v", v)
	}

	stdout.Reset()
	if err := execute(t, NewDashboardCmd(clientFn, outputFn), "versions", "ops"); err != nil {
		t.Fatalf("versions failed: %v", err)
	}
	var versions []VersionSummary
	if err := json.Unmarshal(stdout.Bytes(), &versions); err != nil {
		t.Fatalf("invalid json %q: %v", stdout.String(), err)
	}
	if len(versions) != 2 {
		t.Errorf("expected 2 versions, got %d", len(versions))
	}
}

func TestDashboardCmd_ShowNotFound(t *testing.T) {
	srv := newAPI(t, nil, &memoryStore{})

	env, _, _ := testEnv()
	env.APIURL = srv.URL

	if err := execute(t, NewDashboardCmd(env.Client, env.Output), "show", "missing"); err == nil {
		t.Fatal("expected error for missing dashboard")
	}
}
