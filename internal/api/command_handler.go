package api

import (
	"cmp"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/telemetry"
)

// inputPrefix — префикс query-параметров со значениями inputs.
const inputPrefix = "input_"

// ExecuteCommand выполняет команду с inputs из JSON тела.
// POST /api/v1/commands/{slug}/execute
func (h *Handler) ExecuteCommand(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(w, "invalid request body")
		return
	}

	h.execute(w, r, req.Inputs)
}

// ExecuteCommandQuery выполняет команду с inputs из query (input_<NAME>=...).
// С format=raw возвращает stdout (или stderr, если stdout пуст) как text/plain.
// GET /api/v1/commands/{slug}/execute
func (h *Handler) ExecuteCommandQuery(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, QueryInputs(r))
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, inputs []domain.InputValue) {
	slug := r.PathValue("slug")
	logger := telemetry.WithCommand(h.logger, slug)

	if _, ok := h.dashboard.Command(slug); !ok {
		NotFound(w, "command not found: "+slug)
		return
	}

	if h.gateway == nil {
		Unavailable(w, "command execution is not configured")
		return
	}

	result, err := h.gateway.Execute(r.Context(), slug, inputs)
	if HandleGatewayError(w, logger, err) {
		return
	}

	logger.Debug("command executed", "exit_code", result.ExitCode)

	if r.URL.Query().Get("format") == "raw" {
		Text(w, http.StatusOK, result.Output())
		return
	}

	Success(w, ExecuteFromDomain(slug, *result))
}

// QueryInputs собирает inputs из query-параметров input_<NAME>.
// Порядок — по имени параметра; пустые имена пропускаются.
func QueryInputs(r *http.Request) []domain.InputValue {
	query := r.URL.Query()

	var inputs []domain.InputValue
	for key, values := range query {
		name, ok := strings.CutPrefix(key, inputPrefix)
		if !ok || name == "" || len(values) == 0 {
			continue
		}
		inputs = append(inputs, domain.InputValue{Name: name, Value: values[0]})
	}

	slices.SortFunc(inputs, func(a, b domain.InputValue) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return inputs
}
