package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shaiso/Shellboard/internal/domain"
)

const opHTTP = "http"

// DefaultTimeout — таймаут HTTP клиента по умолчанию.
const DefaultTimeout = 30 * time.Second

// ExecuteRequest — тело POST /api/v1/commands/{slug}/execute.
type ExecuteRequest struct {
	Inputs []domain.InputValue `json:"inputs"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// HTTP — клиент shellboard-api.
type HTTP struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTP создаёт HTTP gateway. timeout <= 0 — DefaultTimeout.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL возвращает адрес API.
func (c *HTTP) BaseURL() string {
	return c.baseURL
}

// Execute выполняет команду через API.
func (c *HTTP) Execute(ctx context.Context, commandRef string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
	if inputs == nil {
		inputs = []domain.InputValue{}
	}

	var result domain.ExecutionResult
	err := c.doData(ctx, http.MethodPost, executePath(commandRef), ExecuteRequest{Inputs: inputs}, &result)
	if err != nil {
		return nil, c.wrap(commandRef, err)
	}

	return &result, nil
}

// Views возвращает view дашборда, которым управляет API.
func (c *HTTP) Views(ctx context.Context) ([]domain.ViewConfig, error) {
	var views []domain.ViewConfig
	if err := c.doData(ctx, http.MethodGet, "/api/v1/views", nil, &views); err != nil {
		return nil, c.wrap("", err)
	}
	return views, nil
}

// Categories возвращает категории дашборда.
func (c *HTTP) Categories(ctx context.Context) ([]domain.CategoryConfig, error) {
	var categories []domain.CategoryConfig
	if err := c.doData(ctx, http.MethodGet, "/api/v1/categories", nil, &categories); err != nil {
		return nil, c.wrap("", err)
	}
	return categories, nil
}

// Dashboard собирает дашборд из views и categories API.
func (c *HTTP) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	views, err := c.Views(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := c.Categories(ctx)
	if err != nil {
		return nil, err
	}

	commands := make(map[string]domain.CommandConfig)
	for _, v := range views {
		for _, step := range v.Steps() {
			commands[step.CommandRef()] = step.Command
		}
	}

	return &domain.Dashboard{Views: views, Categories: categories, Commands: commands}, nil
}

// RawLink строит ссылку на сырой вывод команды (format=raw).
// Пустые значения не передаются.
func (c *HTTP) RawLink(commandRef string, inputs []domain.InputValue) string {
	return RawLink(c.baseURL, commandRef, inputs)
}

// RawLink строит ссылку на сырой вывод команды относительно baseURL.
func RawLink(baseURL, commandRef string, inputs []domain.InputValue) string {
	params := url.Values{}
	for _, in := range inputs {
		if in.Value == "" {
			continue
		}
		params.Set("input_"+in.Name, in.Value)
	}
	params.Set("format", "raw")

	return strings.TrimRight(baseURL, "/") + executePath(commandRef) + "?" + params.Encode()
}

func executePath(commandRef string) string {
	return "/api/v1/commands/" + url.PathEscape(commandRef) + "/execute"
}

// wrap переводит ошибку транспорта в *Error.
func (c *HTTP) wrap(commandRef string, err error) error {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		gwErr.Command = commandRef
		return gwErr
	}

	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newError(opHTTP, commandRef, ErrTimeout, err)
	case errors.As(err, &urlErr) && urlErr.Timeout():
		return newError(opHTTP, commandRef, ErrTimeout, err)
	case errors.As(err, &urlErr):
		return newError(opHTTP, commandRef, ErrUnavailable, err)
	default:
		return newError(opHTTP, commandRef, ErrProtocol, err)
	}
}

// --- HTTP helpers ---

func (c *HTTP) doData(ctx context.Context, method, path string, body any, result any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if result != nil {
		if err := json.Unmarshal(dr.Data, result); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func (c *HTTP) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// checkError переводит ответ API с ошибкой в *Error нужного класса.
func (c *HTTP) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	message := fmt.Sprintf("HTTP %d", resp.StatusCode)
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error.Message != "" {
		message = fmt.Sprintf("%s: %s", er.Error.Code, er.Error.Message)
	}

	var kind error
	switch {
	case resp.StatusCode == http.StatusNotFound:
		kind = ErrUnknownCommand
	case resp.StatusCode == http.StatusGatewayTimeout:
		kind = ErrTimeout
	case resp.StatusCode == http.StatusServiceUnavailable:
		kind = ErrUnavailable
	case resp.StatusCode < 500:
		kind = ErrBadRequest
	default:
		kind = ErrService
	}

	return newError(opHTTP, "", kind, errors.New(message))
}
