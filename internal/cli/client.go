package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/gateway"
)

// --- Response types ---

// VersionResponse — версия дашборда из API.
type VersionResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Version   int               `json:"version"`
	Spec      domain.Definition `json:"spec"`
	CreatedAt string            `json:"created_at"`
}

// VersionSummary — версия дашборда без spec.
type VersionSummary struct {
	ID        string `json:"id"`
	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для shellboard-api.
//
// Выполнение команд и чтение дашборда — через встроенный gateway.HTTP.
type Client struct {
	*gateway.HTTP

	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = gateway.DefaultTimeout
	}
	api := gateway.NewHTTP(baseURL, timeout)
	return &Client{
		HTTP:    api,
		baseURL: api.BaseURL(),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// --- Dashboard versions ---

// ListDashboards возвращает имена сохранённых дашбордов.
func (c *Client) ListDashboards(ctx context.Context) ([]string, error) {
	var names []string
	err := c.list(ctx, "/api/v1/dashboards", nil, &names)
	return names, err
}

// ListVersions возвращает версии дашборда.
func (c *Client) ListVersions(ctx context.Context, name string) ([]VersionSummary, error) {
	var versions []VersionSummary
	err := c.list(ctx, "/api/v1/dashboards/"+url.PathEscape(name)+"/versions", nil, &versions)
	return versions, err
}

// GetVersion возвращает версию дашборда. version "latest" — последнюю.
func (c *Client) GetVersion(ctx context.Context, name, version string) (*VersionResponse, error) {
	var v VersionResponse
	err := c.doData(ctx, http.MethodGet, "/api/v1/dashboards/"+url.PathEscape(name)+"/versions/"+url.PathEscape(version), nil, &v)
	return &v, err
}

// PublishVersion публикует новую версию дашборда.
func (c *Client) PublishVersion(ctx context.Context, name string, spec domain.Definition) (*VersionResponse, error) {
	body := map[string]domain.Definition{"spec": spec}
	var v VersionResponse
	err := c.doData(ctx, http.MethodPost, "/api/v1/dashboards/"+url.PathEscape(name)+"/versions", body, &v)
	return &v, err
}

// --- HTTP helpers ---

func (c *Client) list(ctx context.Context, path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(ctx context.Context, method, path string, body any, result any) error {
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
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
