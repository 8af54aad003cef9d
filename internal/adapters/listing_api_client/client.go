package listing_api_client

import (
	"context"
	"fmt"
	"io"
	"listings-service/internal/contextkeys"
	"listings-service/internal/contracts"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/port"
	"net/http"
	"strings"
)

// maxPayloadBytes - ограничение на размер ответа источника
const maxPayloadBytes = 64 << 20

// Client - HTTP-источник сырых записей: одна GET-операция, возвращающая массив объявлений
type Client struct {
	baseURL    string
	path       string
	httpClient *http.Client
}

func NewClient(baseURL, path string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("listings api client: base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       path,
		httpClient: httpClient,
	}, nil
}

func (c *Client) Name() string { return "http" }

// doRequest проставляет общие заголовки и trace_id из контекста
func (c *Client) doRequest(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

func (c *Client) FetchRecords(ctx context.Context) ([]domain.RawRecord, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component": "ListingsApiClient",
		"method":    "FetchRecords",
	})

	url := c.baseURL + c.path
	clientLogger.Debug("Sending request to listings source", port.Fields{"url": url})

	resp, err := c.doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		clientLogger.Error("Failed to perform request to listings source", err, nil)
		return nil, fmt.Errorf("listings source request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("listings source returned non-success status code %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
		clientLogger.Error("Received error response from listings source", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		clientLogger.Error("Failed to read listings source response", err, nil)
		return nil, fmt.Errorf("failed to read listings source response: %w", err)
	}
	if len(payload) > maxPayloadBytes {
		return nil, fmt.Errorf("listings source response exceeds %d bytes", maxPayloadBytes)
	}

	records, err := contracts.DecodeRecords(payload)
	if err != nil {
		clientLogger.Error("Listings source response violates contract", err, nil)
		return nil, err
	}

	clientLogger.Info("Successfully received and decoded response", port.Fields{"records_count": len(records)})
	return records, nil
}
