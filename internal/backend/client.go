package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roi-capture/internal/dto"
	"roi-capture/internal/metrics"
)

// Endpoint names, used for metrics labels and errors.
const (
	EndpointUpload  = "upload"
	EndpointExtract = "extract"
	EndpointSave    = "save"
	EndpointPreview = "preview"
)

const requestIDHeader = "X-Request-ID"

// TransportError reports a request that produced no usable response: the
// connection failed, the status was unexpected, or the body did not decode.
type TransportError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (status %d): %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to the frame extraction backend.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for the backend at baseURL. A zero timeout
// leaves requests unbounded unless the caller's context carries a deadline.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

// UploadVideo sends the video as the multipart field "file".
func (c *Client) UploadVideo(ctx context.Context, filename string, video io.Reader) (*dto.UploadResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, &TransportError{Endpoint: EndpointUpload, Err: err}
	}
	if _, err := io.Copy(part, video); err != nil {
		return nil, &TransportError{Endpoint: EndpointUpload, Err: fmt.Errorf("failed to read video: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return nil, &TransportError{Endpoint: EndpointUpload, Err: err}
	}

	var out dto.UploadResponse
	if err := c.do(ctx, EndpointUpload, http.MethodPost, "/upload_video", writer.FormDataContentType(), body, &out); err != nil {
		return nil, err
	}
	c.record(EndpointUpload, out.Path != "")
	return &out, nil
}

// Extract asks the backend to crop previews for the given request.
func (c *Client) Extract(ctx context.Context, req dto.ExtractRequest) (*dto.ExtractResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Endpoint: EndpointExtract, Err: err}
	}

	var out dto.ExtractResponse
	if err := c.do(ctx, EndpointExtract, http.MethodPost, "/manual/extract", "application/json", bytes.NewReader(payload), &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		c.record(EndpointExtract, false)
		return nil, &TransportError{Endpoint: EndpointExtract, Err: fmt.Errorf("malformed response: %w", err)}
	}
	c.record(EndpointExtract, out.OK)
	return &out, nil
}

// Save asks the backend to persist every extracted preview.
func (c *Client) Save(ctx context.Context) (*dto.SaveResponse, error) {
	var out dto.SaveResponse
	if err := c.do(ctx, EndpointSave, http.MethodPost, "/manual/save", "", nil, &out); err != nil {
		return nil, err
	}
	c.record(EndpointSave, out.OK)
	return &out, nil
}

// Preview fetches the 1-based preview at index.
func (c *Client) Preview(ctx context.Context, index int) (*dto.PreviewResponse, error) {
	path := "/manual/preview?" + url.Values{"index": {strconv.Itoa(index)}}.Encode()

	var out dto.PreviewResponse
	if err := c.do(ctx, EndpointPreview, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		c.record(EndpointPreview, false)
		return nil, &TransportError{Endpoint: EndpointPreview, Err: fmt.Errorf("malformed response: %w", err)}
	}
	c.record(EndpointPreview, out.OK)
	return &out, nil
}

// do sends one request and decodes the JSON body into out. A non-2xx status is
// only tolerated when the body still decodes; the caller inspects the result.
func (c *Client) do(ctx context.Context, endpoint, method, path, contentType string, body io.Reader, out any) error {
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return c.fail(&TransportError{Endpoint: endpoint, Err: err})
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.New().String()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return c.fail(&TransportError{Endpoint: endpoint, Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(&TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err})
	}

	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			err = fmt.Errorf("unexpected response: %s", truncate(raw, 200))
		} else {
			err = fmt.Errorf("failed to decode response: %w", err)
		}
		return c.fail(&TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err})
	}

	c.logger.Debug("backend request completed",
		zap.String("endpoint", endpoint),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (c *Client) fail(err *TransportError) error {
	metrics.BackendRequestsTotal.WithLabelValues(err.Endpoint, metrics.OutcomeTransport).Inc()
	c.logger.Warn("backend request failed", zap.String("endpoint", err.Endpoint), zap.Error(err))
	return err
}

func (c *Client) record(endpoint string, ok bool) {
	outcome := metrics.OutcomeOK
	if !ok {
		outcome = metrics.OutcomeRejected
	}
	metrics.BackendRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
