package openai

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
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const instrumentationName = "github.com/fyrsmithlabs/brainlib/internal/openai"

// Operation names used for spans and metric labels.
const (
	opCreateVectorStore    = "create_vector_store"
	opUploadFile           = "upload_file"
	opAttachFile           = "attach_file"
	opListVectorStoreFiles = "list_vector_store_files"
	opCreateResponse       = "create_response"
)

// Client talks to the hosted provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTracerProvider sets the tracer provider used for call spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(instrumentationName)
	}
}

// New creates a Client. The API key is required.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg = cfg.withDefaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		tracer:     otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the model used for answers.
func (c *Client) Model() string {
	return c.cfg.Model
}

// CreateVectorStore creates an empty vector store with the given name.
func (c *Client) CreateVectorStore(ctx context.Context, name string) (*VectorStore, error) {
	var store VectorStore
	err := c.observe(ctx, opCreateVectorStore, nil, func(ctx context.Context) error {
		body, err := json.Marshal(createVectorStoreRequest{Name: name})
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		return c.do(ctx, request{
			method:      http.MethodPost,
			path:        "/v1/vector_stores",
			body:        body,
			contentType: "application/json",
			beta:        true,
		}, &store)
	})
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// UploadFile uploads a document with the configured purpose.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (*File, error) {
	var file File
	attrs := []attribute.KeyValue{attribute.String("openai.filename", filename)}
	err := c.observe(ctx, opUploadFile, attrs, func(ctx context.Context) error {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if err := mw.WriteField("purpose", c.cfg.FilePurpose); err != nil {
			return fmt.Errorf("failed to write purpose field: %w", err)
		}
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			return fmt.Errorf("failed to create file part: %w", err)
		}
		n, err := io.Copy(part, content)
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		if err := mw.Close(); err != nil {
			return fmt.Errorf("failed to finish multipart body: %w", err)
		}

		trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("openai.file_bytes", n))
		if err := c.do(ctx, request{
			method:      http.MethodPost,
			path:        "/v1/files",
			body:        buf.Bytes(),
			contentType: mw.FormDataContentType(),
		}, &file); err != nil {
			return err
		}
		UploadedBytes.Add(float64(n))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// AttachFile adds an uploaded file to a vector store.
func (c *Client) AttachFile(ctx context.Context, storeID, fileID string) (*VectorStoreFile, error) {
	var vsf VectorStoreFile
	attrs := []attribute.KeyValue{
		attribute.String("openai.vector_store_id", storeID),
		attribute.String("openai.file_id", fileID),
	}
	err := c.observe(ctx, opAttachFile, attrs, func(ctx context.Context) error {
		body, err := json.Marshal(attachFileRequest{FileID: fileID})
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		return c.do(ctx, request{
			method:      http.MethodPost,
			path:        "/v1/vector_stores/" + url.PathEscape(storeID) + "/files",
			body:        body,
			contentType: "application/json",
			beta:        true,
		}, &vsf)
	})
	if err != nil {
		return nil, err
	}
	return &vsf, nil
}

// ListVectorStoreFiles returns every file attached to a vector store,
// following pagination until the listing is complete.
func (c *Client) ListVectorStoreFiles(ctx context.Context, storeID string) ([]VectorStoreFile, error) {
	files := []VectorStoreFile{}
	attrs := []attribute.KeyValue{attribute.String("openai.vector_store_id", storeID)}
	err := c.observe(ctx, opListVectorStoreFiles, attrs, func(ctx context.Context) error {
		after := ""
		pages := 0
		for {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(c.cfg.PageSize))
			if after != "" {
				q.Set("after", after)
			}

			var page listVectorStoreFilesResponse
			if err := c.do(ctx, request{
				method: http.MethodGet,
				path:   "/v1/vector_stores/" + url.PathEscape(storeID) + "/files?" + q.Encode(),
				beta:   true,
			}, &page); err != nil {
				return err
			}
			pages++
			files = append(files, page.Data...)

			if !page.HasMore {
				break
			}
			next := page.LastID
			if next == "" && len(page.Data) > 0 {
				next = page.Data[len(page.Data)-1].ID
			}
			if next == "" || next == after {
				break
			}
			after = next
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int("openai.pages", pages),
			attribute.Int("openai.file_count", len(files)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// CreateResponse asks the model a question grounded on one vector store via
// the file_search tool.
func (c *Client) CreateResponse(ctx context.Context, storeID, question string) (*Response, error) {
	var resp Response
	attrs := []attribute.KeyValue{
		attribute.String("openai.vector_store_id", storeID),
		attribute.String("openai.model", c.cfg.Model),
	}
	err := c.observe(ctx, opCreateResponse, attrs, func(ctx context.Context) error {
		body, err := json.Marshal(createResponseRequest{
			Model: c.cfg.Model,
			Input: question,
			Tools: []fileSearchTool{{
				Type:           "file_search",
				VectorStoreIDs: []string{storeID},
			}},
		})
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		return c.do(ctx, request{
			method:      http.MethodPost,
			path:        "/v1/responses",
			body:        body,
			contentType: "application/json",
		}, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// observe wraps a call in a span and records its metrics.
func (c *Client) observe(ctx context.Context, op string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "openai."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append([]attribute.KeyValue{attribute.String("openai.operation", op)}, attrs...)...),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	RequestsTotal.WithLabelValues(op, resultLabel(err)).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

type request struct {
	method      string
	path        string
	body        []byte
	contentType string
	beta        bool
}

// do performs one HTTP exchange and decodes a 2xx JSON reply into out.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, c.cfg.BaseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}
	if r.beta {
		httpReq.Header.Set("OpenAI-Beta", "assistants=v2")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
