package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"ragchat/internal/domain"
)

// DefaultBaseURL matches the backend's local development address.
const DefaultBaseURL = "http://localhost:8000/api"

// DefaultTopK is the number of passages requested per query.
const DefaultTopK = 4

// Client is a minimal REST client to the RAG backend. It translates between
// the wire format and the domain types and nothing else: no retries, no
// caching, no inspection of response content.
type Client struct {
	baseURL string
	client  *http.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	// strip exactly one trailing slash; paths below carry the leading one
	base = strings.TrimSuffix(base, "/")
	return &Client{
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the normalized base the client resolves paths against.
func (c *Client) BaseURL() string { return c.baseURL }

type queryRequest struct {
	Question string `json:"question"`
	K        int    `json:"k"`
}

func (c *Client) Query(question string, topK int) (*domain.QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("empty question")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	var out domain.QueryResult
	if err := c.postJSON("/query", queryRequest{Question: question, K: topK}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Upload(filename string, file io.Reader) (*domain.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, c.url("/upload"), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out domain.UploadResult
	if err := c.do("upload", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats() (*domain.CollectionStats, error) {
	var out domain.CollectionStats
	if err := c.getJSON("/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearCollection drops every indexed document on the backend. Irreversible;
// callers gate it behind explicit confirmation.
func (c *Client) ClearCollection() (*domain.ClearResult, error) {
	req, err := http.NewRequest(http.MethodDelete, c.url("/clear"), nil)
	if err != nil {
		return nil, err
	}
	var out domain.ClearResult
	if err := c.do("clear", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health() (*domain.Health, error) {
	var out domain.Health
	if err := c.getJSON("/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

func (c *Client) postJSON(path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.url(path), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(strings.TrimPrefix(path, "/"), req, out)
}

func (c *Client) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.url(path), nil)
	if err != nil {
		return err
	}
	return c.do(strings.TrimPrefix(path, "/"), req, out)
}

func (c *Client) do(op string, req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Op: op, Status: resp.StatusCode, Detail: decodeDetail(resp.Body)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// decodeDetail extracts the backend's error explanation from a non-2xx body
// ({"detail": "..."}), returning "" when there is none.
func decodeDetail(r io.Reader) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	return body.Detail
}
