package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
)

// HTTPClient talks to the docstore server over its HTTP/JSON API and
// receives live snapshots over its websocket feed.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
	log     logging.Logger

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the docstore at baseURL
// (e.g. "http://127.0.0.1:8090").
func NewHTTPClient(baseURL string, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		dialer:  websocket.DefaultDialer,
		log:     log,
	}
}

// SetToken installs the bearer token attached to mutation requests.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) docURL(collection, id string) string {
	u := c.baseURL + "/api/collections/" + url.PathEscape(collection)
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("remote store: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func (c *HTTPClient) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	listURL := c.docURL(collection, "")
	if opts.OrderBy != "" {
		q := url.Values{"orderBy": {opts.OrderBy}}
		if opts.Descending {
			q.Set("dir", "desc")
		}
		listURL += "?" + q.Encode()
	}

	data, err := c.do(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}

	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decoding collection %s: %w", collection, err)
	}
	return docs, nil
}

func (c *HTTPClient) Get(ctx context.Context, collection, id string) (Document, error) {
	data, err := c.do(ctx, http.MethodGet, c.docURL(collection, id), nil)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decoding document %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (c *HTTPClient) Set(ctx context.Context, collection, id string, data RawDoc) error {
	_, err := c.do(ctx, http.MethodPut, c.docURL(collection, id), data)
	return err
}

func (c *HTTPClient) Merge(ctx context.Context, collection, id string, data RawDoc) error {
	_, err := c.do(ctx, http.MethodPatch, c.docURL(collection, id), data)
	return err
}

func (c *HTTPClient) Delete(ctx context.Context, collection, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.docURL(collection, id), nil)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return nil
}

// Subscribe dials the websocket feed for collection and pumps snapshots into
// fn from a reader goroutine until the connection drops, stop is called, or
// ctx is cancelled.
func (c *HTTPClient) Subscribe(ctx context.Context, collection string, fn func(Snapshot)) (func(), error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/feed/" + url.PathEscape(collection)

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	var once sync.Once
	stop := func() {
		once.Do(func() { _ = conn.Close() })
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	go func() {
		defer stop()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					c.log.Warn(ctx, "feed closed", "collection", collection, "error", err)
				}
				return
			}
			var snap Snapshot
			if err := json.Unmarshal(msg, &snap); err != nil {
				c.log.Warn(ctx, "dropping malformed snapshot", "collection", collection, "error", err)
				continue
			}
			fn(snap)
		}
	}()

	return stop, nil
}

// PresignUpload asks the server for a presigned S3 PUT URL. The returned key
// identifies the object once uploaded.
func (c *HTTPClient) PresignUpload(ctx context.Context, contentType string) (string, string, error) {
	body := map[string]string{"contentType": contentType}
	data, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/uploads/presign", body)
	if err != nil {
		return "", "", err
	}
	var out struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", "", fmt.Errorf("decoding presign response: %w", err)
	}
	return out.Key, out.URL, nil
}

// Login exchanges admin credentials for a bearer token and installs it on
// the client.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	data, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/auth/login", body)
	if err != nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
