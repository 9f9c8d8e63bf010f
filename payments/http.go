package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// APIError is a non-2xx answer from a payment backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment backend returned %d: %s", e.Status, e.Message)
}

type jsonClient struct {
	baseURL    string
	httpClient *http.Client
}

func newJSONClient(baseURL string) jsonClient {
	return jsonClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends body as JSON (when non-nil) and returns the parsed answer.
func (c jsonClient) do(ctx context.Context, method, path string, body any) (gjson.Result, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read response: %w", err)
	}
	res := gjson.ParseBytes(raw)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := firstString(res, "error.message", "error", "message")
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return res, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return res, nil
}

func firstString(res gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := res.Get(p)
		if v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
