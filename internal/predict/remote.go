package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type remoteRequest struct {
	Features map[string]float64 `json:"features"`
}

type remoteResponse struct {
	Label *float64 `json:"label"`
}

// RemoteClassifier calls an external inference service that hosts the model.
type RemoteClassifier struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemoteClassifier(baseURL string, timeout time.Duration) *RemoteClassifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteClassifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *RemoteClassifier) Name() string {
	return "remote:" + c.baseURL
}

func (c *RemoteClassifier) Predict(ctx context.Context, rec Record) (Label, error) {
	body, err := json.Marshal(remoteRequest{Features: rec.Map()})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("inference service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if out.Label == nil {
		return 0, fmt.Errorf("decode response: missing label")
	}
	return Label(*out.Label), nil
}
