package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrConfigMissing means the service credential is absent. This is a
// deployment defect, never retried and never silently degraded.
var ErrConfigMissing = errors.New("translation service credential not configured")

// ServiceError carries the upstream status and detail of a failed
// translation call, including a response whose shape does not match the
// request.
type ServiceError struct {
	Status int
	Detail string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("translation service error (status %d): %s", e.Status, e.Detail)
}

// Client talks to a DeepL-style batch translation endpoint.
type Client struct {
	apiKey  string
	baseURL string
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type translateRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
}

type translateResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// Translate submits one ordered batch. The response must contain exactly
// one result per input in the same order, or the whole batch fails.
func (c *Client) Translate(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	if c.apiKey == "" {
		return nil, ErrConfigMissing
	}
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(translateRequest{
		Text:       texts,
		TargetLang: strings.ToUpper(targetLang),
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v2/translate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, &ServiceError{Status: 0, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, &ServiceError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(b))}
	}

	var parsed translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &ServiceError{Status: resp.StatusCode, Detail: "malformed response: " + err.Error()}
	}
	if len(parsed.Translations) != len(texts) {
		return nil, &ServiceError{
			Status: resp.StatusCode,
			Detail: fmt.Sprintf("expected %d translations, got %d", len(texts), len(parsed.Translations)),
		}
	}

	out := make([]string, len(texts))
	for i, tr := range parsed.Translations {
		out[i] = tr.Text
	}
	return out, nil
}
