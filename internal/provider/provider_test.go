package provider_test

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/MykalMachon/skilled-agent/internal/provider"
)

func TestFromEnv_DefaultsToAnthropic(t *testing.T) {
	t.Setenv(provider.EnvBackend, "")
	t.Setenv(provider.EnvModel, "")
	b, err := provider.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if _, ok := b.(*provider.AnthropicBackend); !ok {
		t.Fatalf("expected AnthropicBackend, got %T", b)
	}
}

func TestFromEnv_SelectsOpenAI(t *testing.T) {
	t.Setenv(provider.EnvBackend, "openai")
	b, err := provider.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if _, ok := b.(*provider.OpenAIBackend); !ok {
		t.Fatalf("expected OpenAIBackend, got %T", b)
	}
}

func TestFromEnv_SelectorIsCaseInsensitive(t *testing.T) {
	t.Setenv(provider.EnvBackend, " Anthropic ")
	if _, err := provider.FromEnv(); err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
}

func TestFromEnv_UnknownSelectorIsConfigFault(t *testing.T) {
	t.Setenv(provider.EnvBackend, "palm")
	_, err := provider.FromEnv()
	if err == nil || !strings.Contains(err.Error(), "unknown") {
		t.Fatalf("expected config fault, got %v", err)
	}
}

// Shared HTTP fakes for the backend tests.

type capture struct {
	method string
	url    string
	body   []byte
}

type fakeTransport struct {
	respStatus  int
	respBody    []byte
	contentType string
	captured    *capture
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.method = req.Method
		f.captured.url = req.URL.String()
		f.captured.body = b
	}
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
	}
	ct := f.contentType
	if ct == "" {
		ct = "application/json"
	}
	resp.Header.Set("Content-Type", ct)
	return resp, nil
}
