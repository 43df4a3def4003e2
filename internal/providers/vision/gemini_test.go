package vision

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestGenerateTextReturnsFirstCandidate(t *testing.T) {
	client, err := NewClient(Options{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			body := `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"style_category\":\"bold-aggressive\"}"}]}}]}`
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	text, err := client.GenerateText(context.Background(), Request{Instruction: "analyze the brand"})
	if err != nil {
		t.Fatalf("GenerateText returned error: %v", err)
	}
	if !strings.Contains(text, "bold-aggressive") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestGenerateTextInlinesLogo(t *testing.T) {
	var payload geminiRequest
	client, err := NewClient(Options{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			body := `{"candidates":[{"content":{"role":"model","parts":[{"text":"{}"}]}}]}`
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = client.GenerateText(context.Background(), Request{
		Instruction: "analyze",
		ImageData:   []byte{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("GenerateText returned error: %v", err)
	}
	if len(payload.Contents) != 1 || len(payload.Contents[0].Parts) != 2 {
		t.Fatalf("expected text + inline image parts, got %+v", payload.Contents)
	}
	if payload.Contents[0].Parts[1].InlineData.MIMEType != "image/png" {
		t.Fatalf("MIMEType = %q, want image/png default", payload.Contents[0].Parts[1].InlineData.MIMEType)
	}
}

func TestGenerateTextSurfacesHTTPFailure(t *testing.T) {
	client, err := NewClient(Options{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := client.GenerateText(context.Background(), Request{Instruction: "analyze"}); err == nil {
		t.Fatal("expected error from failed HTTP call")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
