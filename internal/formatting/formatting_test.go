package formatting_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/formatting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompts(t *testing.T) {
	assert.Equal(t, "Physical Examination", formatting.SectionTitle("physicalExamination"))
	assert.Equal(t, "custom", formatting.SectionTitle("custom"))
	assert.Contains(t, formatting.SystemPrompt("management"), "Management section")
	assert.Contains(t, formatting.SystemPrompt("management"), "DO NOT add suggestions")
	assert.Contains(t, formatting.UserPrompt("imaging", "cxr clear"), "Imaging section")
}

func TestBackend_Format(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, formatting.FormatPath, r.URL.Path)

		var req formatting.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "symptoms", req.SectionLabel)
		assert.Equal(t, "cough 3 days", req.RawText)

		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "Cough for 3 days.\n")
	}))
	defer srv.Close()

	f := formatting.NewBackend(api.New(srv.URL, nil), time.Second)

	got, err := f.Format(context.Background(), "symptoms", "cough 3 days")
	require.NoError(t, err)
	assert.Equal(t, "Cough for 3 days.", got)

	_, err = f.Format(context.Background(), "symptoms", "  \n ")
	assert.ErrorIs(t, err, formatting.ErrBlankInput)
}

func TestBackend_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"message":"model overloaded"}`)
	}))
	defer srv.Close()

	_, err := formatting.NewBackend(api.New(srv.URL, nil), 0).Format(context.Background(), "diagnosis", "asthma")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestOpenAI_Format(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, formatting.DefaultOpenAIModel, req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "bp 120/80")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"BP 120/80 mmHg."},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	f := formatting.NewOpenAI(formatting.OpenAIConfig{APIKey: "sk", BaseURL: srv.URL + "/v1"})
	got, err := f.Format(context.Background(), "physicalExamination", "bp 120/80")
	require.NoError(t, err)
	assert.Equal(t, "BP 120/80 mmHg.", got)
}

func TestOpenAI_MissingKey(t *testing.T) {
	_, err := formatting.NewOpenAI(formatting.OpenAIConfig{}).Format(context.Background(), "symptoms", "x")
	assert.ErrorIs(t, err, formatting.ErrMissingAPIKey)
}

func TestAnthropic_Format(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))

		var req struct {
			System []struct {
				Text string `json:"text"`
			} `json:"system"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.System, 1)
		assert.Contains(t, req.System[0].Text, "Diagnosis section")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5-20250929",
			"content":[{"type":"text","text":"Community-acquired pneumonia."}],
			"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`)
	}))
	defer srv.Close()

	f := formatting.NewAnthropic(formatting.AnthropicConfig{APIKey: "sk-ant", BaseURL: srv.URL + "/"})
	got, err := f.Format(context.Background(), "diagnosis", "cap")
	require.NoError(t, err)
	assert.Equal(t, "Community-acquired pneumonia.", got)
}

func TestAnthropic_MissingKey(t *testing.T) {
	_, err := formatting.NewAnthropic(formatting.AnthropicConfig{}).Format(context.Background(), "symptoms", "x")
	assert.ErrorIs(t, err, formatting.ErrMissingAPIKey)
}
