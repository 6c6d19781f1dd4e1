package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lilo-planner/internal/model"
)

func newStubGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewGeminiClient("test-key", "gemini-test")
	c.baseURL = srv.URL
	return c
}

func candidateBody(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"role": "model", "parts": []map[string]string{{"text": text}}}},
		},
	}
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func TestClassifyAndExtractParsesCandidate(t *testing.T) {
	extraction := `{"shouldCreateTask":true,"task":{"title":"Call mom","date":"2025-03-03","time":"17:00","repeat":"one-time","priority":"medium"}}`
	client := newStubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)

		w.Write([]byte(candidateBody(extraction)))
	})

	result, err := client.ClassifyAndExtract(context.Background(), "remind me to call mom tomorrow at 5pm")
	require.NoError(t, err)
	assert.True(t, result.ShouldCreateTask)
	require.NotNil(t, result.Task)
	assert.Equal(t, "Call mom", result.Task.Title)
	assert.Equal(t, "2025-03-03", result.Task.Date)
}

func TestClassifyAndExtractNoTask(t *testing.T) {
	client := newStubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateBody(`{"shouldCreateTask":false}`)))
	})

	result, err := client.ClassifyAndExtract(context.Background(), "how are you?")
	require.NoError(t, err)
	assert.False(t, result.ShouldCreateTask)
	assert.Nil(t, result.Task)
}

func TestConverseReturnsReply(t *testing.T) {
	client := newStubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.SystemInstruction)
		assert.Contains(t, req.SystemInstruction.Parts[0].Text, "Existing task")

		w.Write([]byte(candidateBody("Block an hour after lunch.")))
	})

	reply, err := client.Converse(context.Background(), "when should I study?",
		[]model.Task{{Title: "Existing task", Date: "2025-03-02"}})
	require.NoError(t, err)
	assert.Equal(t, "Block an hour after lunch.", reply)
}

func TestGeminiMissingKey(t *testing.T) {
	client := NewGeminiClient("", "gemini-test")

	_, err := client.ClassifyAndExtract(context.Background(), "hi")
	assert.ErrorIs(t, err, model.ErrOracleUnavailable)

	_, err = client.Converse(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, model.ErrOracleUnavailable)
}

func TestGeminiAPIErrorWrapped(t *testing.T) {
	client := newStubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := client.Converse(context.Background(), "hi", nil)
	require.ErrorIs(t, err, model.ErrOracleFailure)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGeminiMalformedExtraction(t *testing.T) {
	client := newStubGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateBody("not json at all")))
	})

	_, err := client.ClassifyAndExtract(context.Background(), "hm")
	assert.ErrorIs(t, err, model.ErrOracleFailure)
}
