package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"goaltrack-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	c := NewClient(&config.LLMConfig{
		BaseURL:      baseURL,
		APIKey:       "test-key",
		DefaultModel: "test-model",
		Timeout:      5 * time.Second,
	})
	// Millisecond schedule so retry tests run fast
	c.backoff = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	return c
}

func chatBody(content string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return body
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, chatPath, r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write(chatBody(`{"op":"sum","column":"amount"}`))
	}))
	defer server.Close()

	got, err := testClient(server.URL).Generate(context.Background(), "test-model", "prompt")

	require.NoError(t, err)
	assert.Equal(t, `{"op":"sum","column":"amount"}`, got)
}

func TestGenerate_RetriesOnRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(chatBody("answer"))
	}))
	defer server.Close()

	got, err := testClient(server.URL).Generate(context.Background(), "test-model", "prompt")

	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls), "two rate-limited attempts then success")
}

func TestGenerate_OverloadedAfterRetryBudget(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Generate(context.Background(), "test-model", "prompt")

	assert.ErrorIs(t, err, ErrOverloaded)
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls), "initial attempt plus three retries")
}

func TestGenerate_NoRetryOnOtherFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Generate(context.Background(), "test-model", "prompt")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrOverloaded)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "non-overload failures surface immediately")
}

func TestGenerate_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := testClient(server.URL)
	c.backoff = []time.Duration{time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := c.Generate(ctx, "test-model", "prompt")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveModel_PrefersConfiguredDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, modelsPath, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{
				{"id": "other-model"},
				{"id": "test-model"},
			},
		})
	}))
	defer server.Close()

	got := testClient(server.URL).ResolveModel(context.Background())

	assert.Equal(t, "test-model", got)
}

func TestResolveModel_FallsBackToFirstListed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{
				{"id": "variant-a"},
				{"id": "variant-b"},
			},
		})
	}))
	defer server.Close()

	got := testClient(server.URL).ResolveModel(context.Background())

	assert.Equal(t, "variant-a", got)
}

func TestResolveModel_DefaultOnListingFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	got := testClient(server.URL).ResolveModel(context.Background())

	assert.Equal(t, "test-model", got, "listing failure falls back to the configured identifier")
}
