package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var body ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nomic-embed-text", body.Model)
		assert.Equal(t, "apple earnings", body.Prompt)

		_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{3, 4}})
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "")
	resp, err := provider.Generate(context.Background(), "apple earnings", TaskRetrievalQuery)

	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, resp.Embedding.Values, 1e-6)
}

func TestOllamaProvider_GenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "").Generate(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestNormalizeVector_ZeroVector(t *testing.T) {
	assert.Equal(t, []float32{0, 0}, normalizeVector([]float32{0, 0}))
}

type countingProvider struct {
	calls int
}

func (c *countingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	c.calls++
	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: []float32{1}}}, nil
}

func TestNewRateLimited(t *testing.T) {
	inner := &countingProvider{}

	t.Run("disabled returns inner provider", func(t *testing.T) {
		assert.Same(t, inner, NewRateLimited(inner, 0))
	})

	t.Run("forwards within burst", func(t *testing.T) {
		limited := NewRateLimited(inner, 2)
		for i := 0; i < 2; i++ {
			_, err := limited.Generate(context.Background(), "x", "")
			require.NoError(t, err)
		}
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		limited := NewRateLimited(&countingProvider{}, 1)
		_, _ = limited.Generate(context.Background(), "x", "")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := limited.Generate(ctx, "x", "")
		assert.Error(t, err)
	})
}
