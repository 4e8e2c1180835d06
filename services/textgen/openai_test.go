package textgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhubapp/studyhub/core"
)

func newTestGenerator(handler http.HandlerFunc) (*OpenAIGenerator, func()) {
	srv := httptest.NewServer(handler)
	gen := &OpenAIGenerator{
		apiKey:    "test-key",
		baseURL:   srv.URL,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
		client:    srv.Client(),
	}
	return gen, srv.Close
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		gen, closeSrv := newTestGenerator(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"gen-1","choices":[{"message":{"role":"assistant","content":"Atoms are the basic units of matter."}}]}`))
		})
		defer closeSrv()

		content, err := gen.Generate(ctx, "What is an atom?")
		require.NoError(t, err)
		assert.Equal(t, "Atoms are the basic units of matter.", content)
	})

	t.Run("UpstreamErrors", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			body   string
		}{
			{"rate limited", http.StatusTooManyRequests, `{"error":{"code":429,"message":"rate limit exceeded"}}`},
			{"bad key", http.StatusUnauthorized, `{"error":{"code":401,"message":"invalid api key"}}`},
			{"server error", http.StatusBadGateway, `upstream exploded`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				gen, closeSrv := newTestGenerator(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(tt.body))
				})
				defer closeSrv()

				_, err := gen.Generate(ctx, "What is an atom?")
				require.Error(t, err)
				extErr, ok := errors.Cause(err).(*core.ExternalServiceError)
				require.True(t, ok)
				assert.Equal(t, tt.status, extErr.StatusCode)
			})
		}
	})

	t.Run("EmptyChoices", func(t *testing.T) {
		gen, closeSrv := newTestGenerator(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"gen-2","choices":[]}`))
		})
		defer closeSrv()

		_, err := gen.Generate(ctx, "What is an atom?")
		require.Error(t, err)
		_, ok := errors.Cause(err).(*core.ExternalServiceError)
		assert.True(t, ok)
	})
}
