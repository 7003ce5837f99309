package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reconpipe/internal/platform/errors"
	"reconpipe/internal/platform/logx"
)

func TestNew(t *testing.T) {
	t.Run("applies defaults for zero values", func(t *testing.T) {
		client := New(Config{}, logx.Nop())

		assert.Equal(t, 5*time.Second, client.Timeout())
		assert.Equal(t, DefaultUserAgent, client.config.UserAgent)
		assert.Nil(t, client.rateLimiter)
	})

	t.Run("creates rate limiter when configured", func(t *testing.T) {
		client := New(Config{RateLimit: 10}, logx.Nop())

		assert.NotNil(t, client.rateLimiter)
	})
}

func TestGet_SendsUserAgentAndReadsResponse(t *testing.T) {
	var gotUA, gotExtra string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotExtra = r.Header.Get("X-Extra")
		w.Header().Set("Server", "nginx")
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "1"})
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	client := New(DefaultConfig(), logx.Nop())
	resp, err := client.Get(context.Background(), srv.URL, map[string]string{"X-Extra": "1"})

	require.NoError(t, err)
	assert.Equal(t, "reconpipe/1.0", gotUA)
	assert.Equal(t, "1", gotExtra)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "nginx", resp.Header.Get("Server"))
	assert.Equal(t, "hello", string(resp.Body))
	require.Len(t, resp.Cookies, 1)
	assert.Equal(t, "session", resp.Cookies[0].Name)
}

func TestGet_SelfSignedTLSAccepted(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(DefaultConfig(), logx.Nop())
	resp, err := client.Get(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGet_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(DefaultConfig(), logx.Nop())
	_, err := client.Get(context.Background(), url, nil)

	require.Error(t, err)
	assert.True(t, errors.IsNoData(err))
}

func TestGet_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client := New(Config{Timeout: 100 * time.Millisecond}, logx.Nop())
	_, err := client.Get(context.Background(), srv.URL, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTimeout))
}
