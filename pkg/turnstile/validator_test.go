package turnstile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyWithoutSecretAcceptsAll(t *testing.T) {
	v := NewValidator("")
	assert.False(t, v.Enabled())
	resp, err := v.Verify(context.Background(), "", "")
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestVerifyMissingToken(t *testing.T) {
	v := NewValidator("secret", WithVerifyURL("http://127.0.0.1:0"))
	resp, err := v.Verify(context.Background(), "", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, []string{"missing-input-response"}, resp.ErrorCodes)
}

func TestVerifyPostsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.PostForm.Get("secret"))
		assert.Equal(t, "1.2.3.4", r.PostForm.Get("remoteip"))
		ok := r.PostForm.Get("response") == "good"
		_ = json.NewEncoder(w).Encode(VerifyResponse{Success: ok, Hostname: "example.com"})
	}))
	defer srv.Close()

	v := NewValidator("secret", WithVerifyURL(srv.URL))
	resp, err := v.Verify(context.Background(), "good", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "example.com", resp.Hostname)

	resp, err = v.Verify(context.Background(), "bad", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestVerifyUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewValidator("secret", WithVerifyURL(srv.URL)).Verify(context.Background(), "tok", "")
	assert.Error(t, err)
}
