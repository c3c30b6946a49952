package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fcstore/internal/auth"

	"github.com/stretchr/testify/require"
)

const SharedSecret = "s3cr3t"

func TestSharedSecret_Succeeds(t *testing.T) {
	t.Parallel()

	e := auth.NewSharedSecretAuthEngine(SharedSecret)

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "http://example.com/logs", nil)
	req.Header.Set("x-fcstore-secret", SharedSecret)

	ok, err := e.AuthenticateRequest(t.Context(), req)
	require.NoError(t, err)
	require.True(t, ok, "expected matching secret to authenticate")
}

func TestSharedSecret_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header map[string]string
	}{
		{name: "missing header", header: nil},
		{name: "wrong secret", header: map[string]string{"x-fcstore-secret": "nope"}},
		{name: "empty secret", header: map[string]string{"x-fcstore-secret": ""}},
		{name: "prefix of secret", header: map[string]string{"x-fcstore-secret": SharedSecret[:3]}},
		{name: "other header", header: map[string]string{"Authorization": SharedSecret}},
	}

	e := auth.NewSharedSecretAuthEngine(SharedSecret)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "http://example.com/", nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}

			ok, err := e.AuthenticateRequest(t.Context(), req)
			require.NoError(t, err)
			require.False(t, ok, "expected request to be rejected")
		})
	}
}

func TestNewAuthEngine_EmptySecretIsOpen(t *testing.T) {
	t.Parallel()

	e := auth.NewAuthEngine("")
	require.IsType(t, &auth.OpenAuthEngine{}, e)

	req := httptest.NewRequestWithContext(t.Context(), http.MethodPost, "http://example.com/logs", nil)
	ok, err := e.AuthenticateRequest(t.Context(), req)
	require.NoError(t, err)
	require.True(t, ok, "open engine should accept requests without a secret")
}

func TestNewAuthEngine_WithSecret(t *testing.T) {
	t.Parallel()

	e := auth.NewAuthEngine(SharedSecret)
	require.IsType(t, &auth.SharedSecretAuthEngine{}, e)
}
