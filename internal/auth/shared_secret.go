package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
)

// SecretHeader is the request header carrying the shared secret.
const SecretHeader = "X-Fcstore-Secret"

type SharedSecretAuthEngine struct {
	Secret string
}

// NewSharedSecretAuthEngine creates a new SharedSecretAuthEngine that accepts
// requests whose SecretHeader equals secret.
func NewSharedSecretAuthEngine(secret string) *SharedSecretAuthEngine {
	return &SharedSecretAuthEngine{
		Secret: secret,
	}
}

// AuthenticateRequest compares the SecretHeader against the configured
// secret. A missing header never matches.
func (e *SharedSecretAuthEngine) AuthenticateRequest(ctx context.Context, r *http.Request) (bool, error) {
	values, ok := r.Header[SecretHeader]
	if !ok || len(values) == 0 {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(values[0]), []byte(e.Secret)) == 1, nil
}

// OpenAuthEngine accepts every request.
type OpenAuthEngine struct{}

func NewOpenAuthEngine() *OpenAuthEngine {
	return &OpenAuthEngine{}
}

func (e *OpenAuthEngine) AuthenticateRequest(ctx context.Context, r *http.Request) (bool, error) {
	return true, nil
}
