package inspector

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// tokenAuth checks the shared inspector token. An empty token disables the check.
type tokenAuth struct {
	token string
}

func (a tokenAuth) authorize(r *http.Request) error {
	if a.token == "" {
		return nil
	}
	got := r.URL.Query().Get("token")
	if got == "" {
		got = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(a.token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
