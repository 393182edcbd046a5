package middleware

import (
	"crypto/subtle"
	"net/http"
)

// SecretHeader is the header fallback for clients that cannot put the
// shared secret into the form body.
const SecretHeader = "X-Facegate-Secret"

// maxAuthFormMemory bounds the in-memory portion of multipart parsing done
// while extracting the secret; larger uploads spill to disk.
const maxAuthFormMemory = 32 << 20

// RequireSecret is middleware that rejects requests which do not carry the
// shared secret. The secret is read from the "secret" form field (multipart
// or urlencoded) with the SecretHeader header as fallback. Comparison is
// constant-time.
func RequireSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secretMatches(r, secret) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message": "unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func secretMatches(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}

	provided := formSecret(r)
	if provided == "" {
		provided = r.Header.Get(SecretHeader)
	}
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1
}

// formSecret extracts the "secret" form field without consuming the request
// for downstream handlers; ParseMultipartForm caches the parsed form on the
// request, so handlers re-parsing it get the cached result.
func formSecret(r *http.Request) string {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return r.URL.Query().Get("secret")
	}
	if err := r.ParseMultipartForm(maxAuthFormMemory); err != nil && err != http.ErrNotMultipart {
		return ""
	}
	return r.FormValue("secret")
}
