package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/craftfolio/craftfolio/internal/config"
	"github.com/craftfolio/craftfolio/internal/ctxkeys"
)

// SecurityHeaders sets CSP and the usual hardening headers. Scripts need
// the request nonce; images may come from the backend's object store;
// frames only from Google Drive previews.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy(r))
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		cfg := ctxkeys.Config(r.Context())
		if cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func contentSecurityPolicy(r *http.Request) string {
	scriptSrc := "'self'"
	if nonce := GetNonce(r.Context()); nonce != "" {
		scriptSrc += fmt.Sprintf(" 'nonce-%s'", nonce)
	}

	imgSrc := []string{"'self'", "data:"}
	if cfg := ctxkeys.Config(r.Context()); cfg != nil {
		if cfg.SupabaseURL != "" {
			imgSrc = append(imgSrc, cfg.SupabaseURL)
		}
		if cfg.S3PublicURL != "" {
			imgSrc = append(imgSrc, publicOrigin(cfg.S3PublicURL))
		} else if cfg.S3Endpoint != "" {
			imgSrc = append(imgSrc, strings.TrimSuffix(cfg.S3Endpoint, "/"))
		} else if cfg.Backend == config.BackendLocal {
			imgSrc = append(imgSrc, "https://*.amazonaws.com")
		}
	}

	return strings.Join([]string{
		"default-src 'self'",
		"script-src " + scriptSrc,
		"style-src 'self' 'unsafe-inline'",
		"img-src " + strings.Join(imgSrc, " "),
		"frame-src https://drive.google.com",
		"form-action 'self'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
	}, "; ")
}

// publicOrigin trims a base URL down to scheme and host for CSP.
func publicOrigin(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimSuffix(base, "/")
	}
	return u.Scheme + "://" + u.Host
}
