package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveCORS(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(method, "/test", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS_EmptyWhitelist(t *testing.T) {
	t.Run("cross-origin request gets no CORS headers", func(t *testing.T) {
		w := serveCORS(DefaultCORSConfig(), http.MethodGet, "http://malicious.com")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same-origin request passes through", func(t *testing.T) {
		w := serveCORS(DefaultCORSConfig(), http.MethodGet, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight still gets 204", func(t *testing.T) {
		w := serveCORS(DefaultCORSConfig(), http.MethodOptions, "http://some-origin.com")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig(t *testing.T) {
	whitelist := CORSConfig{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}

	t.Run("allows whitelisted origin", func(t *testing.T) {
		w := serveCORS(whitelist, http.MethodGet, "http://localhost:3000")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
		assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("denies unlisted origin", func(t *testing.T) {
		w := serveCORS(whitelist, http.MethodGet, "http://evil.com")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight for whitelisted origin", func(t *testing.T) {
		w := serveCORS(whitelist, http.MethodOptions, "http://localhost:3000")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight for unlisted origin gets 204 without headers", func(t *testing.T) {
		w := serveCORS(whitelist, http.MethodOptions, "http://not-allowed.com")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin without credentials header", func(t *testing.T) {
		cfg := whitelist
		cfg.AllowOrigins = []string{"*"}
		w := serveCORS(cfg, http.MethodGet, "http://anywhere.example")

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestMaxAgeHeaderFormat(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"1 hour", time.Hour, "3600"},
		{"12 hours", 12 * time.Hour, "43200"},
		{"24 hours", 24 * time.Hour, "86400"},
		{"1 minute", time.Minute, "60"},
		{"30 seconds", 30 * time.Second, "30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowOrigins = []string{"http://localhost:3000"}
			cfg.MaxAge = tt.duration

			w := serveCORS(cfg, http.MethodGet, "http://localhost:3000")
			assert.Equal(t, tt.expected, w.Header().Get("Access-Control-Max-Age"))
		})
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("generates an id when none supplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
	})

	t.Run("honors a client-supplied id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "client-id-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "client-id-1", w.Body.String())
		assert.Equal(t, "client-id-1", w.Header().Get("X-Request-ID"))
	})

	t.Run("ids are unique", func(t *testing.T) {
		w1 := httptest.NewRecorder()
		w2 := httptest.NewRecorder()
		router.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/test", nil))
		router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.NotEqual(t, w1.Body.String(), w2.Body.String())
	})
}

func TestGenerateRequestID(t *testing.T) {
	id1 := generateRequestID()
	id2 := generateRequestID()

	assert.Len(t, id1, 32) // 16 bytes hex encoded
	assert.NotEqual(t, id1, id2)
}

func serveSecure(cfg SecurityConfig) http.Header {
	router := gin.New()
	router.Use(SecureWithConfig(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	return w.Header()
}

func TestSecure(t *testing.T) {
	h := serveSecure(DefaultSecurityConfig())

	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", h.Get("X-XSS-Protection"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "default-src 'self'")
	assert.Contains(t, h.Get("Permissions-Policy"), "camera=()")
	// HSTS requires HTTPS; off by default
	assert.Empty(t, h.Get("Strict-Transport-Security"))
}

func TestSecureWithConfig(t *testing.T) {
	t.Run("hsts enabled", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.HSTSEnabled = true
		h := serveSecure(cfg)

		hsts := h.Get("Strict-Transport-Security")
		assert.Contains(t, hsts, "max-age=31536000")
		assert.Contains(t, hsts, "includeSubDomains")
		assert.NotContains(t, hsts, "preload")
	})

	t.Run("hsts with preload", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.HSTSEnabled = true
		cfg.HSTSPreload = true
		h := serveSecure(cfg)

		assert.Contains(t, h.Get("Strict-Transport-Security"), "preload")
	})

	t.Run("csp disabled", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.CSPEnabled = false
		h := serveSecure(cfg)

		assert.Empty(t, h.Get("Content-Security-Policy"))
	})

	t.Run("permissions policy disabled", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.PermissionsPolicyEnabled = false
		h := serveSecure(cfg)

		assert.Empty(t, h.Get("Permissions-Policy"))
	})
}

func TestDefaultSecurityConfig(t *testing.T) {
	cfg := DefaultSecurityConfig()

	assert.False(t, cfg.HSTSEnabled)
	assert.Equal(t, 31536000, cfg.HSTSMaxAge)
	assert.True(t, cfg.CSPEnabled)
	assert.True(t, cfg.PermissionsPolicyEnabled)
	assert.Contains(t, cfg.PermissionsPolicyDirective, "microphone=()")
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Empty(t, cfg.AllowOrigins, "DefaultCORSConfig should have empty AllowOrigins")
	assert.Contains(t, cfg.AllowMethods, "GET")
	assert.Contains(t, cfg.AllowMethods, "POST")
	assert.Contains(t, cfg.AllowHeaders, "Content-Type")
	assert.Contains(t, cfg.AllowHeaders, "Authorization")
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestTimeout(t *testing.T) {
	router := gin.New()
	router.Use(Timeout(30 * time.Second))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "30s", w.Header().Get("X-Request-Timeout"))
}
