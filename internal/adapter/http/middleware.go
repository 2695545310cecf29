package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/config"
	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware tags each request with an id, exposed in the
// X-Request-ID header and carried in the request context.
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := "req-" + uuid.NewString()
			w.Header().Set("X-Request-ID", requestID)
			r = r.WithContext(logger.WithRequestID(r.Context(), requestID))

			log.Debug("http_request", fmt.Sprintf("%s %s", r.Method, r.URL.Path), requestID, map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			})

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.Debug("http_response", "Request completed", requestID, map[string]interface{}{
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

func RecoveryMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("panic_recovered", "Panic recovered", logger.RequestID(r.Context()), nil, fmt.Errorf("%v", err))
					respondError(w, "Internal server error", http.StatusInternalServerError, nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func CORSMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", CartSessionHeader},
		ExposedHeaders:   []string{"X-Request-ID", CartSessionHeader},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	})
	return c.Handler
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows each client IP cfg.Requests per cfg.Window with bursts
// of cfg.Burst.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(cfg.Window / time.Duration(cfg.Requests)),
		burst:    cfg.Burst,
		window:   cfg.Window,
		now:      time.Now,
	}
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.window {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.window {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			respondError(w, "Too many requests from this IP, please try again later.", http.StatusTooManyRequests, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenParser verifies bearer tokens.
type TokenParser interface {
	ParseToken(token string) (*interfaces.Claims, error)
}

type claimsKey struct{}

// ClaimsFrom returns the verified claims stored by RequireAuth.
func ClaimsFrom(ctx context.Context) (*interfaces.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*interfaces.Claims)
	return c, ok
}

func RequireAuth(tokens TokenParser, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			respondError(w, "missing or invalid token", http.StatusUnauthorized, nil)
			return
		}
		claims, err := tokens.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			respondError(w, "invalid token", http.StatusUnauthorized, nil)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	}
}

func RequireAdmin(tokens TokenParser, next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(tokens, func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFrom(r.Context())
		if claims.Role != domain.RoleAdmin {
			respondError(w, "forbidden", http.StatusForbidden, nil)
			return
		}
		next(w, r)
	})
}
