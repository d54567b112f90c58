package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/exitflow/internal/errors"
	"github.com/allisson/exitflow/internal/httputil"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = time.Hour
)

// limiterKey identifies a bucket. User ids are only unique inside a tenant database.
type limiterKey struct {
	tenantID string
	userID   uuid.UUID
}

type actorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// actorLimiters hands out one token bucket per tenant user.
type actorLimiters struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	buckets map[limiterKey]*actorLimiter
}

func newActorLimiters(rps float64, burst int) *actorLimiters {
	return &actorLimiters{
		rps:     rate.Limit(rps),
		burst:   burst,
		buckets: make(map[limiterKey]*actorLimiter),
	}
}

// reserve takes a token for key. It returns zero when the request may proceed, otherwise
// the wait until a token is available.
func (l *actorLimiters) reserve(key limiterKey, now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &actorLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = bucket
	}
	bucket.lastSeen = now

	if bucket.limiter.AllowN(now, 1) {
		return 0
	}
	reservation := bucket.limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	reservation.CancelAt(now)
	if delay <= 0 || delay == rate.InfDuration {
		delay = time.Second
	}
	return delay
}

// sweep drops buckets idle since before cutoff.
func (l *actorLimiters) sweep(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, bucket := range l.buckets {
		if bucket.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

func (l *actorLimiters) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.sweep(now.Add(-limiterIdleTTL))
		}
	}
}

// RateLimitMiddleware limits each authenticated actor to rps requests per second with the
// given burst. It must run after AuthenticationMiddleware. Idle buckets are swept until ctx
// is done.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	limiters := newActorLimiters(rps, burst)
	go limiters.run(ctx, limiterSweepInterval)

	return func(c *gin.Context) {
		actor, ok := GetActor(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no authenticated actor in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		delay := limiters.reserve(limiterKey{tenantID: actor.TenantID, userID: actor.UserID}, time.Now())
		if delay == 0 {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(delay.Seconds()))
		logger.Debug("rate limit exceeded",
			slog.String("tenant_id", actor.TenantID),
			slog.String("user_id", actor.UserID.String()),
			slog.Int("retry_after", retryAfter))

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorResponse{
			Error:   "rate_limit_exceeded",
			Message: "Too many requests, retry after the delay in the Retry-After header",
		})
	}
}
