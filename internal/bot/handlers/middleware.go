// Package handlers contains the Telegram command and message handlers of the
// gift bot, their registration table and middleware.
package handlers

import (
	"context"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"
)

// UserLimiter keeps one token bucket per Telegram user. Buckets idle for a
// full refill window are dropped, so the map holds at most the users seen in
// the last window plus one.
type UserLimiter struct {
	mu      sync.Mutex
	buckets map[int64]*userBucket
	limit   rate.Limit
	burst   int
	idle    time.Duration
	swept   time.Time
	now     func() time.Time
}

type userBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewUserLimiter allows perMinute requests per user per minute with an equal
// burst. A non-positive perMinute returns nil, which allows everything.
func NewUserLimiter(perMinute int) *UserLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &UserLimiter{
		buckets: make(map[int64]*userBucket),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		idle:    time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether userID may make a request now.
func (l *UserLimiter) Allow(userID int64) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) >= l.idle {
		l.sweep(now)
	}

	b, ok := l.buckets[userID]
	if !ok {
		b = &userBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[userID] = b
	}
	b.seen = now

	return b.lim.AllowN(now, 1)
}

// Len returns the number of tracked users.
func (l *UserLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// A bucket untouched for idle has refilled to burst and equals a new one.
func (l *UserLimiter) sweep(now time.Time) {
	for id, b := range l.buckets {
		if now.Sub(b.seen) >= l.idle {
			delete(l.buckets, id)
		}
	}
	l.swept = now
}

// RateLimit refuses messages from users that exceeded deps.Limiter.
func RateLimit(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil || deps.Limiter.Allow(update.Message.From.ID) {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			log := deps.Logger.With("middleware", "RateLimit")
			log.WarnContext(ctx, "Rate limit exceeded", "user_id", update.Message.From.ID, "chat_id", chatID)

			if _, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID: chatID,
				Text:   deps.Config.Messages.RateLimited,
			}); err != nil {
				log.ErrorContext(ctx, "Failed to send rate limit message", "error", err, "chat_id", chatID)
			}
		}
	}
}
