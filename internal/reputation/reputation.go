// Package reputation resolves reporter trust scores for risk fusion.
// Scores are read-heavy and slow-moving, so lookups go through a short
// TTL cache in front of the store.
package reputation

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/alienbuster/alienbuster-go/internal/datastore"
	"github.com/alienbuster/alienbuster-go/internal/errors"
	"github.com/alienbuster/alienbuster-go/internal/logging"
)

// DefaultScore is the neutral trust score used when a reporter is unknown
// or the report carries no user at all.
const DefaultScore = 0.5

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// Provider resolves trust scores by user ID.
type Provider struct {
	store  datastore.Interface
	cache  *cache.Cache
	logger *slog.Logger
}

// NewProvider creates a reputation provider backed by the store.
func NewProvider(store datastore.Interface) *Provider {
	return &Provider{
		store:  store,
		cache:  cache.New(cacheTTL, cacheCleanup),
		logger: logging.ForService("reputation"),
	}
}

// Score returns the trust score for the user, or DefaultScore when the
// user ID is empty or no reputation record exists. Store failures other
// than a missing record are returned so callers can decide whether to
// degrade to the default.
func (p *Provider) Score(ctx context.Context, userID string) (float64, error) {
	if userID == "" {
		return DefaultScore, nil
	}
	if cached, found := p.cache.Get(userID); found {
		return cached.(float64), nil
	}

	reporter, err := p.store.GetReporter(ctx, userID)
	if err != nil {
		if errors.Category(err) == errors.CategoryNotFound {
			p.cache.Set(userID, DefaultScore, cache.DefaultExpiration)
			return DefaultScore, nil
		}
		return DefaultScore, err
	}

	p.cache.Set(userID, reporter.Reputation, cache.DefaultExpiration)
	return reporter.Reputation, nil
}

// SetScore persists a new trust score and refreshes the cache entry.
func (p *Provider) SetScore(ctx context.Context, userID string, score float64) error {
	if userID == "" {
		return errors.Newf("user id is required").
			Component("reputation").
			Category(errors.CategoryValidation).
			Build()
	}
	if score < 0 || score > 1 {
		return errors.Newf("reputation %v out of range", score).
			Component("reputation").
			Category(errors.CategoryValidation).
			Context("user_id", userID).
			Build()
	}
	if err := p.store.SaveReporter(ctx, &datastore.Reporter{UserID: userID, Reputation: score}); err != nil {
		return err
	}
	p.cache.Set(userID, score, cache.DefaultExpiration)
	p.logger.Debug("reputation updated", "user_id", userID, "score", score)
	return nil
}

// Invalidate drops the cached score for the user.
func (p *Provider) Invalidate(userID string) {
	p.cache.Delete(userID)
}
