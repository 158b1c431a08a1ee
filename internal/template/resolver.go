package template

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iamprecieee/distributed-notification-system/internal/apperr"
	"github.com/iamprecieee/distributed-notification-system/internal/breaker"
	"github.com/iamprecieee/distributed-notification-system/internal/cache"
	"github.com/iamprecieee/distributed-notification-system/internal/models"
	"github.com/iamprecieee/distributed-notification-system/internal/repository"
)

const (
	dbResource       = "db"
	templateCacheTTL = 3600 * time.Second
	latestVersion    = "latest"
)

// Resolver does cache-through template resolution with stale-on-break
// serving when the database circuit breaker is open.
type Resolver struct {
	cache   *cache.Client
	breaker *breaker.Breaker
	repo    *repository.TemplateRepository
	log     *zap.Logger
}

func NewResolver(c *cache.Client, b *breaker.Breaker, repo *repository.TemplateRepository, log *zap.Logger) *Resolver {
	return &Resolver{cache: c, breaker: b, repo: repo, log: log}
}

func cacheKey(code, language string, version *int) string {
	if version == nil {
		return fmt.Sprintf("template:%s:%s:%s", code, language, latestVersion)
	}
	return fmt.Sprintf("template:%s:%s:%d", code, language, *version)
}

// Resolve looks up a template by (code, language, version), falling
// back through cache, breaker, and the database in turn. version is nil
// to request the latest version.
func (r *Resolver) Resolve(ctx context.Context, code, language string, version *int) (*models.Template, error) {
	key := cacheKey(code, language, version)

	if cached, err := r.cache.Get(ctx, key); err == nil {
		var t models.Template
		if jsonErr := json.Unmarshal(cached, &t); jsonErr == nil {
			return &t, nil
		}
	} else if err != cache.ErrNotFound {
		r.log.Warn("template cache read failed", zap.Error(err), zap.String("key", key))
	}

	if !r.breaker.Allow(ctx, dbResource) {
		if stale, ok := r.newestCached(ctx, code, language); ok {
			r.log.Warn("serving stale template, db breaker open",
				zap.String("code", code), zap.String("language", language))
			return stale, nil
		}
		return nil, apperr.New(apperr.Unavailable, "template store unavailable and no cached version exists")
	}

	t, err := r.fetch(code, language, version)
	if err != nil {
		r.breaker.RecordFailure(ctx, dbResource)
		if stale, ok := r.newestCached(ctx, code, language); ok {
			r.log.Warn("serving stale template after db error",
				zap.String("code", code), zap.String("language", language), zap.Error(err))
			return stale, nil
		}
		return nil, apperr.Wrap(apperr.Unavailable, "template lookup failed", err)
	}
	r.breaker.RecordSuccess(ctx, dbResource)

	r.cacheTemplate(ctx, t)

	return t, nil
}

func (r *Resolver) fetch(code, language string, version *int) (*models.Template, error) {
	if version != nil {
		return r.repo.GetVersion(code, language, *version)
	}
	return r.repo.GetLatest(code, language)
}

// newestCached looks through every cached entry (versioned and "latest")
// of a template that fell out of reach because the store is unavailable,
// and returns the one with the highest version.
func (r *Resolver) newestCached(ctx context.Context, code, language string) (*models.Template, bool) {
	keys, err := r.cache.Keys(ctx, fmt.Sprintf("template:%s:%s:*", code, language))
	if err != nil {
		return nil, false
	}
	var newest *models.Template
	for _, key := range keys {
		cached, err := r.cache.Get(ctx, key)
		if err != nil {
			continue
		}
		var t models.Template
		if err := json.Unmarshal(cached, &t); err == nil && (newest == nil || t.Version > newest.Version) {
			newest = &t
		}
	}
	return newest, newest != nil
}

func (r *Resolver) cacheTemplate(ctx context.Context, t *models.Template) {
	data, err := json.Marshal(t)
	if err != nil {
		r.log.Warn("failed marshalling template for cache", zap.Error(err))
		return
	}
	versioned := cacheKey(t.Code, t.Language, &t.Version)
	latest := cacheKey(t.Code, t.Language, nil)
	if err := r.cache.Set(ctx, versioned, data, templateCacheTTL); err != nil {
		r.log.Warn("failed caching template version", zap.Error(err))
	}
	if err := r.cache.Set(ctx, latest, data, templateCacheTTL); err != nil {
		r.log.Warn("failed caching latest template", zap.Error(err))
	}
}
