package template

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/iamprecieee/distributed-notification-system/internal/apperr"
	"github.com/iamprecieee/distributed-notification-system/internal/broker"
	"github.com/iamprecieee/distributed-notification-system/internal/cache"
	"github.com/iamprecieee/distributed-notification-system/internal/models"
	"github.com/iamprecieee/distributed-notification-system/internal/repository"
)

// Catalog handles create/update/delete of templates, versioned per
// (code, language), with placeholder validation and cache/event
// propagation.
type Catalog struct {
	repo     *repository.TemplateRepository
	cache    *cache.Client
	producer *broker.Producer
	log      *zap.Logger
}

func NewCatalog(repo *repository.TemplateRepository, c *cache.Client, p *broker.Producer, log *zap.Logger) *Catalog {
	return &Catalog{repo: repo, cache: c, producer: p, log: log}
}

// Input groups the fields a caller supplies for Create/Update.
type Input struct {
	Code      string
	Language  string
	Type      string
	Content   map[string]string
	Variables []string
}

// Create inserts version 1 of (code, language). Fails Conflict if a
// row for that (code, language) already exists.
func (c *Catalog) Create(ctx context.Context, in Input) (*models.Template, error) {
	if err := validatePlaceholders(in, c.log); err != nil {
		return nil, err
	}

	existing, err := c.repo.MaxVersion(in.Code, in.Language)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed checking existing template version", err)
	}
	if existing > 0 {
		return nil, apperr.New(apperr.Conflict, "template already exists for this code and language")
	}

	t := &models.Template{
		Code:      in.Code,
		Language:  in.Language,
		Version:   1,
		Type:      in.Type,
		Content:   in.Content,
		Variables: in.Variables,
	}
	if err := c.repo.Create(t); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed creating template", err)
	}

	c.propagate(ctx, t)
	return t, nil
}

// Update writes a new version = max(existing)+1, merging last-write-wins
// over the latest row's fields.
func (c *Catalog) Update(ctx context.Context, code, language string, in Input) (*models.Template, error) {
	latest, err := c.repo.GetLatest(code, language)
	if err != nil {
		return nil, apperr.New(apperr.NotFound, "no template exists for this code and language")
	}

	merged := Input{
		Code:      code,
		Language:  language,
		Type:      latest.Type,
		Content:   mergeContent(latest.Content, in.Content),
		Variables: latest.Variables,
	}
	if in.Type != "" {
		merged.Type = in.Type
	}
	if in.Variables != nil {
		merged.Variables = in.Variables
	}

	if err := validatePlaceholders(merged, c.log); err != nil {
		return nil, err
	}

	t := &models.Template{
		Code:      code,
		Language:  language,
		Version:   latest.Version + 1,
		Type:      merged.Type,
		Content:   merged.Content,
		Variables: merged.Variables,
	}
	if err := c.repo.Create(t); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed creating template version", err)
	}

	c.propagate(ctx, t)
	return t, nil
}

// Delete removes every version of (code, language) and invalidates the
// full cache fan for it.
func (c *Catalog) Delete(ctx context.Context, code, language string) error {
	if err := c.repo.DeleteAll(code, language); err != nil {
		return apperr.Wrap(apperr.Internal, "failed deleting template", err)
	}
	c.invalidateCache(ctx, code, language)
	return nil
}

// validatePlaceholders enforces placeholders ⊆ variables. Declared but
// unused variables are a non-fatal warning.
func validatePlaceholders(in Input, log *zap.Logger) error {
	declared := make(map[string]struct{}, len(in.Variables))
	for _, v := range in.Variables {
		declared[v] = struct{}{}
	}

	used := make(map[string]struct{})
	for _, body := range in.Content {
		for _, ph := range Placeholders(body) {
			used[ph] = struct{}{}
			if _, ok := declared[ph]; !ok {
				return apperr.New(apperr.Validation,
					fmt.Sprintf("placeholder %q is not declared in variables", ph))
			}
		}
	}

	for v := range declared {
		if _, ok := used[v]; !ok {
			log.Warn("declared variable is never referenced in template content",
				zap.String("code", in.Code), zap.String("language", in.Language), zap.String("variable", v))
		}
	}
	return nil
}

func mergeContent(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// propagate invalidates the cache fan for (code, language) and announces
// the new version over the broker so other replicas drop their copies
// rather than waiting out a TTL.
func (c *Catalog) propagate(ctx context.Context, t *models.Template) {
	c.invalidateCache(ctx, t.Code, t.Language)

	event, err := json.Marshal(map[string]interface{}{
		"code":     t.Code,
		"language": t.Language,
		"version":  t.Version,
	})
	if err != nil {
		c.log.Warn("failed marshalling template.updated event", zap.Error(err))
		return
	}
	if err := c.producer.Publish(ctx, broker.RoutingKeyTemplateUpdate, event, nil); err != nil {
		c.log.Warn("failed publishing template.updated event", zap.Error(err))
	}
}

func (c *Catalog) invalidateCache(ctx context.Context, code, language string) {
	pattern := fmt.Sprintf("template:%s:%s:*", code, language)
	keys, err := c.cache.Keys(ctx, pattern)
	if err != nil {
		c.log.Warn("failed listing cache keys for invalidation", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.log.Warn("failed invalidating template cache", zap.Error(err))
	}
}
