package article

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/SergeyParamoshkin/folio/internal/model"
)

// Resolve maps a human-facing identifier to one article of coll.
//
// The identifier is tried as an id first; only when no article has that id
// is it matched against slugs, and the first slug match wins. An id match
// is returned even if another article uses the same string as its slug.
func (s *Service) Resolve(ctx context.Context, coll model.Collection, identifier string) (a *model.Article, err error) {
	ctx, span := s.tracer.Start(ctx, "article.Resolve", trace.WithAttributes(collAttr(coll)))
	match := "none"
	defer func() {
		s.resolveCount.Add(ctx, 1, metric.WithAttributes(
			collAttr(coll),
			attribute.String("outcome", outcome(err)),
			attribute.String("match", match),
		))
		endSpan(span, err)
	}()

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrNotFound
	}

	a, err = s.store.Get(ctx, coll, identifier)
	switch {
	case err == nil:
		match = "id"

		return a, nil
	case !errors.Is(err, model.ErrNoRecord):
		s.log.Errorw("article lookup by id failed", "collection", coll, "identifier", identifier, "error", err)

		return nil, wrap(ErrRetrieval, err)
	}

	matches, err := s.store.FindBySlug(ctx, coll, identifier)
	if err != nil {
		s.log.Errorw("article lookup by slug failed", "collection", coll, "identifier", identifier, "error", err)

		return nil, wrap(ErrRetrieval, err)
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	if len(matches) > 1 {
		s.log.Warnw("slug shared by several articles, using the first",
			"collection", coll, "slug", identifier, "matches", len(matches))
	}
	match = "slug"

	return matches[0], nil
}
