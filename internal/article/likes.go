package article

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/SergeyParamoshkin/folio/internal/model"
)

// LikeKey is the member stored in a visitor's like-set for a.
func LikeKey(a *model.Article) string {
	return a.Collection.String() + ":" + a.ID
}

// HasLiked reports whether the visitor's like-set already holds a.
func (s *Service) HasLiked(ctx context.Context, visitorID string, a *model.Article) (bool, error) {
	if visitorID == "" {
		return false, nil
	}
	ok, err := s.likes.Contains(ctx, visitorID, LikeKey(a))
	if err != nil {
		return false, wrap(ErrRetrieval, err)
	}

	return ok, nil
}

// Like records one like of a by the visitor and returns the new counter.
//
// A visitor whose like-set already holds the article gets ErrAlreadyLiked
// and the counter is left alone. The counter is bumped with the store's
// atomic increment before the like-set is updated, so a failed increment
// leaves no trace. Idempotency only holds per visitor id: a visitor that
// lost its id can like again.
func (s *Service) Like(ctx context.Context, visitorID string, a *model.Article) (count int64, err error) {
	ctx, span := s.tracer.Start(ctx, "article.Like", trace.WithAttributes(collAttr(a.Collection)))
	defer func() {
		s.likeCount.Add(ctx, 1, metric.WithAttributes(
			collAttr(a.Collection),
			attribute.String("outcome", outcome(err)),
		))
		endSpan(span, err)
	}()

	if visitorID == "" {
		return 0, ErrUnknownVisitor
	}

	liked, err := s.HasLiked(ctx, visitorID, a)
	if err != nil {
		s.log.Errorw("like-set lookup failed", "article", a.ID, "error", err)

		return 0, err
	}
	if liked {
		return 0, ErrAlreadyLiked
	}

	count, err = s.store.IncrementLikes(ctx, a.Collection, a.ID, 1)
	if errors.Is(err, model.ErrNoRecord) {
		return 0, ErrNotFound
	}
	if err != nil {
		s.log.Errorw("like increment failed", "collection", a.Collection, "article", a.ID, "error", err)

		return 0, wrap(ErrMutation, err)
	}

	if err := s.likes.Add(ctx, visitorID, LikeKey(a)); err != nil {
		s.log.Warnw("like counted but not remembered for visitor",
			"article", a.ID, "visitor", visitorID, "error", err)
	}

	return count, nil
}
