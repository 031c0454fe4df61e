package article

import (
	"context"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/SergeyParamoshkin/folio/internal/model"
	"github.com/SergeyParamoshkin/folio/internal/session"
)

// CommentDraft is a visitor-submitted comment before it is stored.
type CommentDraft struct {
	AuthorName string
	Text       string
}

func (s *Service) countComment(ctx context.Context, op string, coll model.Collection, err error) {
	s.commentCount.Add(ctx, 1, metric.WithAttributes(
		collAttr(coll),
		attribute.String("op", op),
		attribute.String("outcome", outcome(err)),
	))
}

// AddComment appends a comment to a. Blank text is rejected without a
// write; a blank author is stored as model.AnonymousAuthor. The store sets
// the id and the creation time.
func (s *Service) AddComment(ctx context.Context, a *model.Article, d CommentDraft) (c *model.Comment, err error) {
	ctx, span := s.tracer.Start(ctx, "article.AddComment", trace.WithAttributes(collAttr(a.Collection)))
	defer func() {
		s.countComment(ctx, "add", a.Collection, err)
		endSpan(span, err)
	}()

	text := strings.TrimSpace(d.Text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	author := strings.TrimSpace(d.AuthorName)
	if author == "" {
		author = model.AnonymousAuthor
	}

	c, err = s.store.InsertComment(ctx, &model.Comment{
		Collection: a.Collection,
		ArticleID:  a.ID,
		AuthorName: author,
		Text:       text,
	})
	if err != nil {
		s.log.Errorw("comment insert failed", "article", a.ID, "error", err)

		return nil, wrap(ErrMutation, err)
	}

	return c, nil
}

// ListComments returns the comments of a, newest first.
func (s *Service) ListComments(ctx context.Context, a *model.Article) ([]*model.Comment, error) {
	ctx, span := s.tracer.Start(ctx, "article.ListComments", trace.WithAttributes(collAttr(a.Collection)))

	comments, err := s.store.ListComments(ctx, a.Collection, a.ID)
	if err != nil {
		s.log.Errorw("comment list failed", "article", a.ID, "error", err)
		err = wrap(ErrRetrieval, err)
		endSpan(span, err)

		return nil, err
	}
	endSpan(span, nil)

	slices.SortStableFunc(comments, func(x, y *model.Comment) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})

	return comments, nil
}

// DeleteComment removes a comment for good. The session is checked before
// anything is sent to the store.
func (s *Service) DeleteComment(ctx context.Context, sess *session.Session, a *model.Article, commentID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "article.DeleteComment", trace.WithAttributes(collAttr(a.Collection)))
	defer func() {
		s.countComment(ctx, "delete", a.Collection, err)
		endSpan(span, err)
	}()

	if sess == nil {
		return ErrUnauthorized
	}

	if err := s.store.DeleteComment(ctx, a.Collection, a.ID, commentID); err != nil {
		s.log.Errorw("comment delete failed", "article", a.ID, "comment", commentID, "error", err)

		return wrap(ErrMutation, err)
	}
	s.log.Infow("comment deleted", "article", a.ID, "comment", commentID, "by", sess.Email)

	return nil
}
