package article

import (
	"context"
	"errors"
	"strings"

	"github.com/SergeyParamoshkin/folio/internal/content"
	"github.com/SergeyParamoshkin/folio/internal/model"
	"github.com/SergeyParamoshkin/folio/internal/session"
	"github.com/SergeyParamoshkin/folio/internal/slug"
)

// List returns up to limit articles of coll, newest first; limit <= 0
// means all.
func (s *Service) List(ctx context.Context, coll model.Collection, limit int) ([]*model.Article, error) {
	list, err := s.store.List(ctx, coll, limit)
	if err != nil {
		s.log.Errorw("article list failed", "collection", coll, "error", err)

		return nil, wrap(ErrRetrieval, err)
	}

	return list, nil
}

// Latest returns the newest article of coll.
func (s *Service) Latest(ctx context.Context, coll model.Collection) (*model.Article, error) {
	list, err := s.List(ctx, coll, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}

	return list[0], nil
}

// Create stores a new article in coll from the author-editable fields of
// in. The slug is derived from the title here and never changes after.
func (s *Service) Create(ctx context.Context, sess *session.Session, coll model.Collection, in *model.Article) (*model.Article, error) {
	if sess == nil {
		return nil, ErrUnauthorized
	}

	a := &model.Article{Collection: coll}
	s.apply(a, in)
	if err := validate(a); err != nil {
		return nil, err
	}
	a.Slug = slug.Make(a.Title)

	created, err := s.store.Insert(ctx, a)
	if err != nil {
		s.log.Errorw("article insert failed", "collection", coll, "error", err)

		return nil, wrap(ErrMutation, err)
	}
	s.log.Infow("article created", "collection", coll, "id", created.ID, "slug", created.Slug, "by", sess.Email)

	return created, nil
}

// Update rewrites the author-editable fields of current with those of in.
// Slug, likes and creation time are kept.
func (s *Service) Update(ctx context.Context, sess *session.Session, current, in *model.Article) (*model.Article, error) {
	if sess == nil {
		return nil, ErrUnauthorized
	}

	a := current.Clone()
	s.apply(a, in)
	if err := validate(a); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, a)
	if errors.Is(err, model.ErrNoRecord) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Errorw("article update failed", "collection", a.Collection, "id", a.ID, "error", err)

		return nil, wrap(ErrMutation, err)
	}
	s.log.Infow("article updated", "collection", a.Collection, "id", a.ID, "by", sess.Email)

	return updated, nil
}

// Delete removes a. Its comments stay in the store.
func (s *Service) Delete(ctx context.Context, sess *session.Session, a *model.Article) error {
	if sess == nil {
		return ErrUnauthorized
	}

	err := s.store.Delete(ctx, a.Collection, a.ID)
	if errors.Is(err, model.ErrNoRecord) {
		return ErrNotFound
	}
	if err != nil {
		s.log.Errorw("article delete failed", "collection", a.Collection, "id", a.ID, "error", err)

		return wrap(ErrMutation, err)
	}
	s.log.Infow("article deleted", "collection", a.Collection, "id", a.ID, "by", sess.Email)

	return nil
}

// apply copies the author-editable fields and fills the derived ones.
func (s *Service) apply(dst, in *model.Article) {
	dst.Title = strings.TrimSpace(in.Title)
	dst.Body = in.Body
	dst.Excerpt = strings.TrimSpace(in.Excerpt)
	dst.ImageURL = strings.TrimSpace(in.ImageURL)
	dst.VideoURL = strings.TrimSpace(in.VideoURL)
	dst.ProjectURL = strings.TrimSpace(in.ProjectURL)

	if dst.Excerpt == "" {
		dst.Excerpt = s.extract.Excerpt(dst.Body, content.ExcerptLength)
	}
	if dst.ImageURL == "" {
		dst.ImageURL = content.FirstImage(dst.Body)
	}
}

func validate(a *model.Article) error {
	if a.Title == "" {
		return ErrMissingTitle
	}
	if a.Collection == model.Trabajos {
		if strings.TrimSpace(a.Body) == "" {
			return ErrMissingBody
		}
		if a.ProjectURL == "" {
			return ErrMissingProject
		}
	}

	return nil
}
