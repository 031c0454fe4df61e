package article

import (
	"context"

	"github.com/SergeyParamoshkin/folio/internal/model"
)

// Store is the document datastore the service runs on. Point lookups and
// deletes of a missing record return model.ErrNoRecord.
//
// Implementations assign ids and timestamps on insert, increment likes
// atomically, and return article and comment lists newest first.
// Comments are never removed together with their article.
type Store interface {
	Get(ctx context.Context, coll model.Collection, id string) (*model.Article, error)
	// FindBySlug returns every article carrying slug, in store order.
	FindBySlug(ctx context.Context, coll model.Collection, slug string) ([]*model.Article, error)
	// List returns at most limit articles, all of them when limit <= 0.
	List(ctx context.Context, coll model.Collection, limit int) ([]*model.Article, error)
	Insert(ctx context.Context, a *model.Article) (*model.Article, error)
	// Update rewrites the author-editable fields and UpdatedAt.
	Update(ctx context.Context, a *model.Article) (*model.Article, error)
	Delete(ctx context.Context, coll model.Collection, id string) error
	// IncrementLikes adds delta to the counter in one atomic step and
	// returns the new value.
	IncrementLikes(ctx context.Context, coll model.Collection, id string, delta int64) (int64, error)

	InsertComment(ctx context.Context, c *model.Comment) (*model.Comment, error)
	ListComments(ctx context.Context, coll model.Collection, articleID string) ([]*model.Comment, error)
	// DeleteComment succeeds when the comment is already gone.
	DeleteComment(ctx context.Context, coll model.Collection, articleID, commentID string) error
}
