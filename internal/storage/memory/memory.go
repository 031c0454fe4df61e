// Package memory is an in-process article store, used in development and
// tests. It keeps the same ordering and id rules as the postgres store.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SergeyParamoshkin/folio/internal/model"
)

type articleRow struct {
	*model.Article
	seq uint64
}

type commentRow struct {
	*model.Comment
	seq uint64
}

// Store keeps articles and comments per collection behind one mutex.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	seq      uint64
	articles map[model.Collection]map[string]*articleRow
	comments map[model.Collection]map[string][]*commentRow
}

type Option func(*Store)

// WithClock overrides the time source used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:      func() time.Time { return time.Now().UTC() },
		articles: make(map[model.Collection]map[string]*articleRow),
		comments: make(map[model.Collection]map[string][]*commentRow),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) nextSeq() uint64 {
	s.seq++

	return s.seq
}

func (s *Store) Get(_ context.Context, coll model.Collection, id string) (*model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.articles[coll][id]
	if !ok {
		return nil, model.ErrNoRecord
	}

	return row.Clone(), nil
}

func (s *Store) FindBySlug(_ context.Context, coll model.Collection, slug string) ([]*model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*articleRow
	for _, row := range s.articles[coll] {
		if row.Slug == slug {
			rows = append(rows, row)
		}
	}
	// Store order is insertion order.
	slices.SortFunc(rows, func(x, y *articleRow) int { return cmp.Compare(x.seq, y.seq) })

	out := make([]*model.Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Clone())
	}

	return out, nil
}

func (s *Store) List(_ context.Context, coll model.Collection, limit int) ([]*model.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]*articleRow, 0, len(s.articles[coll]))
	for _, row := range s.articles[coll] {
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(x, y *articleRow) int {
		if c := y.CreatedAt.Compare(x.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(y.seq, x.seq)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]*model.Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Clone())
	}

	return out, nil
}

func (s *Store) Insert(_ context.Context, a *model.Article) (*model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := a.Clone()
	row.ID = uuid.NewString()
	row.LikesCount = 0
	row.CreatedAt = s.now()
	row.UpdatedAt = row.CreatedAt
	s.put(row)

	return row.Clone(), nil
}

// PutArticle stores a as given, keeping its id, counter and timestamps.
// It replaces any article with the same id.
func (s *Store) PutArticle(_ context.Context, a *model.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(a.Clone())

	return nil
}

func (s *Store) put(a *model.Article) {
	if s.articles[a.Collection] == nil {
		s.articles[a.Collection] = make(map[string]*articleRow)
	}
	s.articles[a.Collection][a.ID] = &articleRow{Article: a, seq: s.nextSeq()}
}

func (s *Store) Update(_ context.Context, a *model.Article) (*model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.articles[a.Collection][a.ID]
	if !ok {
		return nil, model.ErrNoRecord
	}
	row.Title = a.Title
	row.Body = a.Body
	row.Excerpt = a.Excerpt
	row.ImageURL = a.ImageURL
	row.VideoURL = a.VideoURL
	row.ProjectURL = a.ProjectURL
	row.UpdatedAt = s.now()

	return row.Clone(), nil
}

func (s *Store) Delete(_ context.Context, coll model.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[coll][id]; !ok {
		return model.ErrNoRecord
	}
	delete(s.articles[coll], id)

	return nil
}

func (s *Store) IncrementLikes(_ context.Context, coll model.Collection, id string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.articles[coll][id]
	if !ok {
		return 0, model.ErrNoRecord
	}
	row.LikesCount += delta

	return row.LikesCount, nil
}

func (s *Store) InsertComment(_ context.Context, c *model.Comment) (*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := c.Clone()
	row.ID = uuid.NewString()
	row.CreatedAt = s.now()
	s.putComment(row)

	return row.Clone(), nil
}

// PutComment stores c as given, keeping its id and timestamp.
func (s *Store) PutComment(_ context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putComment(c.Clone())

	return nil
}

func (s *Store) putComment(c *model.Comment) {
	if s.comments[c.Collection] == nil {
		s.comments[c.Collection] = make(map[string][]*commentRow)
	}
	s.comments[c.Collection][c.ArticleID] = append(s.comments[c.Collection][c.ArticleID],
		&commentRow{Comment: c, seq: s.nextSeq()})
}

func (s *Store) ListComments(_ context.Context, coll model.Collection, articleID string) ([]*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := slices.Clone(s.comments[coll][articleID])
	slices.SortFunc(rows, func(x, y *commentRow) int {
		if c := y.CreatedAt.Compare(x.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(y.seq, x.seq)
	})

	out := make([]*model.Comment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Clone())
	}

	return out, nil
}

func (s *Store) DeleteComment(_ context.Context, coll model.Collection, articleID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.comments[coll][articleID]
	if len(rows) == 0 {
		return nil
	}
	s.comments[coll][articleID] = slices.DeleteFunc(rows, func(row *commentRow) bool {
		return row.ID == commentID
	})

	return nil
}
