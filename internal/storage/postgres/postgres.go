// Package postgres stores articles and comments in PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SergeyParamoshkin/folio/internal/model"
)

// DB is the part of pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}

// Connect opens a pool and checks it answers.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}

const articleColumns = `id, slug, title, body, excerpt, image_url, video_url, project_url, likes_count, created_at, updated_at`

const (
	getArticleQuery = `SELECT ` + articleColumns + `
	FROM articles
	WHERE collection = $1 AND id = $2`

	findBySlugQuery = `SELECT ` + articleColumns + `
	FROM articles
	WHERE collection = $1 AND slug = $2
	ORDER BY seq`

	listArticlesQuery = `SELECT ` + articleColumns + `
	FROM articles
	WHERE collection = $1
	ORDER BY created_at DESC, seq DESC`

	insertArticleQuery = `INSERT INTO articles
	(collection, slug, title, body, excerpt, image_url, video_url, project_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + articleColumns

	putArticleQuery = `INSERT INTO articles
	(collection, id, slug, title, body, excerpt, image_url, video_url, project_url, likes_count, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (collection, id) DO UPDATE SET
		slug = EXCLUDED.slug, title = EXCLUDED.title, body = EXCLUDED.body,
		excerpt = EXCLUDED.excerpt, image_url = EXCLUDED.image_url,
		video_url = EXCLUDED.video_url, project_url = EXCLUDED.project_url,
		likes_count = EXCLUDED.likes_count, created_at = EXCLUDED.created_at,
		updated_at = EXCLUDED.updated_at`

	updateArticleQuery = `UPDATE articles
	SET title = $3, body = $4, excerpt = $5, image_url = $6, video_url = $7, project_url = $8,
		updated_at = now()
	WHERE collection = $1 AND id = $2
	RETURNING ` + articleColumns

	deleteArticleQuery = `DELETE FROM articles WHERE collection = $1 AND id = $2`

	incrementLikesQuery = `UPDATE articles
	SET likes_count = likes_count + $3
	WHERE collection = $1 AND id = $2
	RETURNING likes_count`

	insertCommentQuery = `INSERT INTO comments (collection, article_id, author_name, text)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at`

	putCommentQuery = `INSERT INTO comments (collection, article_id, id, author_name, text, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (collection, article_id, id) DO NOTHING`

	listCommentsQuery = `SELECT id, author_name, text, created_at
	FROM comments
	WHERE collection = $1 AND article_id = $2
	ORDER BY created_at DESC, seq DESC`

	deleteCommentQuery = `DELETE FROM comments WHERE collection = $1 AND article_id = $2 AND id = $3`
)

func scanArticle(coll model.Collection, row pgx.Row) (*model.Article, error) {
	a := &model.Article{Collection: coll}
	err := row.Scan(
		&a.ID,
		&a.Slug,
		&a.Title,
		&a.Body,
		&a.Excerpt,
		&a.ImageURL,
		&a.VideoURL,
		&a.ProjectURL,
		&a.LikesCount,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()

	return a, nil
}

func (s *Store) queryArticles(ctx context.Context, coll model.Collection, query string, args ...any) ([]*model.Article, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Article, error) {
		return scanArticle(coll, row)
	})
}

func noRecord(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNoRecord
	}

	return err
}

func (s *Store) Get(ctx context.Context, coll model.Collection, id string) (*model.Article, error) {
	a, err := scanArticle(coll, s.db.QueryRow(ctx, getArticleQuery, coll.String(), id))
	if err != nil {
		return nil, noRecord(err)
	}

	return a, nil
}

func (s *Store) FindBySlug(ctx context.Context, coll model.Collection, slug string) ([]*model.Article, error) {
	return s.queryArticles(ctx, coll, findBySlugQuery, coll.String(), slug)
}

func (s *Store) List(ctx context.Context, coll model.Collection, limit int) ([]*model.Article, error) {
	if limit > 0 {
		return s.queryArticles(ctx, coll, listArticlesQuery+` LIMIT $2`, coll.String(), limit)
	}

	return s.queryArticles(ctx, coll, listArticlesQuery, coll.String())
}

func (s *Store) Insert(ctx context.Context, a *model.Article) (*model.Article, error) {
	row := s.db.QueryRow(ctx, insertArticleQuery,
		a.Collection.String(), a.Slug, a.Title, a.Body, a.Excerpt, a.ImageURL, a.VideoURL, a.ProjectURL)

	return scanArticle(a.Collection, row)
}

// PutArticle writes a with its own id, counter and timestamps, replacing
// any article with the same id.
func (s *Store) PutArticle(ctx context.Context, a *model.Article) error {
	_, err := s.db.Exec(ctx, putArticleQuery,
		a.Collection.String(), a.ID, a.Slug, a.Title, a.Body, a.Excerpt, a.ImageURL, a.VideoURL, a.ProjectURL,
		a.LikesCount, a.CreatedAt, a.UpdatedAt)

	return err
}

func (s *Store) Update(ctx context.Context, a *model.Article) (*model.Article, error) {
	row := s.db.QueryRow(ctx, updateArticleQuery,
		a.Collection.String(), a.ID, a.Title, a.Body, a.Excerpt, a.ImageURL, a.VideoURL, a.ProjectURL)

	updated, err := scanArticle(a.Collection, row)
	if err != nil {
		return nil, noRecord(err)
	}

	return updated, nil
}

func (s *Store) Delete(ctx context.Context, coll model.Collection, id string) error {
	tag, err := s.db.Exec(ctx, deleteArticleQuery, coll.String(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNoRecord
	}

	return nil
}

func (s *Store) IncrementLikes(ctx context.Context, coll model.Collection, id string, delta int64) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, incrementLikesQuery, coll.String(), id, delta).Scan(&n); err != nil {
		return 0, noRecord(err)
	}

	return n, nil
}

func (s *Store) InsertComment(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	out := c.Clone()
	err := s.db.QueryRow(ctx, insertCommentQuery, c.Collection.String(), c.ArticleID, c.AuthorName, c.Text).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	out.CreatedAt = out.CreatedAt.UTC()

	return out, nil
}

// PutComment writes c with its own id and timestamp. Existing comments
// are left alone.
func (s *Store) PutComment(ctx context.Context, c *model.Comment) error {
	_, err := s.db.Exec(ctx, putCommentQuery,
		c.Collection.String(), c.ArticleID, c.ID, c.AuthorName, c.Text, c.CreatedAt)

	return err
}

func (s *Store) ListComments(ctx context.Context, coll model.Collection, articleID string) ([]*model.Comment, error) {
	rows, err := s.db.Query(ctx, listCommentsQuery, coll.String(), articleID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Comment, error) {
		c := &model.Comment{Collection: coll, ArticleID: articleID}
		if err := row.Scan(&c.ID, &c.AuthorName, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()

		return c, nil
	})
}

func (s *Store) DeleteComment(ctx context.Context, coll model.Collection, articleID, commentID string) error {
	_, err := s.db.Exec(ctx, deleteCommentQuery, coll.String(), articleID, commentID)

	return err
}
