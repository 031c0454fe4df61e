// Package importer loads a document export of the original site into an
// article store. The export is loosely typed: field names are Spanish,
// counters may be missing and timestamps come in several shapes. All of
// that is normalised here, once, so typed code never sees it.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/folio/internal/content"
	"github.com/SergeyParamoshkin/folio/internal/model"
	"github.com/SergeyParamoshkin/folio/internal/slug"
	"github.com/SergeyParamoshkin/folio/internal/timestamp"
)

// Document is one exported record, as decoded from JSON.
type Document map[string]any

// Export is the whole dump: collection name to document id to document.
type Export map[string]map[string]Document

// Writer receives normalised records with their original ids.
type Writer interface {
	PutArticle(ctx context.Context, a *model.Article) error
	PutComment(ctx context.Context, c *model.Comment) error
}

// Result counts what Load wrote.
type Result struct {
	Articles int
	Comments int
	Skipped  int
}

type Importer struct {
	w       Writer
	extract *content.Extractor
	log     *zap.SugaredLogger
}

func New(w Writer, log *zap.SugaredLogger) *Importer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Importer{w: w, extract: content.NewExtractor(), log: log}
}

// Decode reads an export. Numbers are kept as json.Number.
func Decode(r io.Reader) (Export, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var exp Export
	if err := dec.Decode(&exp); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	return exp, nil
}

// Load decodes an export from r and writes every article and comment of
// the known collections. Unknown collections and documents without a
// title are skipped and logged.
func (im *Importer) Load(ctx context.Context, r io.Reader) (Result, error) {
	exp, err := Decode(r)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for name, docs := range exp {
		coll, err := model.ParseCollection(name)
		if err != nil {
			im.log.Warnw("skipping unknown collection", "collection", name, "documents", len(docs))
			res.Skipped += len(docs)

			continue
		}

		for id, doc := range docs {
			a, comments, err := im.Normalize(coll, id, doc)
			if err != nil {
				im.log.Warnw("skipping document", "collection", coll, "id", id, "error", err)
				res.Skipped++

				continue
			}
			if err := im.w.PutArticle(ctx, a); err != nil {
				return res, fmt.Errorf("write %s/%s: %w", coll, id, err)
			}
			res.Articles++

			for _, c := range comments {
				if err := im.w.PutComment(ctx, c); err != nil {
					return res, fmt.Errorf("write comment %s/%s/%s: %w", coll, id, c.ID, err)
				}
				res.Comments++
			}
		}
	}

	return res, nil
}

var ErrNoTitle = errors.New("document has no title")

// Normalize turns one exported document into typed records. Missing
// counters become zero, a missing slug is derived from the title, and a
// missing excerpt or image is derived from the body.
func (im *Importer) Normalize(coll model.Collection, id string, doc Document) (*model.Article, []*model.Comment, error) {
	a := &model.Article{
		ID:         id,
		Collection: coll,
		Title:      doc.str("titulo", "title"),
		Excerpt:    doc.str("excerpt", "resumen"),
		ImageURL:   doc.str("imagenUrl", "imageUrl"),
		VideoURL:   doc.str("videoUrl"),
		ProjectURL: doc.str("linkProyecto", "projectUrl"),
		Slug:       doc.str("slug"),
		LikesCount: doc.count("likesCount"),
	}
	if coll == model.Trabajos {
		a.Body = doc.raw("descripcion", "contenido", "body")
	} else {
		a.Body = doc.raw("contenido", "descripcion", "body")
	}
	if a.Title == "" {
		return nil, nil, ErrNoTitle
	}
	if a.Slug == "" {
		a.Slug = slug.Make(a.Title)
	}
	if a.Excerpt == "" {
		a.Excerpt = im.extract.Excerpt(a.Body, content.ExcerptLength)
	}
	if a.ImageURL == "" {
		a.ImageURL = content.FirstImage(a.Body)
	}

	a.CreatedAt = im.timestamp(coll, id, doc, "createdAt", "Timestamp", "fecha")
	a.UpdatedAt = im.timestamp(coll, id, doc, "updatedAt")
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	return a, im.comments(a, doc), nil
}

func (im *Importer) comments(a *model.Article, doc Document) []*model.Comment {
	raw, ok := doc["comments"].(map[string]any)
	if !ok {
		return nil
	}

	out := make([]*model.Comment, 0, len(raw))
	for cid, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		cdoc := Document(m)

		text := cdoc.str("text", "texto")
		if text == "" {
			im.log.Warnw("skipping empty comment", "article", a.ID, "comment", cid)

			continue
		}
		author := cdoc.str("name", "authorName", "nombre")
		if author == "" {
			author = model.AnonymousAuthor
		}

		out = append(out, &model.Comment{
			ID:         cid,
			Collection: a.Collection,
			ArticleID:  a.ID,
			AuthorName: author,
			Text:       text,
			CreatedAt:  im.timestamp(a.Collection, a.ID+"/"+cid, cdoc, "createdAt"),
		})
	}

	return out
}

// timestamp returns the first parseable timestamp among keys, in UTC, or
// the zero time.
func (im *Importer) timestamp(coll model.Collection, id string, doc Document, keys ...string) time.Time {
	for _, k := range keys {
		v, ok := doc[k]
		if !ok || v == nil {
			continue
		}
		parsed, variant, err := timestamp.Parse(v)
		if err != nil {
			im.log.Warnw("unparseable timestamp", "collection", coll, "id", id, "field", k, "value", v)

			continue
		}
		im.log.Debugw("timestamp parsed", "collection", coll, "id", id, "field", k, "variant", variant)

		return parsed.UTC()
	}

	return time.Time{}
}

// str returns the first non-blank string among keys, trimmed.
func (d Document) str(keys ...string) string {
	for _, k := range keys {
		if s, ok := d[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}

	return ""
}

// raw is str without trimming, for rich HTML bodies.
func (d Document) raw(keys ...string) string {
	for _, k := range keys {
		if s, ok := d[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}

	return ""
}

// count reads a non-negative integer counter; anything else is zero.
func (d Document) count(key string) int64 {
	var n int64
	switch v := d[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			n = i
		} else if f, err := v.Float64(); err == nil {
			n = int64(f)
		}
	case float64:
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	}

	return max(n, 0)
}
