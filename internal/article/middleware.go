package article

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/folio/internal/errresponse"
	"github.com/SergeyParamoshkin/folio/internal/logctx"
	"github.com/SergeyParamoshkin/folio/internal/model"
)

type ctxKey int8

const (
	articleKey ctxKey = iota
	limitKey
)

// MaxPageSize caps ?limit on list routes.
const MaxPageSize = 100

// ArticleFromContext returns the article parked by ArticleCtx.
func ArticleFromContext(ctx context.Context) (*model.Article, bool) {
	a, ok := ctx.Value(articleKey).(*model.Article)

	return a, ok && a != nil
}

// ArticleCtx middleware is used to load an Article object from the
// {articleKey} URL parameter, which may be an id or a slug. In case the
// Article could not be found, we stop here and return a 404; a failed
// lookup is a 503.
func (a *API) ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "articleKey")
		// chi matches on RawPath when it is set, leaving params escaped
		if r.URL.RawPath != "" {
			if unescaped, err := url.PathUnescape(key); err == nil {
				key = unescaped
			}
		}

		article, err := a.svc.Resolve(r.Context(), a.coll, strings.TrimSpace(key))
		if err != nil {
			a.renderError(w, r, err)

			return
		}

		ctx := context.WithValue(r.Context(), articleKey, article)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// paginate reads ?limit for list routes. No limit means everything; values
// above MaxPageSize are clamped.
func paginate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				if err == nil {
					err = strconv.ErrRange
				}
				if err := render.Render(w, r, errresponse.ErrInvalidRequest(err)); err != nil {
					logctx.From(r.Context()).Errorw("render", "error", err)
				}

				return
			}
			limit = min(n, MaxPageSize)
		}

		ctx := context.WithValue(r.Context(), limitKey, limit)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func limitFromContext(ctx context.Context) int {
	n, _ := ctx.Value(limitKey).(int)

	return n
}
