package article_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/folio/internal/article"
	"github.com/SergeyParamoshkin/folio/internal/likeset"
	"github.com/SergeyParamoshkin/folio/internal/model"
	"github.com/SergeyParamoshkin/folio/internal/session"
	"github.com/SergeyParamoshkin/folio/internal/visitor"
)

const operatorHeader = "X-Test-Operator"

// testRouter mounts the posts API behind the visitor middleware. Requests
// carrying operatorHeader get an operator session.
func testRouter(t *testing.T, store article.Store, likes likeset.Set) http.Handler {
	t.Helper()
	svc := newService(t, store, likes)

	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(visitor.Middleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(operatorHeader) != "" {
				r = r.WithContext(session.NewContext(r.Context(), operator))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Mount("/posts", article.NewAPI(svc, model.Posts).Routes())

	return r
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())

	return m
}

func seededRouter(t *testing.T) (http.Handler, *flakyStore) {
	t.Helper()
	store := newFlakyStore()
	seed(t, store.Store, &model.Article{
		ID: "a1", Collection: model.Posts, Slug: "hola-mundo", Title: "Hola mundo",
		VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", LikesCount: 2,
	})

	return testRouter(t, store, likeset.NewMemory()), store
}

func TestGetArticleBySlugAndID(t *testing.T) {
	h, _ := seededRouter(t)

	for _, key := range []string{"hola-mundo", "a1"} {
		w := do(t, h, http.MethodGet, "/posts/"+key+"/", "", visitor.Header, visitorID)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decode(t, w)
		assert.Equal(t, "a1", body["id"])
		assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", body["embedUrl"])
		assert.Equal(t, false, body["liked"])
		assert.Equal(t, []any{}, body["comments"])
	}
}

func TestGetArticleNotFound(t *testing.T) {
	h, _ := seededRouter(t)

	w := do(t, h, http.MethodGet, "/posts/no-existe/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Article not found.", decode(t, w)["status"])
}

func TestGetArticleKeyIsDecodedOnce(t *testing.T) {
	store := newFlakyStore()
	seed(t, store.Store,
		&model.Article{ID: "u1", Collection: model.Posts, Slug: "uno"},
		&model.Article{ID: "c1", Collection: model.Posts, Slug: "canción"},
	)
	h := testRouter(t, store, likeset.NewMemory())

	w := do(t, h, http.MethodGet, "/posts/%75no/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", decode(t, w)["id"])

	w = do(t, h, http.MethodGet, "/posts/%2575no/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/posts/canci%C3%B3n/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", decode(t, w)["id"])
}

func TestGetArticleRetrievalFailure(t *testing.T) {
	store := newFlakyStore("Get")
	h := testRouter(t, store, likeset.NewMemory())

	w := do(t, h, http.MethodGet, "/posts/a1/", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), errBackend.Error())
}

func TestGetArticleLikeSetFailureHidesFlag(t *testing.T) {
	store := newFlakyStore()
	seed(t, store.Store, &model.Article{ID: "a1", Collection: model.Posts, Slug: "hola"})
	h := testRouter(t, store, &flakySet{Memory: likeset.NewMemory(), failContains: true})

	w := do(t, h, http.MethodGet, "/posts/hola/", "", visitor.Header, visitorID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["liked"])
}

func TestLikeFlow(t *testing.T) {
	h, _ := seededRouter(t)

	w := do(t, h, http.MethodPost, "/posts/hola-mundo/like", "", visitor.Header, visitorID)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]any{"likesCount": float64(3), "liked": true, "applied": true}, decode(t, w))

	w = do(t, h, http.MethodPost, "/posts/hola-mundo/like", "", visitor.Header, visitorID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"likesCount": float64(3), "liked": true, "applied": false}, decode(t, w))

	w = do(t, h, http.MethodGet, "/posts/hola-mundo/", "", visitor.Header, visitorID)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(3), body["likesCount"])
}

func TestLikeFailure(t *testing.T) {
	store := newFlakyStore("IncrementLikes")
	seed(t, store.Store, &model.Article{ID: "a1", Collection: model.Posts, Slug: "hola"})
	h := testRouter(t, store, likeset.NewMemory())

	w := do(t, h, http.MethodPost, "/posts/hola/like", "", visitor.Header, visitorID)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCommentFlow(t *testing.T) {
	h, _ := seededRouter(t)

	w := do(t, h, http.MethodPost, "/posts/hola-mundo/comments", `{"authorName":"","text":"  ¡Genial!  "}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, model.AnonymousAuthor, created["authorName"])
	assert.Equal(t, "¡Genial!", created["text"])
	assert.NotEmpty(t, created["publishedAt"])

	w = do(t, h, http.MethodPost, "/posts/hola-mundo/comments", `{"authorName":"Ana","text":"   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodGet, "/posts/hola-mundo/comments", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	id, _ := created["id"].(string)
	w = do(t, h, http.MethodDelete, "/posts/hola-mundo/comments/"+id, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodDelete, "/posts/hola-mundo/comments/"+id, "", operatorHeader, "1")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/posts/hola-mundo/comments", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAdminArticleLifecycle(t *testing.T) {
	h, _ := seededRouter(t)

	w := do(t, h, http.MethodPost, "/posts/", `{"title":"Nuevo post"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodPost, "/posts/", `{"title":"Nuevo post","body":"<p>hola</p>","id":"forged"}`, operatorHeader, "1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "nuevo-post", created["slug"])
	assert.NotEqual(t, "forged", created["id"])

	w = do(t, h, http.MethodPost, "/posts/", `{"title":"  "}`, operatorHeader, "1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodPost, "/posts/", `{}`, operatorHeader, "1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPut, "/posts/nuevo-post/", `{"title":"Otro título","slug":"hack"}`, operatorHeader, "1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)
	assert.Equal(t, "Otro título", updated["title"])
	assert.Equal(t, "nuevo-post", updated["slug"])

	w = do(t, h, http.MethodGet, "/posts/latest", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Otro título", decode(t, w)["title"])

	w = do(t, h, http.MethodDelete, "/posts/nuevo-post/", "", operatorHeader, "1")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/posts/nuevo-post/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListArticlesPagination(t *testing.T) {
	h, _ := seededRouter(t)

	w := do(t, h, http.MethodGet, "/posts/?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = do(t, h, http.MethodGet, "/posts/?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/posts/?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListArticlesFailure(t *testing.T) {
	h := testRouter(t, newFlakyStore("List"), likeset.NewMemory())

	w := do(t, h, http.MethodGet, "/posts/", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
