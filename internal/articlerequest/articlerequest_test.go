package articlerequest_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/folio/internal/articlerequest"
	"github.com/SergeyParamoshkin/folio/internal/model"
)

func TestBindIgnoresProtectedFields(t *testing.T) {
	body := `{"id":"forged","slug":"forged","likesCount":99,"title":"Hola","body":"<p>x</p>"}`
	r := httptest.NewRequest("POST", "/posts/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	data := &articlerequest.ArticleRequest{}
	require.NoError(t, render.Bind(r, data))

	assert.Equal(t, "Hola", data.Title)
	assert.Equal(t, "<p>x</p>", data.Body)
	assert.Empty(t, data.Article.ID)
	assert.Empty(t, data.Article.Slug)
	assert.Zero(t, data.Article.LikesCount)
}

func TestBindOntoExistingArticle(t *testing.T) {
	current := &model.Article{ID: "a1", Slug: "hola", Title: "Hola", LikesCount: 3}
	r := httptest.NewRequest("PUT", "/posts/a1/", strings.NewReader(`{"title":"Adiós"}`))
	r.Header.Set("Content-Type", "application/json")

	data := &articlerequest.ArticleRequest{Article: current.Clone()}
	require.NoError(t, render.Bind(r, data))

	assert.Equal(t, "Adiós", data.Title)
	assert.Equal(t, "a1", data.Article.ID)
	assert.Equal(t, int64(3), data.Article.LikesCount)
}

func TestBindRequiresFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/posts/", strings.NewReader(`{"id":"x"}`))
	r.Header.Set("Content-Type", "application/json")

	assert.Error(t, render.Bind(r, &articlerequest.ArticleRequest{}))
}
