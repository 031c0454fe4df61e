package articlerequest

import (
	"errors"
	"net/http"

	"github.com/SergeyParamoshkin/folio/internal/model"
)

// ArticleRequest is the request payload for Article data model.
//
// Only the author-editable fields are honoured: the protected fields
// are overridden here and cleared again in Bind, so a client can never set
// the id, slug, counter or timestamps of an article.
type ArticleRequest struct {
	*model.Article

	ProtectedID         string `json:"id"`
	ProtectedSlug       string `json:"slug"`
	ProtectedCollection string `json:"collection"`
	ProtectedLikes      int64  `json:"likesCount"`
	ProtectedCreatedAt  string `json:"createdAt"`
	ProtectedUpdatedAt  string `json:"updatedAt"`
}

func (a *ArticleRequest) Bind(r *http.Request) error {
	// a.Article is nil if no Article fields are sent in the request. Return an
	// error to avoid a nil pointer dereference.
	if a.Article == nil {
		return errors.New("missing required Article fields")
	}

	a.ProtectedID = ""
	a.ProtectedSlug = ""
	a.ProtectedCollection = ""
	a.ProtectedLikes = 0
	a.ProtectedCreatedAt = ""
	a.ProtectedUpdatedAt = ""

	return nil
}
