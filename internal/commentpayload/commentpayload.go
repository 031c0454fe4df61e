package commentpayload

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/folio/internal/model"
	"github.com/SergeyParamoshkin/folio/internal/timestamp"
)

//--
// Request and Response payloads for article comments.
//--

// CommentRequest is what a visitor posts. Blank fields are left for the
// service to judge.
type CommentRequest struct {
	AuthorName string `json:"authorName"`
	Text       string `json:"text"`
}

func (c *CommentRequest) Bind(r *http.Request) error {
	return nil
}

type CommentResponse struct {
	*model.Comment

	PublishedAt string `json:"publishedAt"`
}

func NewCommentResponse(c *model.Comment) *CommentResponse {
	return &CommentResponse{Comment: c}
}

func NewCommentListResponse(comments []*model.Comment) []render.Renderer {
	list := []render.Renderer{}
	for _, c := range comments {
		list = append(list, NewCommentResponse(c))
	}

	return list
}

func (c *CommentResponse) Render(w http.ResponseWriter, r *http.Request) error {
	c.PublishedAt = timestamp.FormatSpanish(c.CreatedAt)

	return nil
}
