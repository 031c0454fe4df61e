package articleresponse

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/folio/internal/commentpayload"
	"github.com/SergeyParamoshkin/folio/internal/model"
	"github.com/SergeyParamoshkin/folio/internal/timestamp"
	"github.com/SergeyParamoshkin/folio/internal/video"
)

// ArticleResponse is the response payload for the Article data model.
//
// In the ArticleResponse object, first a Render() is called on itself,
// then the next field, and so on, all the way down the tree.
// Render is called in top-down order, like a http handler middleware chain.
type ArticleResponse struct {
	*model.Article

	// Computed on render.
	EmbedURL    string `json:"embedUrl"`
	PublishedAt string `json:"publishedAt"`
}

func NewArticleListResponse(articles []*model.Article) []render.Renderer {
	list := []render.Renderer{}
	for _, article := range articles {
		list = append(list, NewArticleResponse(article))
	}

	return list
}

func NewArticleResponse(article *model.Article) *ArticleResponse {
	return &ArticleResponse{Article: article}
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	rd.EmbedURL = video.EmbedURL(rd.VideoURL)
	rd.PublishedAt = timestamp.FormatSpanish(rd.CreatedAt)

	return nil
}

// ArticleView is the article page: the article plus what the current
// visitor sees around it.
type ArticleView struct {
	*ArticleResponse

	Liked    bool                              `json:"liked"`
	Comments []*commentpayload.CommentResponse `json:"comments"`
}

func NewArticleView(article *model.Article, liked bool, comments []*model.Comment) *ArticleView {
	v := &ArticleView{
		ArticleResponse: NewArticleResponse(article),
		Liked:           liked,
		Comments:        make([]*commentpayload.CommentResponse, 0, len(comments)),
	}
	for _, c := range comments {
		v.Comments = append(v.Comments, commentpayload.NewCommentResponse(c))
	}

	return v
}

// Render fills the computed fields of every comment. render walks into
// the embedded ArticleResponse by itself, but not into slices.
func (v *ArticleView) Render(w http.ResponseWriter, r *http.Request) error {
	for _, c := range v.Comments {
		if err := c.Render(w, r); err != nil {
			return err
		}
	}

	return nil
}

// LikeResponse reports the counter after a like. Applied is false when the
// visitor had already liked the article and nothing changed.
type LikeResponse struct {
	LikesCount int64 `json:"likesCount"`
	Liked      bool  `json:"liked"`
	Applied    bool  `json:"applied"`
}

func (l *LikeResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
