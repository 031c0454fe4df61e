package article

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/SergeyParamoshkin/folio/internal/articlerequest"
	"github.com/SergeyParamoshkin/folio/internal/articleresponse"
	"github.com/SergeyParamoshkin/folio/internal/commentpayload"
	"github.com/SergeyParamoshkin/folio/internal/errresponse"
	"github.com/SergeyParamoshkin/folio/internal/logctx"
	"github.com/SergeyParamoshkin/folio/internal/model"
	"github.com/SergeyParamoshkin/folio/internal/session"
	"github.com/SergeyParamoshkin/folio/internal/visitor"
)

// API serves one collection over HTTP.
type API struct {
	svc  *Service
	coll model.Collection
}

func NewAPI(svc *Service, coll model.Collection) *API {
	return &API{svc: svc, coll: coll}
}

// Routes returns the RESTy routes for the collection, to be mounted at
// /<collection>. Writes other than likes and comments need a session.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(paginate).Get("/", a.ListArticles)
	r.Get("/latest", a.LatestArticle)
	r.With(session.Required).Post("/", a.CreateArticle)

	r.Route("/{articleKey}", func(r chi.Router) {
		r.Use(a.ArticleCtx) // Load the *Article on the request context
		r.Get("/", a.GetArticle)
		r.With(session.Required).Put("/", a.UpdateArticle)
		r.With(session.Required).Delete("/", a.DeleteArticle)

		r.Post("/like", a.LikeArticle)

		r.Get("/comments", a.ListComments)
		r.Post("/comments", a.AddComment)
		r.With(session.Required).Delete("/comments/{commentID}", a.DeleteComment)
	})

	return r
}

// renderError maps the service error kinds onto responses.
func (a *API) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var resp render.Renderer
	switch {
	case errors.Is(err, ErrNotFound):
		resp = errresponse.ErrArticleNotFound
	case errors.Is(err, ErrUnauthorized):
		resp = errresponse.ErrUnauthorized
	case errors.Is(err, ErrValidation):
		resp = errresponse.ErrValidation(err)
	case errors.Is(err, ErrMutation):
		resp = errresponse.ErrMutation(err)
	default:
		resp = errresponse.ErrUnavailable(err)
	}

	if err := render.Render(w, r, resp); err != nil {
		logctx.From(r.Context()).Errorw("render error response", "error", err)
	}
}

func (a *API) respond(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		logctx.From(r.Context()).Errorw("render", "error", err)
		if err := render.Render(w, r, errresponse.ErrRender(err)); err != nil {
			logctx.From(r.Context()).Errorw("render", "error", err)
		}
	}
}

// ListArticles returns the collection newest first, honouring ?limit.
func (a *API) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := a.svc.List(r.Context(), a.coll, limitFromContext(r.Context()))
	if err != nil {
		a.renderError(w, r, err)

		return
	}

	if err := render.RenderList(w, r, articleresponse.NewArticleListResponse(articles)); err != nil {
		a.respond(w, r, errresponse.ErrRender(err))
	}
}

// LatestArticle returns the newest article, as shown on the home page.
func (a *API) LatestArticle(w http.ResponseWriter, r *http.Request) {
	article, err := a.svc.Latest(r.Context(), a.coll)
	if err != nil {
		a.renderError(w, r, err)

		return
	}

	a.respond(w, r, articleresponse.NewArticleResponse(article))
}

// CreateArticle persists the posted Article and returns it
// back to the client as an acknowledgement.
func (a *API) CreateArticle(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		a.respond(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	article, err := a.svc.Create(r.Context(), session.FromContext(r.Context()), a.coll, data.Article)
	if err != nil {
		a.renderError(w, r, err)

		return
	}

	render.Status(r, http.StatusCreated)
	a.respond(w, r, articleresponse.NewArticleResponse(article))
}

// GetArticle returns the article page: the Article parked by ArticleCtx,
// its comments and whether the current visitor liked it. Comments and the
// liked flag are loaded concurrently; a failed like-set lookup only hides
// the flag.
func (a *API) GetArticle(w http.ResponseWriter, r *http.Request) {
	// Assume if we've reach this far, we can access the article
	// context because this handler is a child of the ArticleCtx
	// middleware.
	article, _ := ArticleFromContext(r.Context())
	log := logctx.From(r.Context())

	var (
		comments []*model.Comment
		liked    bool
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		comments, err = a.svc.ListComments(ctx, article)

		return err
	})
	g.Go(func() error {
		ok, err := a.svc.HasLiked(ctx, visitor.FromContext(ctx), article)
		if err != nil {
			log.Warnw("like-set lookup failed, showing as not liked", "article", article.ID, "error", err)

			return nil
		}
		liked = ok

		return nil
	})
	if err := g.Wait(); err != nil {
		a.renderError(w, r, err)

		return
	}

	a.respond(w, r, articleresponse.NewArticleView(article, liked, comments))
}

// UpdateArticle updates an existing Article in our persistent store.
func (a *API) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	current, _ := ArticleFromContext(r.Context())

	data := &articlerequest.ArticleRequest{Article: current.Clone()}
	if err := render.Bind(r, data); err != nil {
		a.respond(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	article, err := a.svc.Update(r.Context(), session.FromContext(r.Context()), current, data.Article)
	if err != nil {
		a.renderError(w, r, err)

		return
	}

	a.respond(w, r, articleresponse.NewArticleResponse(article))
}

// DeleteArticle removes an existing Article from our persistent store and
// echoes it back.
func (a *API) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	article, _ := ArticleFromContext(r.Context())

	if err := a.svc.Delete(r.Context(), session.FromContext(r.Context()), article); err != nil {
		a.renderError(w, r, err)

		return
	}

	a.respond(w, r, articleresponse.NewArticleResponse(article))
}

// LikeArticle registers a like by the current visitor. Liking twice is a
// silent no-op that reports the stored count.
func (a *API) LikeArticle(w http.ResponseWriter, r *http.Request) {
	article, _ := ArticleFromContext(r.Context())

	count, err := a.svc.Like(r.Context(), visitor.FromContext(r.Context()), article)
	switch {
	case errors.Is(err, ErrAlreadyLiked):
		a.respond(w, r, &articleresponse.LikeResponse{LikesCount: article.LikesCount, Liked: true})
	case err != nil:
		a.renderError(w, r, err)
	default:
		a.respond(w, r, &articleresponse.LikeResponse{LikesCount: count, Liked: true, Applied: true})
	}
}

func (a *API) ListComments(w http.ResponseWriter, r *http.Request) {
	article, _ := ArticleFromContext(r.Context())

	comments, err := a.svc.ListComments(r.Context(), article)
	if err != nil {
		a.renderError(w, r, err)

		return
	}

	if err := render.RenderList(w, r, commentpayload.NewCommentListResponse(comments)); err != nil {
		a.respond(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) AddComment(w http.ResponseWriter, r *http.Request) {
	article, _ := ArticleFromContext(r.Context())

	data := &commentpayload.CommentRequest{}
	if err := render.Bind(r, data); err != nil {
		a.respond(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	c, err := a.svc.AddComment(r.Context(), article, CommentDraft{AuthorName: data.AuthorName, Text: data.Text})
	if err != nil {
		a.renderError(w, r, err)

		return
	}

	render.Status(r, http.StatusCreated)
	a.respond(w, r, commentpayload.NewCommentResponse(c))
}

func (a *API) DeleteComment(w http.ResponseWriter, r *http.Request) {
	article, _ := ArticleFromContext(r.Context())

	err := a.svc.DeleteComment(r.Context(), session.FromContext(r.Context()), article, chi.URLParam(r, "commentID"))
	if err != nil {
		a.renderError(w, r, err)

		return
	}

	render.NoContent(w, r)
}
