package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/folio/internal/article"
	"github.com/SergeyParamoshkin/folio/internal/errresponse"
	"github.com/SergeyParamoshkin/folio/internal/logctx"
	"github.com/SergeyParamoshkin/folio/internal/model"
	"github.com/SergeyParamoshkin/folio/internal/session"
	"github.com/SergeyParamoshkin/folio/internal/upload"
	"github.com/SergeyParamoshkin/folio/internal/visitor"
)

func newRouter(
	sugar *zap.SugaredLogger,
	svc *article.Service,
	sessions *session.Manager,
	uploads *upload.Store,
	counter func(http.Handler) http.Handler,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logctx.Middleware(sugar))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if counter != nil {
		r.Use(counter)
	}
	r.Use(middleware.URLFormat)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(visitor.Middleware)
	r.Use(sessions.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if err := render.Render(w, r, errresponse.ErrNotFound); err != nil {
			logctx.From(r.Context()).Errorw("render", "error", err)
		}
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("root.")); err != nil {
			logctx.From(r.Context()).Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("pong")); err != nil {
			logctx.From(r.Context()).Errorw(err.Error())
		}
	})

	r.Mount("/session", sessions.Routes())

	// RESTy routes for every collection: /posts, /trabajos
	for _, coll := range model.Collections {
		r.Mount("/"+coll.String(), article.NewAPI(svc, coll).Routes())
	}

	// Mount the admin sub-router, which btw is the same as:
	// r.Route("/admin", func(r chi.Router) { admin routes here })
	r.Mount("/admin", adminRouter(svc, uploads))

	FileServer(r, "/uploads", http.Dir(uploads.Dir()))

	return r
}

// A completely separate router for administrator routes.
func adminRouter(svc *article.Service, uploads *upload.Store) chi.Router {
	r := chi.NewRouter()
	r.Use(session.Required)
	r.Get("/", dashboard(svc))
	r.Post("/uploads", uploads.Upload)

	return r
}

// DashboardResponse is the admin landing payload.
type DashboardResponse struct {
	Operator string            `json:"operator"`
	Counts   map[string]int    `json:"counts"`
	Latest   map[string]string `json:"latest"`
}

func (d *DashboardResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func dashboard(svc *article.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := &DashboardResponse{
			Operator: session.FromContext(r.Context()).Email,
			Counts:   make(map[string]int, len(model.Collections)),
			Latest:   make(map[string]string, len(model.Collections)),
		}

		for _, coll := range model.Collections {
			list, err := svc.List(r.Context(), coll, 0)
			if err != nil {
				if err := render.Render(w, r, errresponse.ErrUnavailable(err)); err != nil {
					logctx.From(r.Context()).Errorw("render", "error", err)
				}

				return
			}
			resp.Counts[coll.String()] = len(list)
			if len(list) > 0 {
				resp.Latest[coll.String()] = list[0].Title
			}
		}

		if err := render.Render(w, r, resp); err != nil {
			logctx.From(r.Context()).Errorw("render", "error", err)
		}
	}
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit any URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, r)
	})
}
