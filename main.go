//
// folio
// =====
// Blog posts and portfolio case studies ("trabajos") over a chi REST API:
// id-or-slug article lookup, visitor likes, comments and an operator-only
// admin surface.
//
// Also check the generated route docs by passing the --routes flag,
// to run yourself do: `go run . --routes`
//
// Boot the server:
// ----------------
// $ go run .
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/posts/
// [{"id":"…","slug":"hola-mundo","title":"Hola mundo",…}]
//
// $ curl http://localhost:3333/posts/hola-mundo/
// {"id":"…","slug":"hola-mundo",…,"liked":false,"comments":[]}
//
// $ curl -X POST http://localhost:3333/posts/hola-mundo/like
// {"likesCount":1,"liked":true,"applied":true}
//
// $ curl -X POST -d '{"authorName":"Ana","text":"¡Genial!"}' http://localhost:3333/posts/hola-mundo/comments
// {"id":"…","authorName":"Ana","text":"¡Genial!",…}
//
// $ curl -X POST -d '{"email":"admin@example.com","password":"…"}' http://localhost:3333/session
// {"authenticated":true,"session":{…},"token":"…"}
//
// Import a document export and exit:
// ----------------------------------
// $ go run . --import export.json
//
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/SergeyParamoshkin/folio/internal/article"
	"github.com/SergeyParamoshkin/folio/internal/config"
	"github.com/SergeyParamoshkin/folio/internal/importer"
	"github.com/SergeyParamoshkin/folio/internal/likeset"
	"github.com/SergeyParamoshkin/folio/internal/logctx"
	"github.com/SergeyParamoshkin/folio/internal/session"
	"github.com/SergeyParamoshkin/folio/internal/storage/memory"
	"github.com/SergeyParamoshkin/folio/internal/storage/postgres"
	"github.com/SergeyParamoshkin/folio/internal/telemetry"
	"github.com/SergeyParamoshkin/folio/internal/upload"
)

const ServiceName = "folio"

// articleStore is what the service and the importer need from a backend.
type articleStore interface {
	article.Store
	importer.Writer
}

type App struct {
	sugarLogger *zap.SugaredLogger
	config      *config.Config
	closers     []func()
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() // flushes buffer, if any
	zap.ReplaceGlobals(logger)

	a := &App{
		sugarLogger: logger.Sugar(),
		config:      cfg,
	}
	defer a.close()

	if err := a.run(); err != nil {
		a.sugarLogger.Errorw("exiting", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *App) run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	if a.config.Import != "" {
		return a.runImport(ctx, store)
	}

	tel, err := telemetry.New()
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			a.sugarLogger.Warnw("meter provider shutdown", "error", err)
		}
	})
	meter := tel.Meter(ServiceName)

	likes, err := a.openLikes(ctx)
	if err != nil {
		return err
	}

	svc, err := article.NewService(store, likes, a.sugarLogger.Named("article"), meter)
	if err != nil {
		return err
	}

	sessions, err := a.newSessionManager()
	if err != nil {
		return err
	}

	uploads, err := upload.NewStore(a.config.Uploads.Dir, "/uploads", a.config.Uploads.MaxBytes)
	if err != nil {
		return err
	}

	counter, err := telemetry.RequestCounter(meter)
	if err != nil {
		return err
	}

	r := newRouter(a.sugarLogger, svc, sessions, uploads, counter)

	// Passing --routes to the program will generate docs for the above
	// router definition.
	if a.config.Routes {
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/folio",
			Intro:       "Generated route docs for the folio API.",
		}))

		return nil
	}

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", tel.Handler().ServeHTTP)

	return a.serve(ctx, r, diagRouter)
}

// serve runs the API and diag listeners until ctx is done or one of them
// fails, then shuts both down.
func (a *App) serve(ctx context.Context, api, diag http.Handler) error {
	servers := []*http.Server{
		{Addr: a.config.Addr, Handler: api, ReadHeaderTimeout: 10 * time.Second},
		{Addr: a.config.DiagAddr, Handler: diag, ReadHeaderTimeout: 10 * time.Second},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			a.sugarLogger.Infow("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}

		return errors.Join(errs...)
	})

	return g.Wait()
}

func (a *App) openStore(ctx context.Context) (articleStore, error) {
	if a.config.Store.Driver != "postgres" {
		a.sugarLogger.Warnw("using the in-memory store, data is lost on exit")

		return memory.New(), nil
	}

	pool, err := postgres.Connect(ctx, a.config.Store.DSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)

	if a.config.Store.Migrate {
		if err := postgres.Migrate(ctx, pool, a.sugarLogger.Named("migrate")); err != nil {
			return nil, err
		}
	}

	return postgres.New(pool), nil
}

func (a *App) openLikes(ctx context.Context) (likeset.Set, error) {
	if a.config.Likes.Driver != "redis" {
		return likeset.NewMemory(), nil
	}

	likes, err := likeset.NewRedis(a.config.Likes.RedisURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = likes.Close() })

	if err := likes.Ping(ctx); err != nil {
		return nil, fmt.Errorf("redis like-set: %w", err)
	}

	return likes, nil
}

func (a *App) newSessionManager() (*session.Manager, error) {
	auth := a.config.Auth
	if auth.Email == "" {
		a.sugarLogger.Warnw("no operator configured, admin routes are closed")
	}
	if auth.Secret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, err
		}
		auth.Secret = hex.EncodeToString(b)
		a.sugarLogger.Warnw("auth.secret not set, sessions will not survive a restart")
	}

	return session.NewManager(session.Config{
		Email:        auth.Email,
		PasswordHash: auth.PasswordHash,
		Secret:       auth.Secret,
		Issuer:       auth.Issuer,
		TTL:          auth.TTL,
	})
}

func (a *App) runImport(ctx context.Context, store articleStore) error {
	f, err := os.Open(a.config.Import)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := importer.New(store, a.sugarLogger.Named("import")).Load(ctx, f)
	if err != nil {
		return err
	}
	a.sugarLogger.Infow("import finished",
		"file", a.config.Import, "articles", res.Articles, "comments", res.Comments, "skipped", res.Skipped)

	return nil
}

// This is entirely optional, but I wanted to demonstrate how you could easily
// add your own logic to the render.Respond method.
func init() {
	render.Respond = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		if err, ok := v.(error); ok {
			// We set a default error status response code if one hasn't been set.
			if _, ok := r.Context().Value(render.StatusCtxKey).(int); !ok {
				w.WriteHeader(http.StatusBadRequest)
			}

			logctx.From(r.Context()).Errorw("responding with a bare error", "error", err)

			// Don't reveal the actual error message.
			render.DefaultResponder(w, r, render.M{"status": "error"})

			return
		}

		render.DefaultResponder(w, r, v)
	}
}
