package article

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/folio/internal/content"
	"github.com/SergeyParamoshkin/folio/internal/likeset"
	"github.com/SergeyParamoshkin/folio/internal/model"
)

const instrumentationName = "github.com/SergeyParamoshkin/folio/internal/article"

// Service resolves articles and records likes and comments on them.
//
// Every call is a single best-effort attempt: nothing is retried, and
// cancellation is whatever the caller's context imposes.
type Service struct {
	store   Store
	likes   likeset.Set
	extract *content.Extractor
	log     *zap.SugaredLogger
	tracer  trace.Tracer

	resolveCount metric.Int64Counter
	likeCount    metric.Int64Counter
	commentCount metric.Int64Counter
}

// NewService wires a service. A nil logger or meter disables that output.
func NewService(store Store, likes likeset.Set, logger *zap.SugaredLogger, meter metric.Meter) (*Service, error) {
	if store == nil || likes == nil {
		return nil, errors.New("article: store and like-set are required")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(instrumentationName)
	}

	s := &Service{
		store:   store,
		likes:   likes,
		extract: content.NewExtractor(),
		log:     logger,
		tracer:  otel.Tracer(instrumentationName),
	}

	var err error
	if s.resolveCount, err = meter.Int64Counter("article/resolve_count",
		metric.WithDescription("Article lookups, by outcome and match kind")); err != nil {
		return nil, fmt.Errorf("resolve counter: %w", err)
	}
	if s.likeCount, err = meter.Int64Counter("article/like_count",
		metric.WithDescription("Like attempts, by outcome")); err != nil {
		return nil, fmt.Errorf("like counter: %w", err)
	}
	if s.commentCount, err = meter.Int64Counter("article/comment_count",
		metric.WithDescription("Comment operations, by op and outcome")); err != nil {
		return nil, fmt.Errorf("comment counter: %w", err)
	}

	return s, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "rejected"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrValidation) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func collAttr(c model.Collection) attribute.KeyValue {
	return attribute.String("collection", c.String())
}
