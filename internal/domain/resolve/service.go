// Package resolve runs a chooser session for one product per request: it
// loads the product, replays the client's selection and toggles, and returns
// what the chooser should render.
package resolve

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/kart-sku/internal/domain/product"
	"github.com/xenking/kart-sku/internal/domain/sku"
)

const instrumentationName = "github.com/xenking/kart-sku/internal/domain/resolve"

// Toggle is one chip tap replayed against the session.
type Toggle struct {
	Dimension string
	Value     string
}

// ToggleError indicates a toggle that names an unknown dimension or value.
type ToggleError struct {
	Toggle Toggle
	Err    error
}

func (e *ToggleError) Error() string {
	return fmt.Sprintf("toggle %s=%s: %s", e.Toggle.Dimension, e.Toggle.Value, e.Err)
}

func (e *ToggleError) Unwrap() error {
	return e.Err
}

// Request holds the client state to replay.
type Request struct {
	ProductID string
	// Selection seeds a structured session: dimension id to value id.
	Selection sku.Selection
	// Legacy seeds a legacy session: spec name to value. When empty,
	// Selection is used instead.
	Legacy  sku.LegacySelection
	Toggles []Toggle
	// Quantity is applied last; zero leaves the default of 1.
	Quantity int
}

// Result is the rendered state after replay.
type Result struct {
	Product      *product.Product
	View         sku.View
	Confirmation sku.Confirmation
}

// Service resolves chooser state for products from a Repository.
type Service struct {
	products product.Repository
	tracer   trace.Tracer
	requests metric.Int64Counter
}

// NewService creates a resolve Service.
func NewService(products product.Repository, tp trace.TracerProvider, mp metric.MeterProvider) (*Service, error) {
	requests, err := mp.Meter(instrumentationName).Int64Counter("resolve.requests",
		metric.WithDescription("Chooser resolutions by mode and match outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create resolve.requests counter")
	}
	return &Service{
		products: products,
		tracer:   tp.Tracer(instrumentationName),
		requests: requests,
	}, nil
}

// Resolve loads the product, opens a session seeded with req.Selection,
// applies req.Toggles in order and returns the view. It fails with
// product.ErrNotFound for unknown products and *ToggleError for bad toggles.
func (s *Service) Resolve(ctx context.Context, req Request) (_ *Result, rerr error) {
	ctx, span := s.tracer.Start(ctx, "resolve.Resolve",
		trace.WithAttributes(attribute.String("product.id", req.ProductID)),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	p, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}

	item := p.Item()
	session := sku.Open(item, seed(item, req))
	defer session.Close()

	for _, t := range req.Toggles {
		if err := session.Toggle(t.Dimension, t.Value); err != nil {
			return nil, &ToggleError{Toggle: t, Err: err}
		}
	}
	if req.Quantity != 0 {
		session.SetQuantity(req.Quantity)
	}

	view := session.View()
	confirmation, err := session.Confirm()
	if err != nil {
		return nil, errors.Wrap(err, "confirm")
	}

	matched := view.Variant != nil
	span.SetAttributes(
		attribute.String("resolve.mode", string(view.Mode)),
		attribute.Bool("resolve.matched", matched),
	)
	s.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", string(view.Mode)),
		attribute.Bool("matched", matched),
	))
	zctx.From(ctx).Debug("Resolved selection",
		zap.String("product_id", p.ID),
		zap.String("mode", string(view.Mode)),
		zap.String("summary", view.Summary),
		zap.Bool("can_buy", view.CanBuy),
	)

	return &Result{
		Product:      p,
		View:         view,
		Confirmation: confirmation,
	}, nil
}

func seed(item sku.Item, req Request) sku.Selection {
	if item.Structured() || len(req.Legacy) == 0 {
		return req.Selection
	}
	return sku.Selection(req.Legacy)
}
