// Package handler exposes the catalog, chooser resolution and ordering over
// HTTP with JSON bodies.
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/kart-sku/internal/domain/order"
	"github.com/xenking/kart-sku/internal/domain/product"
	"github.com/xenking/kart-sku/internal/domain/resolve"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative image paths in responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler serves the /api routes.
type Handler struct {
	products     product.Repository
	resolver     *resolve.Service
	orderService *order.Service
	imageBaseURL string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	products product.Repository,
	resolver *resolve.Service,
	orderService *order.Service,
) *Handler {
	return &Handler{
		products:     products,
		resolver:     resolver,
		orderService: orderService,
		imageBaseURL: strings.TrimSuffix(cfg.ImageBaseURL, "/"),
	}
}

// Routes returns a router serving every endpoint under /api.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/product", h.ListProducts)
		r.Get("/product/{productId}", h.GetProduct)
		r.Post("/product/{productId}/resolve", h.Resolve)
		r.Post("/order", h.PlaceOrder)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// imageURL resolves a stored image path against the configured base URL.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.imageBaseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return h.imageBaseURL + "/" + strings.TrimPrefix(path, "/")
}
