// Package rest exposes the Store Engine over HTTP/JSON.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/storefront/internal/domain"
	"github.com/abgdnv/storefront/internal/engine"
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultOrdersLimit = 50
	maxOrdersLimit     = 500
)

type Handler struct {
	store    engine.StoreService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler serving the given store.
func NewHandler(store engine.StoreService, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		validate: newValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the storefront HTTP routes.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/{id}", h.GetProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Patch("/items/{id}", h.UpdateCartItem)
			r.Delete("/items/{id}", h.RemoveCartItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/", h.PlaceOrder)
			r.Get("/{id}", h.GetOrder)
		})

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)
		r.Get("/dashboard", h.Dashboard)
	})

	r.Get("/healthz", h.HealthCheck)
}

// ListProducts returns the catalog, optionally filtered by ?category=.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	category := domain.CategoryAll
	if q := r.URL.Query().Get("category"); q != "" {
		c, err := domain.ParseCategory(q)
		if err != nil {
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid category: %s", q))
			return
		}
		category = c
	}
	list := h.store.ProductsByCategory(category)
	mLogger.DebugContext(r.Context(), "Products listed", "category", category, "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// CreateProduct adds a product to the catalog.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto ProductCreateDto
	if !web.DecodeValid(w, r, mLogger, h.validate, &dto) {
		return
	}

	p := domain.Product{
		ID:          strings.TrimSpace(dto.ID),
		Name:        dto.Name,
		Price:       dto.Price,
		Category:    domain.Category(dto.Category),
		Image:       dto.Image,
		Description: dto.Description,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Image == "" {
		p.Image = domain.DefaultProductImage
	}

	if err := h.store.AddProduct(r.Context(), p); err != nil {
		if errors.Is(err, storeerrors.ErrInvalidProduct) {
			mLogger.WarnContext(r.Context(), "Invalid product", "ID", p.ID, "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", p.ID, "Name", p.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, p)
}

// GetProduct retrieves a product by its ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.PathID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.store.GetProduct(id)
	if err != nil {
		h.respondLookupError(w, r, mLogger, err, "Product", id)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// DeleteProduct removes a product. Unknown ids succeed as well.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.PathID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, h.loggerWithReqID(r), http.StatusOK)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCart()
	w.WriteHeader(http.StatusNoContent)
}

// AddCartItem puts one unit of a catalog product in the cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto CartItemAddDto
	if !web.DecodeValid(w, r, mLogger, h.validate, &dto) {
		return
	}
	if err := h.store.AddToCartByID(dto.ProductID); err != nil {
		h.respondLookupError(w, r, mLogger, err, "Product", dto.ProductID)
		return
	}
	h.respondCart(w, mLogger, http.StatusOK)
}

// UpdateCartItem changes a line's quantity by delta; the quantity never drops below one.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.PathID(w, r, mLogger)
	if !ok {
		return
	}
	var dto CartQuantityDto
	if !web.DecodeValid(w, r, mLogger, h.validate, &dto) {
		return
	}
	h.store.UpdateCartQuantity(id, dto.Delta)
	h.respondCart(w, mLogger, http.StatusOK)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.PathID(w, r, mLogger)
	if !ok {
		return
	}
	h.store.RemoveFromCart(id)
	w.WriteHeader(http.StatusNoContent)
}

// ListOrders returns a page of the ledger, most recent first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	offset, ok := web.QueryIntGte(r, w, mLogger, "offset", 0, 0)
	if !ok {
		return
	}
	limit, ok := web.QueryIntBetween(r, w, mLogger, "limit", 1, maxOrdersLimit, defaultOrdersLimit)
	if !ok {
		return
	}
	orders := h.store.Orders()
	start := min(offset, len(orders))
	end := min(start+limit, len(orders))
	web.RespondJSON(w, mLogger, http.StatusOK, orders[start:end])
}

// PlaceOrder checks out the cart.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto CheckoutDto
	if !web.DecodeValid(w, r, mLogger, h.validate, &dto) {
		return
	}
	customer := domain.Customer{Name: dto.Name, City: dto.City, Phone: dto.Phone}
	order, err := h.store.PlaceOrder(r.Context(), customer)
	if errors.Is(err, storeerrors.ErrInvalidCustomer) {
		mLogger.WarnContext(r.Context(), "Invalid customer", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Customer name, city and phone are required")
		return
	}
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error placing order", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to place order")
		return
	}
	if order == nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Cart is empty")
		return
	}
	mLogger.InfoContext(r.Context(), "Order placed", "ID", order.ID, "total", order.Total)
	web.RespondJSON(w, mLogger, http.StatusCreated, order)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.PathID(w, r, mLogger)
	if !ok {
		return
	}
	order, err := h.store.GetOrder(id)
	if err != nil {
		h.respondLookupError(w, r, mLogger, err, "Order", id)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, order)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.store.Settings())
}

// UpdateSettings replaces the whole settings record.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var settings domain.Settings
	if !web.DecodeValid(w, r, mLogger, h.validate, &settings) {
		return
	}
	if err := h.store.UpdateSettings(r.Context(), settings); err != nil {
		mLogger.ErrorContext(r.Context(), "Error updating settings", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update settings")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, settings)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.store.Dashboard())
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) respondCart(w http.ResponseWriter, logger *slog.Logger, status int) {
	web.RespondJSON(w, logger, status, newCartDto(h.store.Cart()))
}

func (h *Handler) respondLookupError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, kind, id string) {
	if errors.Is(err, storeerrors.ErrProductNotFound) || errors.Is(err, storeerrors.ErrOrderNotFound) {
		logger.WarnContext(r.Context(), kind+" not found", "ID", id)
		web.RespondError(w, logger, http.StatusNotFound, fmt.Sprintf("%s with ID %s not found", kind, id))
		return
	}
	logger.ErrorContext(r.Context(), "Error retrieving "+strings.ToLower(kind), "ID", id, "error", err)
	web.RespondError(w, logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve %s with ID %s", strings.ToLower(kind), id))
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
