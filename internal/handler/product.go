package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookmarket/internal/model"
	"github.com/iliyamo/bookmarket/internal/repository"
)

// ProductHandler serves the store catalog. Reads are public; mutations are
// admin-gated by middleware. Products are listings with kind=product and
// are created approved, so moderation queries never see them.
type ProductHandler struct {
	Listings ListingStore
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(listings ListingStore) *ProductHandler {
	if listings == nil {
		panic("nil listing store passed to NewProductHandler")
	}
	return &ProductHandler{Listings: listings}
}

type productReq struct {
	Title           *string   `json:"title"`
	Author          *string   `json:"author"`
	ISBN            *string   `json:"isbn"`
	Publisher       *string   `json:"publisher"`
	PublicationYear *int      `json:"publicationYear"`
	Pages           *int      `json:"pages"`
	Category        *string   `json:"category"`
	Description     *string   `json:"description"`
	Price           *float64  `json:"price"`
	Condition       *string   `json:"condition"`
	Stock           *int      `json:"stock"`
	Images          *[]string `json:"images"`
}

// List handles GET /v1/products: the whole catalog, newest first.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Listings.List(ctx, model.KindProduct, "", 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch products"})
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /v1/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item, err := h.Listings.GetByID(ctx, id)
	if err != nil || item.Kind != model.KindProduct {
		if err == nil || err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch product"})
	}
	return c.JSON(http.StatusOK, item)
}

// Create handles POST /v1/products (admin).
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	listing := model.Listing{
		Kind:   model.KindProduct,
		Status: model.StatusApproved,
	}
	applyProductFields(&listing, req)
	if listing.Title == "" || listing.Author == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and author are required"})
	}
	if listing.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}
	if listing.Condition != "" && !model.ValidProductCondition(listing.Condition) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "condition must be new or used"})
	}
	if listing.Stock < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stock must not be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Listings.Create(ctx, &listing); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}
	return c.JSON(http.StatusCreated, listing)
}

// Update handles PUT /v1/products/:id (admin). Only fields present in the
// body are changed.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	listing, err := h.Listings.GetByID(ctx, id)
	if err != nil || listing.Kind != model.KindProduct {
		if err == nil || err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch product"})
	}

	applyProductFields(&listing, req)
	if listing.Title == "" || listing.Author == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and author are required"})
	}
	if listing.Price < 0 || listing.Stock < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price and stock must not be negative"})
	}
	if listing.Condition != "" && !model.ValidProductCondition(listing.Condition) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "condition must be new or used"})
	}

	if err := h.Listings.Update(ctx, &listing); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}
	return c.JSON(http.StatusOK, listing)
}

// Delete handles DELETE /v1/products/:id (admin).
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	listing, err := h.Listings.GetByID(ctx, id)
	if err != nil || listing.Kind != model.KindProduct {
		if err == nil || err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch product"})
	}
	if err := h.Listings.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

func applyProductFields(l *model.Listing, req productReq) {
	if req.Title != nil {
		l.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		l.Author = strings.TrimSpace(*req.Author)
	}
	if req.ISBN != nil {
		l.ISBN = strings.TrimSpace(*req.ISBN)
	}
	if req.Publisher != nil {
		l.Publisher = strings.TrimSpace(*req.Publisher)
	}
	if req.PublicationYear != nil {
		l.PublicationYear = *req.PublicationYear
	}
	if req.Pages != nil {
		l.Pages = *req.Pages
	}
	if req.Category != nil {
		l.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Price != nil {
		l.Price = *req.Price
	}
	if req.Condition != nil {
		l.Condition = strings.ToLower(strings.TrimSpace(*req.Condition))
	}
	if req.Stock != nil {
		l.Stock = *req.Stock
	}
	if req.Images != nil {
		l.Images = *req.Images
	}
}
