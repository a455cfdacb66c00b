package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookmarket/internal/model"
	"github.com/iliyamo/bookmarket/internal/repository"
)

// ContentHandler serves the public content hub and its admin moderation
// endpoints. Anyone may submit content; it stays invisible until an admin
// approves it.
type ContentHandler struct {
	Listings ListingStore
}

// NewContentHandler constructs a ContentHandler.
func NewContentHandler(listings ListingStore) *ContentHandler {
	if listings == nil {
		panic("nil listing store passed to NewContentHandler")
	}
	return &ContentHandler{Listings: listings}
}

type submitContentReq struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	DownloadLink string `json:"downloadLink"`
	Author       string `json:"author"`
}

// Submit handles POST /v1/content. The status is forced to pending
// regardless of what the client sends; moderation is the only way to
// approve.
func (h *ContentHandler) Submit(c echo.Context) error {
	var req submitContentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if req.Title == "" || req.Description == "" || req.Author == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, description and author are required"})
	}
	if !model.ValidContentCategory(req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
	}
	if !model.ValidDownloadLink(req.DownloadLink) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "download link must be from MediaFire, MEGA, or GoFile.io"})
	}

	listing := &model.Listing{
		Kind:         model.KindContent,
		Title:        req.Title,
		Description:  req.Description,
		Category:     strings.ToLower(strings.TrimSpace(req.Category)),
		DownloadLink: strings.TrimSpace(req.DownloadLink),
		Author:       req.Author,
		Status:       model.StatusPending,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Listings.Create(ctx, listing); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create content"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": listing.ID})
}

// List handles GET /v1/content: approved content only, newest first. An
// optional ?limit=N caps the result (the landing page asks for 6).
func (h *ContentHandler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Listings.List(ctx, model.KindContent, model.StatusApproved, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch content"})
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /v1/content/:id. Only approved content is visible here;
// pending and rejected items 404 for the public.
func (h *ContentHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	item, err := h.Listings.GetApprovedByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "content not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch content"})
	}
	return c.JSON(http.StatusOK, item)
}

// TrackDownload handles POST /v1/content/:id/download and bumps the
// download counter.
func (h *ContentHandler) TrackDownload(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Listings.IncrementDownloads(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "content not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to track download"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Pending handles GET /v1/admin/pending: the moderation queue, newest
// first. Admin-gated by middleware.
func (h *ContentHandler) Pending(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	items, err := h.Listings.List(ctx, model.KindContent, model.StatusPending, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch pending content"})
	}
	return c.JSON(http.StatusOK, items)
}

// Approve handles POST /v1/admin/approve/:id: the content becomes publicly
// queryable under status=approved. Approval never deletes anything.
func (h *ContentHandler) Approve(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Listings.UpdateStatus(ctx, id, model.StatusApproved); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "content not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to approve content"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Reject handles POST /v1/admin/reject/:id: rejection is a hard delete, the
// record disappears from every listing.
func (h *ContentHandler) Reject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Listings.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "content not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reject content"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
