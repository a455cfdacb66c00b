package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookmarket/internal/model"
	"github.com/iliyamo/bookmarket/internal/repository"
)

// SubmissionHandler manages the book buy-back workflow: sellers submit
// books, admins review and make offers, sellers accept.
type SubmissionHandler struct {
	Submissions SubmissionStore
}

// NewSubmissionHandler constructs a SubmissionHandler.
func NewSubmissionHandler(subs SubmissionStore) *SubmissionHandler {
	if subs == nil {
		panic("nil store passed to NewSubmissionHandler")
	}
	return &SubmissionHandler{Submissions: subs}
}

type submissionReq struct {
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	ISBN            string   `json:"isbn"`
	Publisher       string   `json:"publisher"`
	PublicationYear int      `json:"publicationYear"`
	Category        string   `json:"category"`
	Condition       string   `json:"condition"`
	Description     string   `json:"description"`
	Images          []string `json:"images"`
	SellerName      string   `json:"sellerName"`
	SellerEmail     string   `json:"sellerEmail"`
	SellerPhone     string   `json:"sellerPhone"`
}

// Create handles POST /v1/book-submissions. The endpoint is public; the seller
// identifies by email, which later scopes listing and the accept action.
func (h *SubmissionHandler) Create(c echo.Context) error {
	var req submissionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.SellerName = strings.TrimSpace(req.SellerName)
	req.SellerEmail = strings.ToLower(strings.TrimSpace(req.SellerEmail))
	if req.Title == "" || req.Author == "" || req.SellerName == "" || req.SellerEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, author, sellerName and sellerEmail are required"})
	}
	if !model.ValidBookCondition(req.Condition) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book condition"})
	}
	if len(req.Images) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one image is required"})
	}

	sub := model.BookSubmission{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            strings.TrimSpace(req.ISBN),
		Publisher:       strings.TrimSpace(req.Publisher),
		PublicationYear: req.PublicationYear,
		Category:        strings.TrimSpace(req.Category),
		Condition:       strings.ToLower(strings.TrimSpace(req.Condition)),
		Description:     req.Description,
		Images:          req.Images,
		SellerName:      req.SellerName,
		SellerEmail:     req.SellerEmail,
		SellerPhone:     strings.TrimSpace(req.SellerPhone),
		Status:          model.SubmissionPending,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Submissions.Create(ctx, &sub); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save submission"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": sub.ID})
}

// List handles GET /v1/book-submissions. Admins see every submission; everyone
// else sees only submissions matching their token email.
func (h *SubmissionHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var (
		subs []model.BookSubmission
		err  error
	)
	if isAdmin(c) {
		subs, err = h.Submissions.ListAll(ctx)
	} else {
		subs, err = h.Submissions.ListBySeller(ctx, getEmail(c))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch submissions"})
	}
	if subs == nil {
		subs = []model.BookSubmission{}
	}
	return c.JSON(http.StatusOK, echo.Map{"submissions": subs})
}

// Get handles GET /v1/book-submissions/:id for the owner or an admin.
func (h *SubmissionHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid submission id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	sub, err := h.Submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "submission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch submission"})
	}
	if !isAdmin(c) && sub.SellerEmail != getEmail(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not the submission owner"})
	}
	return c.JSON(http.StatusOK, sub)
}

type submissionUpdateReq struct {
	Status      string   `json:"status"`
	OfferAmount *float64 `json:"offerAmount"`
	Notes       *string  `json:"notes"`
}

// Update handles PUT /v1/book-submissions/:id. Admins may set any valid status
// plus the offer amount and notes. Sellers have exactly one move: accepting
// an offer on their own submission.
func (h *SubmissionHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid submission id"})
	}

	var req submissionUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	sub, err := h.Submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "submission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch submission"})
	}

	if isAdmin(c) {
		if req.Status != "" {
			if !model.ValidSubmissionStatus(req.Status) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
			}
			sub.Status = req.Status
		}
		if req.OfferAmount != nil {
			sub.OfferAmount = req.OfferAmount
		}
		if req.Notes != nil {
			sub.Notes = *req.Notes
		}
	} else {
		if sub.SellerEmail != getEmail(c) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not the submission owner"})
		}
		if req.Status != model.SubmissionAccepted {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "sellers may only accept an offer"})
		}
		if sub.Status != model.SubmissionOffered {
			return c.JSON(http.StatusConflict, echo.Map{"error": "submission has no open offer"})
		}
		sub.Status = model.SubmissionAccepted
	}

	if err := h.Submissions.Update(ctx, &sub); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update submission"})
	}
	return c.JSON(http.StatusOK, sub)
}
