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

// BlogHandler serves blog and news posts. Reads are public; writes are
// behind the admin middleware.
type BlogHandler struct {
	Blogs BlogStore
}

// NewBlogHandler constructs a BlogHandler.
func NewBlogHandler(blogs BlogStore) *BlogHandler {
	if blogs == nil {
		panic("nil store passed to NewBlogHandler")
	}
	return &BlogHandler{Blogs: blogs}
}

type blogReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`
	Type    string `json:"type"`
}

func (r *blogReq) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if r.Type == "" {
		r.Type = model.BlogTypePost
	}
}

func (r blogReq) valid() bool {
	return r.Title != "" && r.Content != "" &&
		(r.Type == model.BlogTypePost || r.Type == model.BlogTypeNews)
}

// List handles GET /v1/blogs with an optional ?type=blog|news filter.
func (h *BlogHandler) List(c echo.Context) error {
	typ := strings.ToLower(c.QueryParam("type"))
	if typ != "" && typ != model.BlogTypePost && typ != model.BlogTypeNews {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid type filter"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	posts, err := h.Blogs.List(ctx, typ)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch posts"})
	}
	if posts == nil {
		posts = []model.Blog{}
	}
	return c.JSON(http.StatusOK, echo.Map{"blogs": posts})
}

// Get handles GET /v1/blogs/:id.
func (h *BlogHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	post, err := h.Blogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch post"})
	}
	return c.JSON(http.StatusOK, post)
}

// Create handles POST /v1/blogs (admin).
func (h *BlogHandler) Create(c echo.Context) error {
	var req blogReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.normalize()
	if !req.valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, content and a valid type are required"})
	}

	post := model.Blog{
		Title:   req.Title,
		Content: req.Content,
		Excerpt: req.Excerpt,
		Type:    req.Type,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Blogs.Create(ctx, &post); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save post"})
	}
	return c.JSON(http.StatusCreated, post)
}

// Update handles PUT /v1/blogs/:id (admin).
func (h *BlogHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	var req blogReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.normalize()
	if !req.valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, content and a valid type are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	post, err := h.Blogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch post"})
	}

	post.Title = req.Title
	post.Content = req.Content
	post.Excerpt = req.Excerpt
	post.Type = req.Type
	if err := h.Blogs.Update(ctx, &post); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update post"})
	}
	return c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /v1/blogs/:id (admin).
func (h *BlogHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Blogs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete post"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
