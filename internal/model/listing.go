package model

import (
	"net/url"
	"strings"
	"time"
)

// Listing kinds. The storefront and the content hub share one entity;
// Kind tells them apart.
const (
	KindContent = "content"
	KindProduct = "product"
)

// Moderation statuses for listings. User-submitted content starts as
// pending and only becomes publicly visible once approved. Products are
// entered by admins and are created approved.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// contentCategories enumerates the accepted categories for content listings.
var contentCategories = map[string]bool{
	"plugins":  true,
	"servers":  true,
	"mods":     true,
	"maps":     true,
	"textures": true,
	"other":    true,
}

// allowedLinkHosts lists the file hosts a content download link may point to.
// Links to any other host are rejected at submission time.
var allowedLinkHosts = []string{"mediafire.com", "mega.nz", "gofile.io"}

// productConditions enumerates the accepted condition grades for products.
var productConditions = map[string]bool{
	"new":  true,
	"used": true,
}

// Listing represents a row in the `listings` table. Content-only fields
// (DownloadLink, Downloads) are zero for products and vice versa; Kind
// decides which set is meaningful.
type Listing struct {
	ID          uint64 `json:"id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Author      string `json:"author"`
	Status      string `json:"status"`

	// Content fields.
	DownloadLink string `json:"downloadLink,omitempty"`
	Downloads    uint64 `json:"downloads"`

	// Product fields.
	ISBN            string   `json:"isbn,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	PublicationYear int      `json:"publicationYear,omitempty"`
	Pages           int      `json:"pages,omitempty"`
	Price           float64  `json:"price"`
	Condition       string   `json:"condition,omitempty"`
	Stock           int      `json:"stock"`
	Images          []string `json:"images,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidContentCategory reports whether s is an accepted content category.
func ValidContentCategory(s string) bool {
	return contentCategories[strings.ToLower(strings.TrimSpace(s))]
}

// ValidProductCondition reports whether s is an accepted product condition.
func ValidProductCondition(s string) bool {
	return productConditions[strings.ToLower(strings.TrimSpace(s))]
}

// ValidDownloadLink reports whether raw is an http(s) URL whose host is one
// of the allowed file hosts (or a subdomain of one).
func ValidDownloadLink(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range allowedLinkHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
