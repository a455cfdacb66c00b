package model

import (
	"strings"
	"time"
)

// BookSubmission statuses. A submission starts pending, moves through
// review and offer by an admin, and ends accepted/rejected/completed.
// Sellers may only perform the offered -> accepted transition.
const (
	SubmissionPending   = "pending"
	SubmissionReviewed  = "reviewed"
	SubmissionOffered   = "offered"
	SubmissionAccepted  = "accepted"
	SubmissionRejected  = "rejected"
	SubmissionCompleted = "completed"
)

var submissionStatuses = map[string]bool{
	SubmissionPending:   true,
	SubmissionReviewed:  true,
	SubmissionOffered:   true,
	SubmissionAccepted:  true,
	SubmissionRejected:  true,
	SubmissionCompleted: true,
}

// bookConditions enumerates the five accepted condition grades for
// buy-back submissions.
var bookConditions = map[string]bool{
	"excellent": true,
	"very-good": true,
	"good":      true,
	"fair":      true,
	"poor":      true,
}

// BookSubmission is a seller-initiated buy-back request for a physical
// book. OfferAmount is set by an admin when the status moves to offered.
type BookSubmission struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	PublicationYear int       `json:"publicationYear,omitempty"`
	Category        string    `json:"category,omitempty"`
	Condition       string    `json:"condition"`
	Description     string    `json:"description,omitempty"`
	Images          []string  `json:"images,omitempty"`
	SellerName      string    `json:"sellerName"`
	SellerEmail     string    `json:"sellerEmail"`
	SellerPhone     string    `json:"sellerPhone,omitempty"`
	Status          string    `json:"status"`
	OfferAmount     *float64  `json:"offerAmount,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ValidBookCondition reports whether s is one of the five condition grades.
func ValidBookCondition(s string) bool {
	return bookConditions[strings.ToLower(strings.TrimSpace(s))]
}

// ValidSubmissionStatus reports whether s is a known submission status.
func ValidSubmissionStatus(s string) bool {
	return submissionStatuses[strings.ToLower(strings.TrimSpace(s))]
}
