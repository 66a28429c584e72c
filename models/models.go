package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User roles.
const (
	RoleUser        = "USER"
	RoleCoordinator = "COORDINATOR"
	RoleAdmin       = "ADMIN"
)

// Item categories shared by lost and found items. Category equality is the
// sole signal used by the automatic matcher.
const (
	CategoryElectronics = "ELECTRONICS"
	CategoryBook        = "BOOK"
	CategoryIDCard      = "ID_CARD"
	CategoryClothing    = "CLOTHING"
	CategoryAccessory   = "ACCESSORY"
	CategoryDocument    = "DOCUMENT"
	CategoryKey         = "KEY"
	CategoryOther       = "OTHER"
)

// Item statuses.
const (
	LostStatusLost      = "LOST"
	LostStatusResolved  = "RESOLVED"
	FoundStatusFound    = "FOUND"
	FoundStatusResolved = "RESOLVED"
)

// Match statuses and similarity constants. Automatic matches carry a fixed
// 0.8 similarity, manual claims 1.0 — the value distinguishes the two paths,
// it is not a computed score.
const (
	MatchStatusPending   = "PENDING"
	MatchStatusConfirmed = "CONFIRMED"
	MatchStatusRejected  = "REJECTED"

	SimilarityAuto   = 0.8
	SimilarityManual = 1.0
)

// Notification types.
const (
	NotificationMatchFound     = "MATCH_FOUND"
	NotificationMatchConfirmed = "MATCH_CONFIRMED"
	NotificationBookRequest    = "BOOK_REQUEST"
	NotificationEvent          = "EVENT"
	NotificationCoordinator    = "COORDINATOR"
	NotificationInfo           = "INFO"
)

// Book listing types and statuses.
const (
	ListingSale = "SALE"
	ListingRent = "RENT"

	BookStatusAvailable = "AVAILABLE"
	BookStatusReserved  = "RESERVED"
	BookStatusSold      = "SOLD"
)

// Review statuses shared by book requests and coordinator requests.
const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// OTP purposes.
const (
	OTPPurposeReset = "RESET"
	OTPPurposeSetup = "SETUP"
)

// User represents an account. PasswordHash is empty for OAuth-only accounts.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LostItem is a user's report of a lost belonging.
type LostItem struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	DateLost    time.Time `json:"date_lost"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FoundItem is a report of a recovered belonging. Creating one triggers the
// match scan exactly once; later lost-item reports are never re-scanned.
type FoundItem struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Location      string    `json:"location"`
	DateFound     time.Time `json:"date_found"`
	Status        string    `json:"status"`
	HandedToAdmin bool      `json:"handed_to_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Match links one lost item to one found item. UserID is the owner of the
// lost item, the person who reviews the match.
type Match struct {
	ID          string    `json:"id"`
	LostItemID  string    `json:"lost_item_id"`
	FoundItemID string    `json:"found_item_id"`
	UserID      string    `json:"user_id"`
	Similarity  float64   `json:"similarity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// MatchWithItems is a match joined with summaries of both sides for listing.
type MatchWithItems struct {
	Match
	LostItem  *LostItem  `json:"lost_item,omitempty"`
	FoundItem *FoundItem `json:"found_item,omitempty"`
}

// Notification is an in-app message for a user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Book is a marketplace listing for sale or rent.
type Book struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Subject     string          `json:"subject"`
	ListingType string          `json:"listing_type"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BookRequest is a borrow/buy request against a listing.
type BookRequest struct {
	ID          string    `json:"id"`
	BookID      string    `json:"book_id"`
	RequesterID string    `json:"requester_id"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Event is a campus event created by a coordinator or admin.
type Event struct {
	ID          string    `json:"id"`
	CreatedBy   string    `json:"created_by"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventWithInterest is an event joined with its interest count and whether
// the requesting user has expressed interest.
type EventWithInterest struct {
	Event
	InterestedCount int  `json:"interested_count"`
	Interested      bool `json:"interested"`
}

// CoordinatorRequest is a user's application for the coordinator role.
type CoordinatorRequest struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	ReviewedBy string    `json:"reviewed_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidCategory reports whether c is one of the fixed item categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryElectronics, CategoryBook, CategoryIDCard, CategoryClothing,
		CategoryAccessory, CategoryDocument, CategoryKey, CategoryOther:
		return true
	}
	return false
}
