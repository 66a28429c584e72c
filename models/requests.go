package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest represents the request to create a new account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=256"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents an email/password authentication request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// OAuthLoginRequest represents a login with a provider-verified profile.
type OAuthLoginRequest struct {
	Provider   string `json:"provider" binding:"required,oneof=google github"`
	ProviderID string `json:"provider_id" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required,max=256"`
}

// RefreshTokenRequest represents a token refresh request.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse represents the authentication response.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// ForgotPasswordRequest starts the OTP reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes the OTP reset flow.
type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required,len=6"`
	Password string `json:"password" binding:"required,min=8"`
}

// CreateLostItemRequest represents the request to report a lost item.
type CreateLostItemRequest struct {
	Title       string    `json:"title" binding:"required,max=256"`
	Description string    `json:"description" binding:"max=2000"`
	Category    string    `json:"category" binding:"required"`
	Location    string    `json:"location" binding:"required,max=256"`
	DateLost    time.Time `json:"date_lost" binding:"required"`
}

// UpdateLostItemRequest represents a partial update to a lost item.
type UpdateLostItemRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,max=256"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	Location    *string `json:"location,omitempty" binding:"omitempty,max=256"`
	Status      *string `json:"status,omitempty" binding:"omitempty,oneof=LOST RESOLVED"`
}

// CreateFoundItemRequest represents the request to report a found item.
type CreateFoundItemRequest struct {
	Title         string    `json:"title" binding:"required,max=256"`
	Description   string    `json:"description" binding:"max=2000"`
	Category      string    `json:"category" binding:"required"`
	Location      string    `json:"location" binding:"required,max=256"`
	DateFound     time.Time `json:"date_found" binding:"required"`
	HandedToAdmin bool      `json:"handed_to_admin"`
}

// UpdateFoundItemRequest represents a partial update to a found item.
type UpdateFoundItemRequest struct {
	Title         *string `json:"title,omitempty" binding:"omitempty,max=256"`
	Description   *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	Location      *string `json:"location,omitempty" binding:"omitempty,max=256"`
	Status        *string `json:"status,omitempty" binding:"omitempty,oneof=FOUND RESOLVED"`
	HandedToAdmin *bool   `json:"handed_to_admin,omitempty"`
}

// CreateFoundItemResponse is the found item plus the number of automatic
// match candidates generated for it.
type CreateFoundItemResponse struct {
	FoundItem        *FoundItem `json:"found_item"`
	PotentialMatches int        `json:"potentialMatches"`
}

// ItemFilter narrows item listings. Page is 1-based.
type ItemFilter struct {
	Category      string
	Status        string
	Search        string
	HandedToAdmin *bool
	Page          int
	PageSize      int
}

// CreateMatchRequest represents a manual match claim.
type CreateMatchRequest struct {
	LostItemID  string `json:"lost_item_id" binding:"required"`
	FoundItemID string `json:"found_item_id" binding:"required"`
}

// UpdateMatchRequest confirms or rejects a pending match.
type UpdateMatchRequest struct {
	Status string `json:"status" binding:"required,oneof=CONFIRMED REJECTED"`
}

// CreateBookRequest represents the request to list a book.
type CreateBookRequest struct {
	Title       string          `json:"title" binding:"required,max=256"`
	Author      string          `json:"author" binding:"required,max=256"`
	Subject     string          `json:"subject" binding:"max=128"`
	ListingType string          `json:"listing_type" binding:"required,oneof=SALE RENT"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Description string          `json:"description" binding:"max=2000"`
}

// UpdateBookRequest represents a partial update to a book listing.
type UpdateBookRequest struct {
	Title       *string          `json:"title,omitempty" binding:"omitempty,max=256"`
	Author      *string          `json:"author,omitempty" binding:"omitempty,max=256"`
	Subject     *string          `json:"subject,omitempty" binding:"omitempty,max=128"`
	ListingType *string          `json:"listing_type,omitempty" binding:"omitempty,oneof=SALE RENT"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty" binding:"omitempty,max=2000"`
	Status      *string          `json:"status,omitempty" binding:"omitempty,oneof=AVAILABLE RESERVED SOLD"`
}

// CreateBookBorrowRequest represents a borrow/buy request for a book.
type CreateBookBorrowRequest struct {
	Message string `json:"message" binding:"max=1000"`
}

// ReviewBookRequestRequest approves or rejects a book request.
type ReviewBookRequestRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// BookFilter narrows book listings.
type BookFilter struct {
	Subject     string
	ListingType string
	Status      string
	Search      string
	Page        int
	PageSize    int
}

// CreateEventRequest represents the request to post a campus event.
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,max=256"`
	Description string    `json:"description" binding:"max=2000"`
	Location    string    `json:"location" binding:"required,max=256"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required,gtfield=StartsAt"`
}

// UpdateEventRequest represents a partial update to an event.
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty" binding:"omitempty,max=256"`
	Description *string    `json:"description,omitempty" binding:"omitempty,max=2000"`
	Location    *string    `json:"location,omitempty" binding:"omitempty,max=256"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

// CreateCoordinatorRequestRequest represents a coordinator role application.
type CreateCoordinatorRequestRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// ReviewCoordinatorRequestRequest approves or rejects an application.
type ReviewCoordinatorRequestRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// AdminNotifyRequest is an admin broadcast to one user or everyone.
type AdminNotifyRequest struct {
	UserID  string `json:"user_id,omitempty"`
	Title   string `json:"title" binding:"required,max=256"`
	Message string `json:"message" binding:"required,max=4000"`
}

// AdminNotifyResponse reports broadcast delivery, best effort only.
type AdminNotifyResponse struct {
	Notified     int      `json:"notified"`
	EmailsSent   int      `json:"emails_sent"`
	FailedEmails []string `json:"failed_emails,omitempty"`
}

// ListResponse is a paginated collection envelope.
type ListResponse[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
