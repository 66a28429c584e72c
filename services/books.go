package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"college-reclaim/database"
	"college-reclaim/models"
)

// BookService manages the textbook marketplace and its borrow/buy requests.
type BookService struct {
	db            *sql.DB
	notifications *NotificationService
}

// NewBookService creates a new book service.
func NewBookService(db *sql.DB, notifications *NotificationService) *BookService {
	return &BookService{db: db, notifications: notifications}
}

// Create lists a book for sale or rent.
func (s *BookService) Create(ctx context.Context, userID string, req models.CreateBookRequest) (*models.Book, error) {
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", database.ErrInvalidInput)
	}

	book := &models.Book{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Author:      req.Author,
		Subject:     req.Subject,
		ListingType: req.ListingType,
		Price:       req.Price,
		Description: req.Description,
		Status:      models.BookStatusAvailable,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO books (id, user_id, title, author, subject, listing_type, price, description, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		book.ID, book.UserID, book.Title, book.Author, book.Subject, book.ListingType,
		book.Price.StringFixed(2), book.Description, book.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to insert book: %w", err)
	}
	return book, nil
}

// Get retrieves a book by ID.
func (s *BookService) Get(ctx context.Context, id string) (*models.Book, error) {
	book := &models.Book{}
	var price string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, title, author, subject, listing_type, price, description, status, created_at, updated_at FROM books WHERE id = ?",
		id).Scan(&book.ID, &book.UserID, &book.Title, &book.Author, &book.Subject,
		&book.ListingType, &price, &book.Description, &book.Status, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query book: %w", err)
	}

	book.Price, err = parsePrice(price)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// List returns books matching the filter with a total count.
func (s *BookService) List(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.Subject != "" {
		conditions = append(conditions, "subject = ?")
		args = append(args, filter.Subject)
	}
	if filter.ListingType != "" {
		conditions = append(conditions, "listing_type = ?")
		args = append(args, filter.ListingType)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(title LIKE ? OR author LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := "SELECT id, user_id, title, author, subject, listing_type, price, description, status, created_at, updated_at FROM books" +
		where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		var book models.Book
		var price string
		if err := rows.Scan(&book.ID, &book.UserID, &book.Title, &book.Author, &book.Subject,
			&book.ListingType, &price, &book.Description, &book.Status, &book.CreatedAt, &book.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		book.Price, err = parsePrice(price)
		if err != nil {
			return nil, 0, err
		}
		books = append(books, book)
	}
	return books, total, rows.Err()
}

// Update updates a listing. Only the owner or an admin may mutate.
func (s *BookService) Update(ctx context.Context, userID, role, id string, req models.UpdateBookRequest) (*models.Book, error) {
	book, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID && role != models.RoleAdmin {
		return nil, database.ErrForbidden
	}

	updates := []string{}
	args := []interface{}{}
	if req.Title != nil {
		updates = append(updates, "title = ?")
		args = append(args, *req.Title)
		book.Title = *req.Title
	}
	if req.Author != nil {
		updates = append(updates, "author = ?")
		args = append(args, *req.Author)
		book.Author = *req.Author
	}
	if req.Subject != nil {
		updates = append(updates, "subject = ?")
		args = append(args, *req.Subject)
		book.Subject = *req.Subject
	}
	if req.ListingType != nil {
		updates = append(updates, "listing_type = ?")
		args = append(args, *req.ListingType)
		book.ListingType = *req.ListingType
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", database.ErrInvalidInput)
		}
		updates = append(updates, "price = ?")
		args = append(args, req.Price.StringFixed(2))
		book.Price = *req.Price
	}
	if req.Description != nil {
		updates = append(updates, "description = ?")
		args = append(args, *req.Description)
		book.Description = *req.Description
	}
	if req.Status != nil {
		updates = append(updates, "status = ?")
		args = append(args, *req.Status)
		book.Status = *req.Status
	}
	if len(updates) == 0 {
		return book, nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE books SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = ?", strings.Join(updates, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	book.UpdatedAt = time.Now()
	return book, nil
}

// Delete removes a listing. Only the owner or an admin may delete.
func (s *BookService) Delete(ctx context.Context, userID, role, id string) error {
	book, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if book.UserID != userID && role != models.RoleAdmin {
		return database.ErrForbidden
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// CreateRequest records a borrow/buy request and notifies the listing owner.
func (s *BookService) CreateRequest(ctx context.Context, requesterID, bookID, message string) (*models.BookRequest, error) {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID == requesterID {
		return nil, fmt.Errorf("%w: cannot request your own listing", database.ErrInvalidInput)
	}
	if book.Status != models.BookStatusAvailable {
		return nil, fmt.Errorf("%w: book is %s", database.ErrDuplicate, book.Status)
	}

	request := &models.BookRequest{
		ID:          uuid.NewString(),
		BookID:      bookID,
		RequesterID: requesterID,
		Message:     message,
		Status:      models.RequestStatusPending,
		CreatedAt:   time.Now(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO book_requests (id, book_id, requester_id, message, status) VALUES (?, ?, ?, ?, ?)",
		request.ID, request.BookID, request.RequesterID, request.Message, request.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to insert book request: %w", err)
	}

	if err := s.notifications.Create(ctx, book.UserID,
		"New request for your book",
		fmt.Sprintf("Someone is interested in %q.", book.Title),
		models.NotificationBookRequest); err != nil {
		return nil, err
	}

	return request, nil
}

// ListRequests returns requests for a book. Only the owner may view them.
func (s *BookService) ListRequests(ctx context.Context, userID, bookID string) ([]models.BookRequest, error) {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, database.ErrForbidden
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, book_id, requester_id, message, status, created_at FROM book_requests WHERE book_id = ? ORDER BY created_at DESC",
		bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query book requests: %w", err)
	}
	defer rows.Close()

	requests := []models.BookRequest{}
	for rows.Next() {
		var r models.BookRequest
		if err := rows.Scan(&r.ID, &r.BookID, &r.RequesterID, &r.Message, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan book request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// ReviewRequest lets the listing owner approve or reject a pending request.
// Approval reserves the book and rejects the other pending requests for it.
func (s *BookService) ReviewRequest(ctx context.Context, userID, requestID, action string) (*models.BookRequest, error) {
	request := &models.BookRequest{ID: requestID}
	err := s.db.QueryRowContext(ctx,
		"SELECT book_id, requester_id, message, status, created_at FROM book_requests WHERE id = ?",
		requestID).Scan(&request.BookID, &request.RequesterID, &request.Message, &request.Status, &request.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query book request: %w", err)
	}

	book, err := s.Get(ctx, request.BookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, database.ErrForbidden
	}
	if request.Status != models.RequestStatusPending {
		return nil, fmt.Errorf("%w: request already %s", database.ErrDuplicate, request.Status)
	}

	if action == "approve" {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx,
			"UPDATE book_requests SET status = ? WHERE id = ?",
			models.RequestStatusApproved, requestID); err != nil {
			return nil, fmt.Errorf("failed to approve request: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE book_requests SET status = ? WHERE book_id = ? AND id != ? AND status = ?",
			models.RequestStatusRejected, request.BookID, requestID, models.RequestStatusPending); err != nil {
			return nil, fmt.Errorf("failed to reject other requests: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE books SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			models.BookStatusReserved, request.BookID); err != nil {
			return nil, fmt.Errorf("failed to reserve book: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		request.Status = models.RequestStatusApproved
	} else {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE book_requests SET status = ? WHERE id = ?",
			models.RequestStatusRejected, requestID); err != nil {
			return nil, fmt.Errorf("failed to reject request: %w", err)
		}
		request.Status = models.RequestStatusRejected
	}

	if err := s.notifications.Create(ctx, request.RequesterID,
		fmt.Sprintf("Your book request was %s", strings.ToLower(request.Status)),
		fmt.Sprintf("The owner of %q %s your request.", book.Title, strings.ToLower(request.Status)),
		models.NotificationBookRequest); err != nil {
		return nil, err
	}

	return request, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse price %q: %w", s, err)
	}
	return d, nil
}
