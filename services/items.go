package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"college-reclaim/database"
	"college-reclaim/email"
	"college-reclaim/models"
)

// Mailer delivers a single email. Satisfied by *email.Sender.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, plainText, htmlContent string) error
}

// ItemService manages lost and found item reports and generates match
// candidates when a found item is created.
type ItemService struct {
	db            *sql.DB
	notifications *NotificationService
	mailer        Mailer
}

// NewItemService creates a new item service.
func NewItemService(db *sql.DB, notifications *NotificationService, mailer Mailer) *ItemService {
	return &ItemService{
		db:            db,
		notifications: notifications,
		mailer:        mailer,
	}
}

// CreateLostItem records a lost item report with status LOST.
func (s *ItemService) CreateLostItem(ctx context.Context, userID string, req models.CreateLostItemRequest) (*models.LostItem, error) {
	if !models.ValidCategory(req.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", database.ErrInvalidInput, req.Category)
	}

	item := &models.LostItem{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		DateLost:    req.DateLost,
		Status:      models.LostStatusLost,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO lost_items (id, user_id, title, description, category, location, date_lost, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		item.ID, item.UserID, item.Title, item.Description, item.Category, item.Location, item.DateLost, item.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to insert lost item: %w", err)
	}

	// Reporting a lost item never triggers a re-scan of existing found
	// items; matching runs only when a found item is created.
	return item, nil
}

// GetLostItem retrieves a lost item by ID.
func (s *ItemService) GetLostItem(ctx context.Context, id string) (*models.LostItem, error) {
	item := &models.LostItem{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, title, description, category, location, date_lost, status, created_at, updated_at FROM lost_items WHERE id = ?",
		id).Scan(&item.ID, &item.UserID, &item.Title, &item.Description, &item.Category,
		&item.Location, &item.DateLost, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query lost item: %w", err)
	}
	return item, nil
}

// ListLostItems returns lost items matching the filter with a total count.
func (s *ItemService) ListLostItems(ctx context.Context, filter models.ItemFilter) ([]models.LostItem, int, error) {
	where, args := buildItemFilter(filter, false)

	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lost_items"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count lost items: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := "SELECT id, user_id, title, description, category, location, date_lost, status, created_at, updated_at FROM lost_items" +
		where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query lost items: %w", err)
	}
	defer rows.Close()

	items := []models.LostItem{}
	for rows.Next() {
		var item models.LostItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Description, &item.Category,
			&item.Location, &item.DateLost, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan lost item: %w", err)
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// UpdateLostItem updates a lost item. Only the owner or an admin may mutate.
func (s *ItemService) UpdateLostItem(ctx context.Context, userID, role, id string, req models.UpdateLostItemRequest) (*models.LostItem, error) {
	item, err := s.GetLostItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID && role != models.RoleAdmin {
		return nil, database.ErrForbidden
	}

	updates := []string{}
	args := []interface{}{}
	if req.Title != nil {
		updates = append(updates, "title = ?")
		args = append(args, *req.Title)
		item.Title = *req.Title
	}
	if req.Description != nil {
		updates = append(updates, "description = ?")
		args = append(args, *req.Description)
		item.Description = *req.Description
	}
	if req.Location != nil {
		updates = append(updates, "location = ?")
		args = append(args, *req.Location)
		item.Location = *req.Location
	}
	if req.Status != nil {
		updates = append(updates, "status = ?")
		args = append(args, *req.Status)
		item.Status = *req.Status
	}
	if len(updates) == 0 {
		return item, nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE lost_items SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = ?", strings.Join(updates, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update lost item: %w", err)
	}
	item.UpdatedAt = time.Now()
	return item, nil
}

// DeleteLostItem removes a lost item. Only the owner or an admin may delete.
func (s *ItemService) DeleteLostItem(ctx context.Context, userID, role, id string) error {
	item, err := s.GetLostItem(ctx, id)
	if err != nil {
		return err
	}
	if item.UserID != userID && role != models.RoleAdmin {
		return database.ErrForbidden
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM lost_items WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete lost item: %w", err)
	}
	return nil
}

// CreateFoundItem records a found item report and runs the match scan once,
// at creation time. It returns the item and the number of candidates found.
func (s *ItemService) CreateFoundItem(ctx context.Context, userID string, req models.CreateFoundItemRequest) (*models.FoundItem, int, error) {
	if !models.ValidCategory(req.Category) {
		return nil, 0, fmt.Errorf("%w: unknown category %q", database.ErrInvalidInput, req.Category)
	}

	item := &models.FoundItem{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		DateFound:     req.DateFound,
		Status:        models.FoundStatusFound,
		HandedToAdmin: req.HandedToAdmin,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO found_items (id, user_id, title, description, category, location, date_found, status, handed_to_admin) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		item.ID, item.UserID, item.Title, item.Description, item.Category, item.Location,
		item.DateFound, item.Status, item.HandedToAdmin)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to insert found item: %w", err)
	}

	candidates, err := s.generateMatches(ctx, item)
	if err != nil {
		return nil, 0, err
	}

	return item, candidates, nil
}

// matchCandidate is one qualifying lost item from the category scan.
type matchCandidate struct {
	lostItemID string
	ownerID    string
	ownerEmail string
	lostTitle  string
}

// generateMatches scans lost items in the same category, owned by someone
// other than the reporter and still LOST, and records a match plus a
// notification for each. Category equality is the entire matching signal.
//
// The inserts run sequentially with no wrapping transaction and no existence
// check, so a repeated structurally identical report produces a second full
// set of rows and a mid-loop failure leaves earlier rows committed. The
// manual claim path in MatchService does check for duplicates; this path
// deliberately mirrors the long-standing behavior until product decides
// whether re-notifying is wanted.
func (s *ItemService) generateMatches(ctx context.Context, item *models.FoundItem) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT li.id, li.user_id, u.email, li.title
		 FROM lost_items li JOIN users u ON u.id = li.user_id
		 WHERE li.category = ? AND li.status = ? AND li.user_id != ?`,
		item.Category, models.LostStatusLost, item.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to query match candidates: %w", err)
	}
	defer rows.Close()

	candidates := []matchCandidate{}
	for rows.Next() {
		var c matchCandidate
		if err := rows.Scan(&c.lostItemID, &c.ownerID, &c.ownerEmail, &c.lostTitle); err != nil {
			return 0, fmt.Errorf("failed to scan match candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read match candidates: %w", err)
	}

	for _, c := range candidates {
		// Fixed similarity distinguishes automatic from manual matches;
		// no attribute beyond the category is scored.
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO matches (id, lost_item_id, found_item_id, user_id, similarity, status) VALUES (?, ?, ?, ?, ?, ?)",
			uuid.NewString(), c.lostItemID, item.ID, c.ownerID, models.SimilarityAuto, models.MatchStatusPending)
		if err != nil {
			return 0, fmt.Errorf("failed to insert match: %w", err)
		}

		if err := s.notifications.Create(ctx, c.ownerID,
			"Possible match for your lost item",
			fmt.Sprintf("A found item %q in category %s may match your lost item %q.", item.Title, item.Category, c.lostTitle),
			models.NotificationMatchFound); err != nil {
			return 0, err
		}

		if s.mailer != nil {
			msg := email.MatchAlert(c.lostTitle, item.Title, item.Location)
			recipient := c.ownerEmail
			go func() {
				if err := s.mailer.Send(context.Background(), recipient, msg.Subject, msg.PlainText, msg.HTML); err != nil {
					log.WithError(err).Warnf("Failed to send match alert to %s", recipient)
				}
			}()
		}
	}

	if err := s.notifications.Create(ctx, item.UserID,
		"Found item reported",
		fmt.Sprintf("Your found item %q was recorded. %d possible owner(s) were notified.", item.Title, len(candidates)),
		models.NotificationInfo); err != nil {
		return 0, err
	}

	log.Infof("Found item %s: %d match candidates in category %s", item.ID, len(candidates), item.Category)
	return len(candidates), nil
}

// GetFoundItem retrieves a found item by ID.
func (s *ItemService) GetFoundItem(ctx context.Context, id string) (*models.FoundItem, error) {
	item := &models.FoundItem{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, title, description, category, location, date_found, status, handed_to_admin, created_at, updated_at FROM found_items WHERE id = ?",
		id).Scan(&item.ID, &item.UserID, &item.Title, &item.Description, &item.Category,
		&item.Location, &item.DateFound, &item.Status, &item.HandedToAdmin, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query found item: %w", err)
	}
	return item, nil
}

// ListFoundItems returns found items matching the filter with a total count.
func (s *ItemService) ListFoundItems(ctx context.Context, filter models.ItemFilter) ([]models.FoundItem, int, error) {
	where, args := buildItemFilter(filter, true)

	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM found_items"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count found items: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := "SELECT id, user_id, title, description, category, location, date_found, status, handed_to_admin, created_at, updated_at FROM found_items" +
		where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query found items: %w", err)
	}
	defer rows.Close()

	items := []models.FoundItem{}
	for rows.Next() {
		var item models.FoundItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Description, &item.Category,
			&item.Location, &item.DateFound, &item.Status, &item.HandedToAdmin, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan found item: %w", err)
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// UpdateFoundItem updates a found item. Only the owner or an admin may mutate.
func (s *ItemService) UpdateFoundItem(ctx context.Context, userID, role, id string, req models.UpdateFoundItemRequest) (*models.FoundItem, error) {
	item, err := s.GetFoundItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID && role != models.RoleAdmin {
		return nil, database.ErrForbidden
	}

	updates := []string{}
	args := []interface{}{}
	if req.Title != nil {
		updates = append(updates, "title = ?")
		args = append(args, *req.Title)
		item.Title = *req.Title
	}
	if req.Description != nil {
		updates = append(updates, "description = ?")
		args = append(args, *req.Description)
		item.Description = *req.Description
	}
	if req.Location != nil {
		updates = append(updates, "location = ?")
		args = append(args, *req.Location)
		item.Location = *req.Location
	}
	if req.Status != nil {
		updates = append(updates, "status = ?")
		args = append(args, *req.Status)
		item.Status = *req.Status
	}
	if req.HandedToAdmin != nil {
		updates = append(updates, "handed_to_admin = ?")
		args = append(args, *req.HandedToAdmin)
		item.HandedToAdmin = *req.HandedToAdmin
	}
	if len(updates) == 0 {
		return item, nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE found_items SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = ?", strings.Join(updates, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update found item: %w", err)
	}
	item.UpdatedAt = time.Now()
	return item, nil
}

// DeleteFoundItem removes a found item. Only the owner or an admin may delete.
func (s *ItemService) DeleteFoundItem(ctx context.Context, userID, role, id string) error {
	item, err := s.GetFoundItem(ctx, id)
	if err != nil {
		return err
	}
	if item.UserID != userID && role != models.RoleAdmin {
		return database.ErrForbidden
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM found_items WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete found item: %w", err)
	}
	return nil
}

// buildItemFilter assembles the WHERE clause shared by both item listings.
func buildItemFilter(filter models.ItemFilter, found bool) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if found && filter.HandedToAdmin != nil {
		conditions = append(conditions, "handed_to_admin = ?")
		args = append(args, *filter.HandedToAdmin)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
