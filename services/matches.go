package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"college-reclaim/database"
	"college-reclaim/models"
)

// MatchService manages match review and manual claims.
type MatchService struct {
	db            *sql.DB
	items         *ItemService
	notifications *NotificationService
}

// NewMatchService creates a new match service.
func NewMatchService(db *sql.DB, items *ItemService, notifications *NotificationService) *MatchService {
	return &MatchService{
		db:            db,
		items:         items,
		notifications: notifications,
	}
}

// List returns matches where the caller owns either side, newest first,
// joined with both item summaries.
func (s *MatchService) List(ctx context.Context, userID string) ([]models.MatchWithItems, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.lost_item_id, m.found_item_id, m.user_id, m.similarity, m.status, m.created_at,
		        li.id, li.user_id, li.title, li.description, li.category, li.location, li.date_lost, li.status, li.created_at, li.updated_at,
		        fi.id, fi.user_id, fi.title, fi.description, fi.category, fi.location, fi.date_found, fi.status, fi.handed_to_admin, fi.created_at, fi.updated_at
		 FROM matches m
		 JOIN lost_items li ON li.id = m.lost_item_id
		 JOIN found_items fi ON fi.id = m.found_item_id
		 WHERE li.user_id = ? OR fi.user_id = ?
		 ORDER BY m.created_at DESC`,
		userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := []models.MatchWithItems{}
	for rows.Next() {
		var m models.MatchWithItems
		var li models.LostItem
		var fi models.FoundItem
		if err := rows.Scan(
			&m.ID, &m.LostItemID, &m.FoundItemID, &m.UserID, &m.Similarity, &m.Status, &m.CreatedAt,
			&li.ID, &li.UserID, &li.Title, &li.Description, &li.Category, &li.Location, &li.DateLost, &li.Status, &li.CreatedAt, &li.UpdatedAt,
			&fi.ID, &fi.UserID, &fi.Title, &fi.Description, &fi.Category, &fi.Location, &fi.DateFound, &fi.Status, &fi.HandedToAdmin, &fi.CreatedAt, &fi.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.LostItem = &li
		m.FoundItem = &fi
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// CreateManual records a user's claim that a found item matches their lost
// item. Unlike the automatic path, it refuses a duplicate pair.
func (s *MatchService) CreateManual(ctx context.Context, userID string, req models.CreateMatchRequest) (*models.Match, error) {
	lost, err := s.items.GetLostItem(ctx, req.LostItemID)
	if err != nil {
		return nil, err
	}
	if lost.UserID != userID {
		return nil, database.ErrForbidden
	}

	found, err := s.items.GetFoundItem(ctx, req.FoundItemID)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM matches WHERE lost_item_id = ? AND found_item_id = ?)",
		req.LostItemID, req.FoundItemID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing match: %w", err)
	}
	if exists {
		return nil, database.ErrDuplicate
	}

	match := &models.Match{
		ID:          uuid.NewString(),
		LostItemID:  req.LostItemID,
		FoundItemID: req.FoundItemID,
		UserID:      userID,
		Similarity:  models.SimilarityManual,
		Status:      models.MatchStatusPending,
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO matches (id, lost_item_id, found_item_id, user_id, similarity, status) VALUES (?, ?, ?, ?, ?, ?)",
		match.ID, match.LostItemID, match.FoundItemID, match.UserID, match.Similarity, match.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to insert match: %w", err)
	}

	if err := s.notifications.Create(ctx, found.UserID,
		"Someone claimed an item you found",
		fmt.Sprintf("The owner of %q believes it matches the item %q you reported.", lost.Title, found.Title),
		models.NotificationMatchFound); err != nil {
		return nil, err
	}

	return match, nil
}

// UpdateStatus lets the lost item's owner confirm or reject a pending match.
// Confirming resolves both items and notifies the found-item reporter.
func (s *MatchService) UpdateStatus(ctx context.Context, userID, matchID, status string) (*models.Match, error) {
	match := &models.Match{ID: matchID}
	err := s.db.QueryRowContext(ctx,
		"SELECT lost_item_id, found_item_id, user_id, similarity, status, created_at FROM matches WHERE id = ?",
		matchID).Scan(&match.LostItemID, &match.FoundItemID, &match.UserID,
		&match.Similarity, &match.Status, &match.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query match: %w", err)
	}

	if match.UserID != userID {
		return nil, database.ErrForbidden
	}
	if match.Status != models.MatchStatusPending {
		return nil, fmt.Errorf("%w: match already %s", database.ErrDuplicate, match.Status)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE matches SET status = ? WHERE id = ?", status, matchID); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}
	match.Status = status

	if status == models.MatchStatusConfirmed {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE lost_items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			models.LostStatusResolved, match.LostItemID); err != nil {
			return nil, fmt.Errorf("failed to resolve lost item: %w", err)
		}
		if _, err := s.db.ExecContext(ctx,
			"UPDATE found_items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			models.FoundStatusResolved, match.FoundItemID); err != nil {
			return nil, fmt.Errorf("failed to resolve found item: %w", err)
		}

		found, err := s.items.GetFoundItem(ctx, match.FoundItemID)
		if err == nil {
			if err := s.notifications.Create(ctx, found.UserID,
				"Match confirmed",
				fmt.Sprintf("The owner confirmed that %q matches their lost item. Thank you for reporting it.", found.Title),
				models.NotificationMatchConfirmed); err != nil {
				return nil, err
			}
		}
	}

	return match, nil
}
