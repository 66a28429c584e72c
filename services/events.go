package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"college-reclaim/database"
	"college-reclaim/models"
)

// EventService manages campus events and interest toggling.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new event service.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// Create posts a new event. Role checks happen in the router; the service
// records whoever the router let through.
func (s *EventService) Create(ctx context.Context, userID string, req models.CreateEventRequest) (*models.Event, error) {
	event := &models.Event{
		ID:          uuid.NewString(),
		CreatedBy:   userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, created_by, title, description, location, starts_at, ends_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.CreatedBy, event.Title, event.Description, event.Location, event.StartsAt, event.EndsAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return event, nil
}

// Get retrieves an event with its interest count and the caller's interest.
func (s *EventService) Get(ctx context.Context, userID, id string) (*models.EventWithInterest, error) {
	event := &models.EventWithInterest{}
	err := s.db.QueryRowContext(ctx,
		`SELECT e.id, e.created_by, e.title, e.description, e.location, e.starts_at, e.ends_at, e.created_at, e.updated_at,
		        (SELECT COUNT(*) FROM event_interests ei WHERE ei.event_id = e.id),
		        EXISTS(SELECT 1 FROM event_interests ei WHERE ei.event_id = e.id AND ei.user_id = ?)
		 FROM events e WHERE e.id = ?`,
		userID, id).Scan(&event.ID, &event.CreatedBy, &event.Title, &event.Description,
		&event.Location, &event.StartsAt, &event.EndsAt, &event.CreatedAt, &event.UpdatedAt,
		&event.InterestedCount, &event.Interested)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	return event, nil
}

// List returns events, soonest upcoming first, with interest counts.
func (s *EventService) List(ctx context.Context, userID string) ([]models.EventWithInterest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.created_by, e.title, e.description, e.location, e.starts_at, e.ends_at, e.created_at, e.updated_at,
		        (SELECT COUNT(*) FROM event_interests ei WHERE ei.event_id = e.id),
		        EXISTS(SELECT 1 FROM event_interests ei WHERE ei.event_id = e.id AND ei.user_id = ?)
		 FROM events e
		 ORDER BY e.starts_at >= NOW() DESC, e.starts_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.EventWithInterest{}
	for rows.Next() {
		var e models.EventWithInterest
		if err := rows.Scan(&e.ID, &e.CreatedBy, &e.Title, &e.Description, &e.Location,
			&e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt, &e.InterestedCount, &e.Interested); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update updates an event. Only the creator or an admin may mutate.
func (s *EventService) Update(ctx context.Context, userID, role, id string, req models.UpdateEventRequest) (*models.EventWithInterest, error) {
	event, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != userID && role != models.RoleAdmin {
		return nil, database.ErrForbidden
	}

	updates := []string{}
	args := []interface{}{}
	if req.Title != nil {
		updates = append(updates, "title = ?")
		args = append(args, *req.Title)
		event.Title = *req.Title
	}
	if req.Description != nil {
		updates = append(updates, "description = ?")
		args = append(args, *req.Description)
		event.Description = *req.Description
	}
	if req.Location != nil {
		updates = append(updates, "location = ?")
		args = append(args, *req.Location)
		event.Location = *req.Location
	}
	if req.StartsAt != nil {
		updates = append(updates, "starts_at = ?")
		args = append(args, *req.StartsAt)
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		updates = append(updates, "ends_at = ?")
		args = append(args, *req.EndsAt)
		event.EndsAt = *req.EndsAt
	}
	if event.EndsAt.Before(event.StartsAt) {
		return nil, fmt.Errorf("%w: event ends before it starts", database.ErrInvalidInput)
	}
	if len(updates) == 0 {
		return event, nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE events SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = ?", strings.Join(updates, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	event.UpdatedAt = time.Now()
	return event, nil
}

// Delete removes an event. Only the creator or an admin may delete.
func (s *EventService) Delete(ctx context.Context, userID, role, id string) error {
	event, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if event.CreatedBy != userID && role != models.RoleAdmin {
		return database.ErrForbidden
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ToggleInterest flips the caller's interest in an event and returns the new
// state with the updated count.
func (s *EventService) ToggleInterest(ctx context.Context, userID, eventID string) (bool, int, error) {
	if _, err := s.Get(ctx, userID, eventID); err != nil {
		return false, 0, err
	}

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM event_interests WHERE event_id = ? AND user_id = ?", eventID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to remove interest: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	interested := false
	if removed == 0 {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO event_interests (id, event_id, user_id) VALUES (?, ?, ?)",
			uuid.NewString(), eventID, userID); err != nil {
			return false, 0, fmt.Errorf("failed to add interest: %w", err)
		}
		interested = true
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_interests WHERE event_id = ?", eventID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("failed to count interests: %w", err)
	}

	return interested, count, nil
}
