package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wavefeed/wavefeed-be/internal/models"
)

// ActivityServiceProvider defines the interface for activity services.
type ActivityServiceProvider interface {
	Record(activityType, level, message string, postID *string)
	GetRecent(limit int) ([]models.Activity, error)
	Prune(olderThan time.Time) (int64, error)
}

// ActivityService keeps a log of notable actions (post created, liked,
// deleted) for the activity endpoint.
type ActivityService struct {
	db *sql.DB
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *sql.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record logs a new activity entry. The activity log is advisory; a
// failure here never fails the request that triggered it.
func (s *ActivityService) Record(activityType, level, message string, postID *string) {
	activity := models.Activity{
		ID:        uuid.New().String(),
		Type:      activityType,
		Level:     level,
		Message:   message,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		"INSERT INTO activities (id, type, level, message, post_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		activity.ID, activity.Type, activity.Level, activity.Message, activity.PostID, activity.CreatedAt,
	)
	if err != nil {
		log.Error().Err(err).Str("type", activityType).Msg("Failed to record activity")
	}
}

// GetRecent retrieves the most recent activity entries.
func (s *ActivityService) GetRecent(limit int) ([]models.Activity, error) {
	rows, err := s.db.Query(
		"SELECT id, type, level, message, post_id, created_at FROM activities ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var activity models.Activity
		if err := rows.Scan(&activity.ID, &activity.Type, &activity.Level, &activity.Message, &activity.PostID, &activity.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// Prune deletes activity entries older than the given time and reports
// how many rows went away.
func (s *ActivityService) Prune(olderThan time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM activities WHERE created_at < ?", olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
