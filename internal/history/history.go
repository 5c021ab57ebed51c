// Package history durably records completed playback sessions: a row per
// session with its start/stop time, final position, the discontinuity
// reasons observed, and the last error kind if any. It does not cache media
// bytes or implement resume policy, just the analytics persistence the
// engine's in-process PLAYBACK_INFO_CHANGED stream does not itself retain.
package history

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nodecast/playcore/internal/engine"
	"github.com/nodecast/playcore/internal/idgen"
)

// Session is one row in the playback_sessions table: a durable summary of a
// single PlaybackEngine session from Prepare to its terminal state.
type Session struct {
	ID          string `gorm:"primaryKey;size:36"`
	MediaItemID string `gorm:"size:255;index"`

	StartTime time.Time  `gorm:"index"`
	EndTime   *time.Time

	StartPositionUs int64
	FinalPositionUs int64

	// DiscontinuityCount tallies every non-internal discontinuity observed
	// during the session (seeks, period transitions, ad insertions).
	DiscontinuityCount int64
	// LastDiscontinuityReason is the engine.DiscontinuityReason value of the
	// most recent non-internal discontinuity, or -1 if none occurred.
	LastDiscontinuityReason int

	// Ended is true once the session reached engine.StateEnded rather than
	// being stopped or abandoned mid-playback.
	Ended bool

	// LastErrorKind is the engine.ErrorKind value of the last PlaybackException
	// observed, or -1 if the session never errored.
	LastErrorKind  int
	LastErrorMsg   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DiscontinuityEvent records a single non-internal discontinuity for a
// session, mirroring the session/event split viewra's playback module keeps
// between PlaybackSession and SessionEvent.
type DiscontinuityEvent struct {
	ID          string `gorm:"primaryKey;size:36"`
	SessionID   string `gorm:"size:36;index"`
	Reason      int
	PositionUs  int64
	OccurredAt  time.Time `gorm:"index"`
}

// Store persists Session and DiscontinuityEvent rows via gorm.
type Store struct {
	db *gorm.DB
}

// NewStore wraps db. Callers are expected to have already run AutoMigrate
// (or equivalent) against the Session and DiscontinuityEvent models.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the backing tables.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Session{}, &DiscontinuityEvent{})
}

// StartSession inserts a new Session row for a freshly prepared playback.
func (s *Store) StartSession(ctx context.Context, id, mediaItemID string, startPositionUs int64, startTime time.Time) error {
	session := &Session{
		ID:                      id,
		MediaItemID:             mediaItemID,
		StartTime:               startTime,
		StartPositionUs:         startPositionUs,
		LastDiscontinuityReason: -1,
		LastErrorKind:           -1,
	}
	return s.db.WithContext(ctx).Create(session).Error
}

// RecordDiscontinuity appends a DiscontinuityEvent and bumps the parent
// Session's counters. Reason must be neither engine.DiscontinuityNone nor
// engine.DiscontinuityInternal; tallying internal-only adjustments would
// defeat the purpose of the count. The method itself does not check this.
func (s *Store) RecordDiscontinuity(ctx context.Context, sessionID string, reason engine.DiscontinuityReason, positionUs int64, occurredAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event := &DiscontinuityEvent{
			ID:         idgen.NewMessageID(),
			SessionID:  sessionID,
			Reason:     int(reason),
			PositionUs: positionUs,
			OccurredAt: occurredAt,
		}
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		return tx.Model(&Session{}).Where("id = ?", sessionID).Updates(map[string]interface{}{
			"discontinuity_count":        gorm.Expr("discontinuity_count + 1"),
			"last_discontinuity_reason": int(reason),
		}).Error
	})
}

// RecordError marks the session's last observed error without ending it;
// the engine may recover from a source/renderer error and keep playing.
func (s *Store) RecordError(ctx context.Context, sessionID string, exc *engine.PlaybackException) error {
	return s.db.WithContext(ctx).Model(&Session{}).Where("id = ?", sessionID).Updates(map[string]interface{}{
		"last_error_kind": int(exc.Kind),
		"last_error_msg":  exc.Message,
	}).Error
}

// EndSession closes out a Session with its final position and whether it
// reached the terminal ended state (as opposed to being stopped early).
func (s *Store) EndSession(ctx context.Context, sessionID string, finalPositionUs int64, ended bool, endTime time.Time) error {
	return s.db.WithContext(ctx).Model(&Session{}).Where("id = ?", sessionID).Updates(map[string]interface{}{
		"final_position_us": finalPositionUs,
		"ended":             ended,
		"end_time":          endTime,
	}).Error
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	if err := s.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// RecentSessions returns the most recent sessions for a media item, newest
// first, up to limit rows.
func (s *Store) RecentSessions(ctx context.Context, mediaItemID string, limit int) ([]*Session, error) {
	var sessions []*Session
	err := s.db.WithContext(ctx).
		Where("media_item_id = ?", mediaItemID).
		Order("start_time DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// SessionEvents returns the discontinuity events recorded for a session, in
// the order they occurred.
func (s *Store) SessionEvents(ctx context.Context, sessionID string) ([]*DiscontinuityEvent, error) {
	var events []*DiscontinuityEvent
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("occurred_at ASC").
		Find(&events).Error
	return events, err
}
