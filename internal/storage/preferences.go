package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/domain"
)

// GetPreferences reads the preferences singleton. Stored schedules that fail
// validation are dropped with a warning instead of being coerced into range.
func (db *DB) GetPreferences(ctx context.Context) (domain.UserPreferences, error) {
	var (
		enabled   int
		schedules string
		ref       sql.NullString
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT reminders_enabled, schedules, external_schedule_ref
		FROM user_preferences WHERE id = 1
	`).Scan(&enabled, &schedules, &ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultPreferences(), nil
		}
		return domain.UserPreferences{}, fmt.Errorf("failed to get user preferences: %w", err)
	}

	prefs := domain.UserPreferences{
		RemindersEnabled:    enabled == 1,
		ExternalScheduleRef: ref.String,
		Schedules:           []domain.Schedule{},
	}

	var decoded []domain.Schedule
	if err := json.Unmarshal([]byte(schedules), &decoded); err != nil {
		db.log.Warn("stored reminder schedules are unreadable, ignoring", zap.Error(err))
		return prefs, nil
	}

	v := domain.NewValidator()
	for _, s := range decoded {
		if err := v.Struct(s); err != nil {
			db.log.Warn("dropping out-of-range reminder schedule",
				zap.Int("hour", s.Hour), zap.Int("minute", s.Minute))
			continue
		}
		prefs.Schedules = append(prefs.Schedules, s)
	}
	return prefs, nil
}

// SavePreferences replaces the preferences singleton. Out-of-range schedules
// are rejected with apperrors.ErrInvalidInput and nothing is written.
func (db *DB) SavePreferences(ctx context.Context, prefs domain.UserPreferences) error {
	if err := domain.NewValidator().Struct(prefs); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}

	schedules := prefs.Schedules
	if schedules == nil {
		schedules = []domain.Schedule{}
	}
	encoded, err := json.Marshal(schedules)
	if err != nil {
		return fmt.Errorf("failed to encode reminder schedules: %w", err)
	}

	var ref any
	if prefs.ExternalScheduleRef != "" {
		ref = prefs.ExternalScheduleRef
	}

	_, err = db.conn.ExecContext(ctx, `
		UPDATE user_preferences
		SET reminders_enabled = ?, schedules = ?, external_schedule_ref = ?
		WHERE id = 1
	`, boolToInt(prefs.RemindersEnabled), string(encoded), ref)
	if err != nil {
		return fmt.Errorf("failed to save user preferences: %w", err)
	}
	return nil
}
