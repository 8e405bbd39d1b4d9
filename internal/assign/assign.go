// Package assign resolves the content item for a calendar day.
package assign

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/clock"
	"github.com/conorfennell/dailyhabit/internal/datekey"
	"github.com/conorfennell/dailyhabit/internal/digest"
	"github.com/conorfennell/dailyhabit/internal/domain"
)

// Store is the part of the persistent store the service reads and writes.
type Store interface {
	GetDayStatus(ctx context.Context, dateKey string) (*domain.DayStatus, error)
	AssignDay(ctx context.Context, dateKey string, contentID int64) (domain.DayStatus, error)
	MarkCompleted(ctx context.Context, dateKey string) (domain.DayStatus, error)
	GetContentCount(ctx context.Context) (int, error)
	GetContentByID(ctx context.Context, id int64) (*domain.ContentItem, error)
	GetContentByReleaseKey(ctx context.Context, key string) (*domain.ContentItem, error)
	GetMostRecentContentBefore(ctx context.Context, key string) (*domain.ContentItem, error)
	GetContentByOrdinal(ctx context.Context, n int) (*domain.ContentItem, error)
}

// Today is the resolved item for a day. Content is nil while the catalog is
// empty.
type Today struct {
	DateKey   string
	Content   *domain.ContentItem
	Completed bool
}

// Service hands out one sticky content item per day.
type Service struct {
	store Store
	clock clock.Clock
	log   *zap.Logger
}

// NewService returns a Service. A nil clock reads the system clock and a nil
// log discards output.
func NewService(store Store, clk clock.Clock, log *zap.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, clock: clk, log: log.Named("assign")}
}

// TodayKey is the date key of the clock's current local day.
func (s *Service) TodayKey() string {
	return datekey.Key(s.clock.Now())
}

// GetOrAssignToday resolves the item for the clock's current day.
func (s *Service) GetOrAssignToday(ctx context.Context) (Today, error) {
	return s.GetOrAssign(ctx, s.TodayKey())
}

// GetOrAssign returns the item for key, assigning one on the first visit.
// Once stored, a day's item never changes. Candidates are tried in order: the
// item released on key, the most recent item released before it, and finally
// a hash of key over the whole catalog.
func (s *Service) GetOrAssign(ctx context.Context, key string) (Today, error) {
	if !datekey.Valid(key) {
		return Today{}, fmt.Errorf("%w: date key %q", apperrors.ErrInvalidInput, key)
	}

	ds, err := s.store.GetDayStatus(ctx, key)
	if err != nil {
		return Today{}, err
	}
	if ds != nil {
		return s.resolve(ctx, *ds)
	}

	item, how, err := s.pick(ctx, key)
	if err != nil {
		return Today{}, err
	}
	if item == nil {
		s.log.Debug("catalog is empty, nothing to assign", zap.String("date_key", key))
		return Today{DateKey: key}, nil
	}

	stored, err := s.store.AssignDay(ctx, key, item.ID)
	if err != nil {
		return Today{}, err
	}
	if stored.ContentID != item.ID {
		// Another caller assigned the day first.
		return s.resolve(ctx, stored)
	}

	s.log.Info("day assigned",
		zap.String("date_key", key),
		zap.Int64("content_id", item.ID),
		zap.String("by", how))
	return Today{DateKey: key, Content: item, Completed: stored.Completed}, nil
}

func (s *Service) resolve(ctx context.Context, ds domain.DayStatus) (Today, error) {
	item, err := s.store.GetContentByID(ctx, ds.ContentID)
	if err != nil {
		return Today{}, err
	}
	if item == nil {
		return Today{}, fmt.Errorf("content %d assigned to %s: %w", ds.ContentID, ds.DateKey, apperrors.ErrNotFound)
	}
	return Today{DateKey: ds.DateKey, Content: item, Completed: ds.Completed}, nil
}

// pick chooses a candidate for an unassigned day without writing anything.
func (s *Service) pick(ctx context.Context, key string) (*domain.ContentItem, string, error) {
	item, err := s.store.GetContentByReleaseKey(ctx, key)
	if err != nil || item != nil {
		return item, "release_key", err
	}

	item, err = s.store.GetMostRecentContentBefore(ctx, key)
	if err != nil || item != nil {
		return item, "most_recent", err
	}

	count, err := s.store.GetContentCount(ctx)
	if err != nil || count == 0 {
		return nil, "", err
	}
	n := int(digest.FNV1a(key) % uint32(count))
	item, err = s.store.GetContentByOrdinal(ctx, n)
	return item, "hash", err
}

// MarkTodayCompleted completes the clock's current day.
func (s *Service) MarkTodayCompleted(ctx context.Context) (domain.DayStatus, error) {
	return s.MarkCompleted(ctx, s.TodayKey())
}

// MarkCompleted completes key. The day must have been assigned first;
// otherwise the error wraps both apperrors.ErrPrecondition and
// apperrors.ErrNotFound. Completing a day again is a no-op.
func (s *Service) MarkCompleted(ctx context.Context, key string) (domain.DayStatus, error) {
	if !datekey.Valid(key) {
		return domain.DayStatus{}, fmt.Errorf("%w: date key %q", apperrors.ErrInvalidInput, key)
	}

	ds, err := s.store.MarkCompleted(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.DayStatus{}, fmt.Errorf("%w: %s has no assigned item yet: %w", apperrors.ErrPrecondition, key, err)
		}
		return domain.DayStatus{}, err
	}
	return ds, nil
}
