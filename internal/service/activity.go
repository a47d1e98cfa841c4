package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"regenx/internal/models"
	"regenx/internal/repository"
)

// MergeDay folds inc into the user's record for the calendar day of now
// (in loc), appending a new record when that day has none yet. The
// lifetime counters always grow by inc.
func MergeDay(u *models.User, now time.Time, loc *time.Location, inc Increment) {
	today := models.StartOfDay(now, loc)

	merged := false
	for i := range u.History {
		if u.History[i].Day(loc).Equal(today) {
			u.History[i].Steps += inc.Steps
			u.History[i].Energy += inc.Energy
			merged = true
			break
		}
	}
	if !merged {
		u.History = append(u.History, models.DayRecord{
			Date:   now,
			Steps:  inc.Steps,
			Energy: inc.Energy,
		})
	}

	u.LifetimeSteps += inc.Steps
	u.LifetimeEnergy += inc.Energy
}

type ActivityService struct {
	users repository.UserStore
	loc   *time.Location
	now   func() time.Time
}

// NewActivityService uses loc for day boundaries; nil means time.Local.
func NewActivityService(users repository.UserStore, loc *time.Location) *ActivityService {
	if loc == nil {
		loc = time.Local
	}
	return &ActivityService{users: users, loc: loc, now: time.Now}
}

// GetUser returns the full user document.
func (s *ActivityService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// SaveSession applies inc to the user's counters and today's record as one
// atomic document update.
func (s *ActivityService) SaveSession(ctx context.Context, userID int64, inc Increment) (*models.User, error) {
	now := s.now()
	u, err := s.users.Update(ctx, userID, func(u *models.User) error {
		if err := checkOverflow(u, now, s.loc, inc); err != nil {
			return err
		}
		MergeDay(u, now, s.loc, inc)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// History returns the user's records whose calendar day (in the tracker
// location) falls within the days of f.From and f.To, oldest first.
func (s *ActivityService) History(ctx context.Context, userID int64, f HistoryFilter) ([]models.DayRecord, error) {
	var from, to time.Time
	if !f.From.IsZero() {
		from = models.StartOfDay(f.From, s.loc)
	}
	if !f.To.IsZero() {
		to = models.StartOfDay(f.To, s.loc)
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, ErrInvalidTimeRange
	}

	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.DayRecord, 0, len(u.History))
	for _, rec := range u.History {
		day := rec.Day(s.loc)
		if !from.IsZero() && day.Before(from) {
			continue
		}
		if !to.IsZero() && day.After(to) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// checkOverflow rejects an increment that would wrap the lifetime step
// counter or the step count of the record it merges into.
func checkOverflow(u *models.User, now time.Time, loc *time.Location, inc Increment) error {
	if !addFits(u.LifetimeSteps, inc.Steps) {
		return ErrCounterOverflow
	}
	today := models.StartOfDay(now, loc)
	for _, rec := range u.History {
		if rec.Day(loc).Equal(today) {
			if !addFits(rec.Steps, inc.Steps) {
				return ErrCounterOverflow
			}
			break
		}
	}
	return nil
}

func addFits(a, b int64) bool {
	if b > 0 {
		return a <= math.MaxInt64-b
	}
	return a >= math.MinInt64-b
}
