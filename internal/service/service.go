package service

import (
	"context"
	"encoding/json"
	"time"

	"regenx/internal/models"
	"regenx/internal/realtime"
	"regenx/internal/repository"
)

// Authorization covers account creation and credential checks.
type Authorization interface {
	SignUp(ctx context.Context, in SignUpInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
}

// Activity owns the lifetime counters and the per-day history.
type Activity interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	SaveSession(ctx context.Context, userID int64, inc Increment) (*models.User, error)
	History(ctx context.Context, userID int64, f HistoryFilter) ([]models.DayRecord, error)
}

// Live is the publish/subscribe view of the broadcast channel.
type Live interface {
	Subscribe() *realtime.Subscription
	Unsubscribe(sub *realtime.Subscription)
	PublishPulse(data json.RawMessage) (int, error)
}

// Simulator emits synthetic step pulses until ctx is canceled.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Activity
	Live
	Simulator
}

// Options carries the non-repository dependencies of the services.
type Options struct {
	Location *time.Location // calendar used for day boundaries
	DeviceID string         // device id stamped on simulated pulses
}

func NewService(repos *repository.Repository, hub *realtime.Hub, opts Options) *Service {
	live := NewLiveService(hub)
	return &Service{
		Authorization: NewAuthService(repos.Users, NewBcryptVerifier(0)),
		Activity:      NewActivityService(repos.Users, opts.Location),
		Live:          live,
		Simulator:     NewSimulatorService(live, opts.DeviceID),
	}
}
