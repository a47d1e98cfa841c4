package service

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"time"

	"regenx/internal/models"
)

// ----------- Simulation constants -----------
const (
	MaxVoltage     = 5.0 // piezo output ceiling, V
	StepThresholdV = 2.5 // readings above this count as a step
)

// pulsePublisher is the part of Live the simulator needs.
type pulsePublisher interface {
	PublishPulse(data json.RawMessage) (int, error)
}

// SimulatorService publishes synthetic piezo readings so dashboards can be
// exercised without the hardware gateway.
type SimulatorService struct {
	live     pulsePublisher
	deviceID string
	voltage  func() float64
}

// NewSimulatorService returns a simulator with a uniform random voltage source.
func NewSimulatorService(live pulsePublisher, deviceID string) *SimulatorService {
	if deviceID == "" {
		deviceID = "simulator"
	}
	return &SimulatorService{
		live:     live,
		deviceID: deviceID,
		voltage:  func() float64 { return rand.Float64() * MaxVoltage },
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			_ = s.emit(now)
		}
	}
}

// emit publishes one reading taken at now.
func (s *SimulatorService) emit(now time.Time) error {
	p := s.reading(now)
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.live.PublishPulse(b)
	return err
}

func (s *SimulatorService) reading(now time.Time) models.Pulse {
	v := s.voltage()
	return models.Pulse{
		DeviceID:     s.deviceID,
		Timestamp:    now.UTC(),
		Voltage:      v,
		StepDetected: v > StepThresholdV,
	}
}
