package service

import (
	"encoding/json"
	"fmt"

	"regenx/internal/models"
	"regenx/internal/realtime"
)

// LiveService rebroadcasts step pulses to every connected client.
type LiveService struct {
	hub *realtime.Hub
}

func NewLiveService(hub *realtime.Hub) *LiveService {
	return &LiveService{hub: hub}
}

func (s *LiveService) Subscribe() *realtime.Subscription { return s.hub.Subscribe() }

func (s *LiveService) Unsubscribe(sub *realtime.Subscription) { s.hub.Unsubscribe(sub) }

// PublishPulse wraps data, unchanged, in an update-ui frame and fans it out.
// It returns the number of listeners that accepted the frame.
func (s *LiveService) PublishPulse(data json.RawMessage) (int, error) {
	frame, err := json.Marshal(models.Envelope{Type: models.EventUpdateUI, Data: data})
	if err != nil {
		return 0, fmt.Errorf("marshal update frame: %w", err)
	}
	return s.hub.Publish(frame), nil
}
