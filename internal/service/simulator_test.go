package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"regenx/internal/models"
)

// ---- Test doubles ----

type publisherStub struct {
	mu     sync.Mutex
	frames []json.RawMessage
}

func (p *publisherStub) PublishPulse(data json.RawMessage) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, data)
	return 1, nil
}

func (p *publisherStub) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// ---- Tests ----

func TestSimulator_ReadingThreshold(t *testing.T) {
	svc := NewSimulatorService(&publisherStub{}, "dev-1")
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	svc.voltage = func() float64 { return StepThresholdV + 0.1 }
	if r := svc.reading(now); !r.StepDetected || r.DeviceID != "dev-1" || !r.Timestamp.Equal(now) {
		t.Fatalf("unexpected reading above threshold: %+v", r)
	}

	svc.voltage = func() float64 { return StepThresholdV }
	if r := svc.reading(now); r.StepDetected {
		t.Fatalf("reading at threshold should not count as a step: %+v", r)
	}
}

func TestSimulator_DefaultDeviceID(t *testing.T) {
	if svc := NewSimulatorService(&publisherStub{}, ""); svc.deviceID != "simulator" {
		t.Fatalf("deviceID=%q", svc.deviceID)
	}
}

func TestSimulator_EmitPublishesPulseJSON(t *testing.T) {
	pub := &publisherStub{}
	svc := NewSimulatorService(pub, "dev-1")
	svc.voltage = func() float64 { return 3.3 }

	if err := svc.emit(time.Now()); err != nil {
		t.Fatalf("emit: %v", err)
	}
	var p models.Pulse
	if err := json.Unmarshal(pub.frames[0], &p); err != nil {
		t.Fatalf("unmarshal pulse: %v", err)
	}
	if p.Voltage != 3.3 || !p.StepDetected {
		t.Fatalf("unexpected pulse: %+v", p)
	}
}

func TestSimulator_RunStopsOnCancel(t *testing.T) {
	pub := &publisherStub{}
	svc := NewSimulatorService(pub, "dev-1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(time.Second)
	for pub.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("simulator did not publish")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
