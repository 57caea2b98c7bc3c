package instance

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type stubInstanceRepo struct {
	stuck    []TemplateInstance
	statuses map[string]InstanceStatus
	messages map[string]string
}

func (r *stubInstanceRepo) Create(_ context.Context, _ *TemplateInstance) error { return nil }

func (r *stubInstanceRepo) Get(_ context.Context, _ string) (*TemplateInstance, error) {
	return nil, nil
}

func (r *stubInstanceRepo) List(_ context.Context, _ string) ([]TemplateInstance, error) {
	return nil, nil
}

func (r *stubInstanceRepo) SetStatus(_ context.Context, id primitive.ObjectID, status InstanceStatus, errorMessage string) error {
	r.statuses[id.Hex()] = status
	r.messages[id.Hex()] = errorMessage
	return nil
}

func (r *stubInstanceRepo) ClaimProcessing(_ context.Context, _ primitive.ObjectID) error {
	return nil
}

func (r *stubInstanceRepo) SetCounters(_ context.Context, _ primitive.ObjectID, _ Counters) error {
	return nil
}

func (r *stubInstanceRepo) SetExported(_ context.Context, _ primitive.ObjectID, _, _ string) error {
	return nil
}

func (r *stubInstanceRepo) ListStuckProcessing(_ context.Context, _ time.Time) ([]TemplateInstance, error) {
	return r.stuck, nil
}

func (r *stubInstanceRepo) Delete(_ context.Context, _ primitive.ObjectID) error { return nil }

func TestWatchdogSweepRecoversStuckInstances(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	repo := &stubInstanceRepo{
		stuck: []TemplateInstance{
			{ID: first, Status: StatusProcessing},
			{ID: second, Status: StatusProcessing},
		},
		statuses: map[string]InstanceStatus{},
		messages: map[string]string{},
	}

	w := NewWatchdog(repo, 30*time.Minute, zap.NewNop())
	recovered, err := w.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if recovered != 2 {
		t.Errorf("recovered = %d, want 2", recovered)
	}
	for _, id := range []string{first.Hex(), second.Hex()} {
		if repo.statuses[id] != StatusError {
			t.Errorf("instance %s status = %s, want ERROR", id, repo.statuses[id])
		}
		if repo.messages[id] != "processing timed out" {
			t.Errorf("instance %s message = %q", id, repo.messages[id])
		}
	}
}

func TestWatchdogSweepNothingStuck(t *testing.T) {
	repo := &stubInstanceRepo{
		statuses: map[string]InstanceStatus{},
		messages: map[string]string{},
	}
	w := NewWatchdog(repo, 30*time.Minute, zap.NewNop())

	recovered, err := w.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if recovered != 0 {
		t.Errorf("recovered = %d, want 0", recovered)
	}
}
