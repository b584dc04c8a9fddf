package component

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kbukum/iterkit/logger"
)

// fakeComponent implements Component for testing.
type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	events   *[]string
	deadline *time.Time
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(_ context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "start:"+f.name)
	}
	return f.startErr
}

func (f *fakeComponent) Stop(ctx context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "stop:"+f.name)
	}
	if f.deadline != nil {
		*f.deadline, _ = ctx.Deadline()
	}
	return f.stopErr
}

func (f *fakeComponent) Health(_ context.Context) Health { return f.health }

type describedComponent struct {
	fakeComponent
	desc Description
}

func (d *describedComponent) Describe() Description { return d.desc }

func newRegistry() *Registry {
	return NewRegistry().WithLogger(logger.NewNop())
}

func TestRegisterDuplicate(t *testing.T) {
	r := newRegistry()
	if err := r.Register(&fakeComponent{name: "prefetch:train"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&fakeComponent{name: "prefetch:train"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGetAndAll(t *testing.T) {
	r := newRegistry()
	r.Register(&fakeComponent{name: "a"})
	r.Register(&fakeComponent{name: "b"})

	if got := r.Get("a"); got == nil || got.Name() != "a" {
		t.Errorf("expected component a, got %v", got)
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unregistered component")
	}
	all := r.All()
	if len(all) != 2 || all[0].Name() != "a" || all[1].Name() != "b" {
		t.Errorf("expected [a b] in registration order, got %v", all)
	}
}

func TestLifecycleOrder(t *testing.T) {
	r := newRegistry()
	events := []string{}
	for _, name := range []string{"train", "validation", "test"} {
		r.Register(&fakeComponent{name: name, events: &events})
	}

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	want := []string{
		"start:train", "start:validation", "start:test",
		"stop:test", "stop:validation", "stop:train",
	}
	if len(events) != len(want) {
		t.Fatalf("got %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: got %q, want %q", i, events[i], want[i])
		}
	}
}

func TestStartAllStopsAtFirstFailure(t *testing.T) {
	r := newRegistry()
	events := []string{}
	r.Register(&fakeComponent{name: "a", events: &events})
	r.Register(&fakeComponent{name: "b", events: &events, startErr: fmt.Errorf("refused")})
	r.Register(&fakeComponent{name: "c", events: &events})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected error from StartAll")
	}
	if len(events) != 2 {
		t.Errorf("expected c not to start, got %v", events)
	}

	events = events[:0]
	r.StopAll(context.Background())
	if len(events) != 1 || events[0] != "stop:a" {
		t.Errorf("expected only the started component to stop, got %v", events)
	}
}

func TestStopAllContinuesAfterErrors(t *testing.T) {
	r := newRegistry()
	events := []string{}
	r.Register(&fakeComponent{name: "a", events: &events})
	r.Register(&fakeComponent{name: "b", events: &events, stopErr: fmt.Errorf("stuck")})
	r.StartAll(context.Background())
	events = events[:0]

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
	if len(events) != 2 {
		t.Errorf("expected both components to be stopped, got %v", events)
	}
}

func TestStopTimeoutApplied(t *testing.T) {
	r := newRegistry().WithStopTimeout(time.Minute)
	var deadline time.Time
	r.Register(&fakeComponent{name: "a", deadline: &deadline})
	r.StartAll(context.Background())

	before := time.Now()
	r.StopAll(context.Background())
	if deadline.IsZero() || deadline.Before(before.Add(50*time.Second)) {
		t.Errorf("expected a ~1m stop deadline, got %v", deadline)
	}
}

func TestHealthAll(t *testing.T) {
	r := newRegistry()
	r.Register(&fakeComponent{name: "a", health: Health{Name: "a", Status: StatusHealthy}})
	r.Register(&fakeComponent{name: "b", health: Health{Name: "b", Status: StatusUnhealthy, Message: "failed"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Errorf("unexpected health %v", results)
	}
}

func TestDescribe(t *testing.T) {
	r := newRegistry()
	r.Register(&describedComponent{
		fakeComponent: fakeComponent{name: "prefetch:train"},
		desc:          Description{Type: "prefetch", Details: "depth=8"},
	})
	r.Register(&fakeComponent{name: "plain"})

	got := r.Describe()
	if len(got) != 2 {
		t.Fatalf("expected 2 descriptions, got %d", len(got))
	}
	if got[0].Name != "prefetch:train" || got[0].Type != "prefetch" || got[0].Details != "depth=8" {
		t.Errorf("unexpected description %+v", got[0])
	}
	if got[1].Name != "plain" || got[1].Type != "" {
		t.Errorf("expected name-only description, got %+v", got[1])
	}
}
