package fs

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRegistryRoundTrip(t *testing.T) {
	r := NewEndpointFileRegistry(t.TempDir(), zerolog.Nop())

	if got := r.Endpoints(); len(got) != 0 {
		t.Fatalf("Endpoints on empty registry = %v, want none", got)
	}
	if got := r.Active(); got != "" {
		t.Fatalf("Active on empty registry = %q, want empty", got)
	}

	if err := r.Promote("https://a.example"); err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}
	if err := r.Promote("https://b.example"); err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}
	if err := r.SetActive("https://b.example"); err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}

	want := []string{"https://b.example", "https://a.example"}
	if got := r.Endpoints(); !reflect.DeepEqual(got, want) {
		t.Errorf("Endpoints = %v, want %v", got, want)
	}
	if got := r.Active(); got != "https://b.example" {
		t.Errorf("Active = %q, want https://b.example", got)
	}
}

func TestRegistryPromoteIdempotentAtFront(t *testing.T) {
	r := NewEndpointFileRegistry(t.TempDir(), zerolog.Nop())

	for i := 0; i < 3; i++ {
		if err := r.Promote("https://a.example"); err != nil {
			t.Fatalf("Promote returned error: %v", err)
		}
	}
	if got := r.Endpoints(); len(got) != 1 {
		t.Errorf("Endpoints = %v, want single entry", got)
	}

	// Promoting an existing entry moves it to the front without duplicating.
	if err := r.Promote("https://b.example"); err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}
	if err := r.Promote("HTTPS://A.EXAMPLE"); err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}
	got := r.Endpoints()
	if len(got) != 2 || got[0] != "HTTPS://A.EXAMPLE" || got[1] != "https://b.example" {
		t.Errorf("Endpoints = %v, want [HTTPS://A.EXAMPLE https://b.example]", got)
	}
}

func TestRegistryWatch(t *testing.T) {
	dir := t.TempDir()
	r := NewEndpointFileRegistry(dir, zerolog.Nop())
	if err := r.Promote("https://a.example"); err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- r.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before mutating the file.
	time.Sleep(100 * time.Millisecond)

	if err := r.Promote("https://b.example"); err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reported the registry change")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Watch returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}
