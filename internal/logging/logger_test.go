package logging

import "testing"

func TestNew_DefaultsToInfoOnBadLevel(t *testing.T) {
	log := New("not-a-level")
	ll := log.(*logrusLogger)
	if ll.entry.Logger.GetLevel().String() != "info" {
		t.Fatalf("expected info level fallback, got %s", ll.entry.Logger.GetLevel())
	}
}

func TestNew_ParsesValidLevel(t *testing.T) {
	log := New("debug")
	ll := log.(*logrusLogger)
	if ll.entry.Logger.GetLevel().String() != "debug" {
		t.Fatalf("expected debug level, got %s", ll.entry.Logger.GetLevel())
	}
}

func TestWithFields_ReturnsDistinctLoggerCarryingFields(t *testing.T) {
	log := New("info")
	withFields := log.WithFields(Fields{"request_id": "abc"})
	ll := withFields.(*logrusLogger)
	if ll.entry.Data["request_id"] != "abc" {
		t.Fatalf("expected request_id field to be carried, got %+v", ll.entry.Data)
	}
}

func TestNoop_DoesNotPanic(t *testing.T) {
	log := Noop()
	log.Infof("hello %s", "world")
	log.WithFields(Fields{"k": "v"}).Errorf("boom")
}
