package signature

import (
	"testing"
	"time"
)

func TestStore_GetPutRoundTrip(t *testing.T) {
	s := New(10, time.Hour)
	s.Put("sig-1", "account-a")
	v, ok := s.Get("sig-1")
	if !ok || v.(string) != "account-a" {
		t.Fatalf("Get() = %v, %v", v, ok)
	}
}

func TestStore_GetMissingReturnsFalse(t *testing.T) {
	s := New(10, time.Hour)
	if _, ok := s.Get("missing"); ok {
		t.Fatalf("expected miss")
	}
}

func TestStore_EvictsOldestLastUsedWhenOverCapacity(t *testing.T) {
	s := New(2, time.Hour)
	s.Put("a", 1)
	s.Put("b", 2)
	s.Put("c", 3) // evicts "a", the least-recently-used

	if _, ok := s.Get("a"); ok {
		t.Fatalf("expected a to be evicted")
	}
	if _, ok := s.Get("b"); !ok {
		t.Fatalf("expected b to survive")
	}
	if _, ok := s.Get("c"); !ok {
		t.Fatalf("expected c to survive")
	}
}

func TestStore_ReadRefreshesLastUsedAt_ProtectsFromEviction(t *testing.T) {
	s := New(2, time.Hour)
	s.Put("a", 1)
	s.Put("b", 2)
	s.Get("a") // a is now more recently used than b

	s.Put("c", 3) // must evict b, not a

	if _, ok := s.Get("a"); !ok {
		t.Fatalf("expected a to survive since it was refreshed")
	}
	if _, ok := s.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
}

func TestStore_TTLExpiredEntryTreatedAsAbsent(t *testing.T) {
	s := New(10, time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	s.Put("a", 1)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok := s.Get("a"); ok {
		t.Fatalf("expected expired entry to be treated as absent")
	}
	if s.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted on read, got len=%d", s.Len())
	}
}

func TestStore_PutOverwritesExistingKeyWithoutGrowingLen(t *testing.T) {
	s := New(10, time.Hour)
	s.Put("a", 1)
	s.Put("a", 2)
	if s.Len() != 1 {
		t.Fatalf("expected len=1 after overwrite, got %d", s.Len())
	}
	v, _ := s.Get("a")
	if v.(int) != 2 {
		t.Fatalf("expected overwritten value 2, got %v", v)
	}
}

func TestStore_Delete(t *testing.T) {
	s := New(10, time.Hour)
	s.Put("a", 1)
	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Fatalf("expected a to be deleted")
	}
}
