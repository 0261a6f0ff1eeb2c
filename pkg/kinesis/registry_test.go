package kinesis

import (
	"slices"
	"testing"
)

func TestEventRegistryCaches(t *testing.T) {
	var fired []EventID
	r := NewEventRegistry(func(id EventID) { fired = append(fired, id) })

	a, b := r.Get(5), r.Get(5)
	if a != b {
		t.Error("Get(5) returned different callbacks")
	}
	if r.Get(6) == a {
		t.Error("Get(5) and Get(6) share a callback")
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}

	a.Invoke()
	r.Get(6).Invoke()
	b.Invoke()
	if want := []EventID{5, 6, 5}; !slices.Equal(fired, want) {
		t.Errorf("fired %v, want %v", fired, want)
	}
}

func TestEventRegistryNilRegister(t *testing.T) {
	r := NewEventRegistry(nil)
	r.Get(1).Invoke()
}
