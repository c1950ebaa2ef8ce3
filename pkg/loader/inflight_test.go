package loader

import "testing"

func TestRegistry_JoinOwnership(t *testing.T) {
	r := NewRegistry()

	if owner := r.join("u", callbackSet{}); !owner {
		t.Error("first join was not the owner")
	}
	if owner := r.join("u", callbackSet{}); owner {
		t.Error("second join of the same URL claimed ownership")
	}
	if owner := r.join("other", callbackSet{}); !owner {
		t.Error("first join of a different URL was not the owner")
	}

	if got := r.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if !r.Active("u") {
		t.Error("Active(u) = false, want true")
	}
	if r.Active("settled") {
		t.Error("Active(settled) = true, want false")
	}
}

func TestRegistry_TakeDrainsInOrder(t *testing.T) {
	r := NewRegistry()

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		r.join("u", callbackSet{onLoad: func(any) { order = append(order, i) }})
	}

	callbacks, ok := r.take("u")
	if !ok {
		t.Fatal("take(u) reported no queue")
	}
	if len(callbacks) != 3 {
		t.Fatalf("take(u) returned %d callback sets, want 3", len(callbacks))
	}

	// The entry must be gone before anything is invoked.
	if r.Active("u") {
		t.Error("Active(u) = true after take")
	}

	for _, cb := range callbacks {
		cb.onLoad(nil)
	}
	for i, got := range order {
		if got != i+1 {
			t.Fatalf("delivery order = %v, want [1 2 3]", order)
		}
	}

	if _, ok := r.take("u"); ok {
		t.Error("second take(u) reported a queue")
	}
}

func TestRegistry_SnapshotKeepsQueue(t *testing.T) {
	r := NewRegistry()
	r.join("u", callbackSet{})
	r.join("u", callbackSet{})

	if got := len(r.snapshot("u")); got != 2 {
		t.Errorf("snapshot(u) returned %d callback sets, want 2", got)
	}
	if !r.Active("u") {
		t.Error("snapshot removed the queue")
	}

	// Waiters joining mid-stream show up in the next snapshot.
	r.join("u", callbackSet{})
	if got := len(r.snapshot("u")); got != 3 {
		t.Errorf("snapshot(u) after extra join returned %d callback sets, want 3", got)
	}

	if got := r.snapshot("absent"); got != nil {
		t.Errorf("snapshot(absent) = %v, want nil", got)
	}
}
