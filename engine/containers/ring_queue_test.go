package containers

import "testing"

func TestRingQueueFIFOOrder(t *testing.T) {
	rq := NewRingQueue[int](4)
	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("enqueue %d failed: %v", i, err)
		}
	}
	for i := 1; i <= 3; i++ {
		got, err := rq.Dequeue()
		if err != nil {
			t.Fatalf("dequeue failed: %v", err)
		}
		if got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}
	if !rq.IsEmpty() {
		t.Fatalf("queue should be empty after draining")
	}
}

func TestRingQueueFullAndEmpty(t *testing.T) {
	rq := NewRingQueue[string](2)
	if _, err := rq.Dequeue(); err != ErrQueueEmpty {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
	if err := rq.Enqueue("a"); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := rq.Enqueue("b"); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := rq.Enqueue("c"); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestRingQueueWrapsAround(t *testing.T) {
	rq := NewRingQueue[int](3)
	for round := 0; round < 5; round++ {
		for i := 0; i < 3; i++ {
			if err := rq.Enqueue(round*10 + i); err != nil {
				t.Fatalf("round %d enqueue failed: %v", round, err)
			}
		}
		for i := 0; i < 3; i++ {
			got, err := rq.Dequeue()
			if err != nil {
				t.Fatalf("round %d dequeue failed: %v", round, err)
			}
			if got != round*10+i {
				t.Fatalf("round %d expected %d, got %d", round, round*10+i, got)
			}
		}
	}
}

func TestRingQueuePeekDoesNotRemove(t *testing.T) {
	rq := NewRingQueue[int](2)
	if err := rq.Enqueue(42); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	got, err := rq.Peek()
	if err != nil || got != 42 {
		t.Fatalf("peek returned %d, %v", got, err)
	}
	if rq.Len() != 1 {
		t.Fatalf("peek should not change length, got %d", rq.Len())
	}
}
