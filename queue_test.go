package procnet

import "testing"

func TestQueueFIFO(t *testing.T) {
	var q queue
	if !q.empty() {
		t.Fatal("new queue should be empty")
	}

	q.push(Envelope{Channel: 1, Payload: "a"})
	q.push(Envelope{Channel: 1, Payload: "b"})
	q.push(Envelope{Channel: 1, Payload: "c"})

	if q.empty() {
		t.Fatal("queue with pushed items should not be empty")
	}

	for _, want := range []string{"a", "b", "c"} {
		got := q.shift()
		if got.Payload != want {
			t.Fatalf("shift() = %v, want %v", got.Payload, want)
		}
	}

	if !q.empty() {
		t.Fatal("queue should be empty after draining all pushes")
	}
}

func TestQueueInterleavedPushShift(t *testing.T) {
	var q queue
	q.push(Envelope{Payload: 1})
	if got := q.shift(); got.Payload != 1 {
		t.Fatalf("shift() = %v, want 1", got.Payload)
	}
	q.push(Envelope{Payload: 2})
	q.push(Envelope{Payload: 3})
	if got := q.shift(); got.Payload != 2 {
		t.Fatalf("shift() = %v, want 2", got.Payload)
	}
	if got := q.shift(); got.Payload != 3 {
		t.Fatalf("shift() = %v, want 3", got.Payload)
	}
	if !q.empty() {
		t.Fatal("queue should be empty")
	}
}
