package procnet

import (
	"errors"
	"testing"
)

func TestSourceUnicastAddressing(t *testing.T) {
	sp, eps := NewSource(0, []ProcessID{1, 2})

	if err := sp.SendTo(1, "for-one"); err != nil {
		t.Fatalf("SendTo(1): %v", err)
	}
	if err := sp.SendTo(2, "for-two"); err != nil {
		t.Fatalf("SendTo(2): %v", err)
	}

	env, err := eps[1].TryRecv()
	if err != nil {
		t.Fatalf("TryRecv on endpoint 1: %v", err)
	}
	if env.Payload != "for-one" {
		t.Fatalf("endpoint 1 payload = %v, want for-one", env.Payload)
	}

	env, err = eps[2].TryRecv()
	if err != nil {
		t.Fatalf("TryRecv on endpoint 2: %v", err)
	}
	if env.Payload != "for-two" {
		t.Fatalf("endpoint 2 payload = %v, want for-two", env.Payload)
	}
}

func TestSourceDoesNotBroadcast(t *testing.T) {
	sp, eps := NewSource(0, []ProcessID{1, 2})
	if err := sp.SendTo(1, "only-for-one"); err != nil {
		t.Fatalf("SendTo(1): %v", err)
	}

	_, err := eps[2].TryRecv()
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("endpoint 2 TryRecv = %v, want ErrEmpty (no broadcast)", err)
	}
}

func TestSourceConsumerReleaseIsPerConsumer(t *testing.T) {
	sp, eps := NewSource(0, []ProcessID{1, 2})
	eps[1].Release()

	err := sp.SendTo(1, "dropped")
	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("SendTo(1) after release = %v, want *SendError", err)
	}

	if err := sp.SendTo(2, "delivered"); err != nil {
		t.Fatalf("SendTo(2) on still-live consumer: %v", err)
	}
	env, err := eps[2].TryRecv()
	if err != nil {
		t.Fatalf("TryRecv on endpoint 2: %v", err)
	}
	if env.Payload != "delivered" {
		t.Fatalf("endpoint 2 payload = %v, want delivered", env.Payload)
	}
}

func TestSourceProducerReleaseDisconnectsAllConsumers(t *testing.T) {
	sp, eps := NewSource(0, []ProcessID{1, 2})
	sp.Release()

	for _, pid := range []ProcessID{1, 2} {
		_, err := eps[pid].TryRecv()
		if !errors.Is(err, ErrDisconnected) {
			t.Fatalf("endpoint %d TryRecv = %v, want ErrDisconnected", pid, err)
		}
	}
}

func TestSourceSendToUnknownConsumerFails(t *testing.T) {
	sp, _ := NewSource(0, []ProcessID{1})
	err := sp.SendTo(99, "nowhere")
	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("SendTo(99) = %v, want *SendError", err)
	}
}
