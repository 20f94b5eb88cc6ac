package procnet

import (
	"errors"
	"testing"
)

func TestSimplexSendRecv(t *testing.T) {
	sp, ep := NewSimplex(0)

	if err := sp.Send("hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	env, err := ep.TryRecv()
	if err != nil {
		t.Fatalf("TryRecv: %v", err)
	}
	if env.Payload != "hello" || env.Channel != 0 {
		t.Fatalf("TryRecv = %+v, want payload hello on channel 0", env)
	}
}

func TestSimplexTryRecvEmpty(t *testing.T) {
	_, ep := NewSimplex(0)
	_, err := ep.TryRecv()
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("TryRecv on empty queue = %v, want ErrEmpty", err)
	}
}

func TestSimplexDisconnectAfterProducerRelease(t *testing.T) {
	sp, ep := NewSimplex(0)
	sp.Release()

	_, err := ep.TryRecv()
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("TryRecv after producer release = %v, want ErrDisconnected", err)
	}
}

func TestSimplexDrainsBeforeDisconnecting(t *testing.T) {
	sp, ep := NewSimplex(0)
	if err := sp.Send("queued"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	sp.Release()

	env, err := ep.TryRecv()
	if err != nil {
		t.Fatalf("TryRecv before drain = %v, want delivery of queued message", err)
	}
	if env.Payload != "queued" {
		t.Fatalf("TryRecv payload = %v, want queued", env.Payload)
	}

	_, err = ep.TryRecv()
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("TryRecv after drain = %v, want ErrDisconnected", err)
	}
}

func TestSimplexSendFailsAfterConsumerRelease(t *testing.T) {
	sp, ep := NewSimplex(0)
	ep.Release()

	err := sp.Send("orphaned")
	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("Send after consumer release = %v, want *SendError", err)
	}
	if sendErr.Message != "orphaned" {
		t.Fatalf("SendError.Message = %v, want orphaned", sendErr.Message)
	}
}

func TestSimplexRecvBlocksUntilSend(t *testing.T) {
	sp, ep := NewSimplex(0)
	done := make(chan Envelope, 1)
	go func() {
		env, err := ep.Recv()
		if err != nil {
			t.Errorf("Recv: %v", err)
			return
		}
		done <- env
	}()

	if err := sp.Send("later"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	env := <-done
	if env.Payload != "later" {
		t.Fatalf("Recv payload = %v, want later", env.Payload)
	}
}

func TestSimplexRecvUnblocksOnRelease(t *testing.T) {
	sp, ep := NewSimplex(0)
	done := make(chan error, 1)
	go func() {
		_, err := ep.Recv()
		done <- err
	}()

	sp.Release()

	err := <-done
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("Recv after release = %v, want ErrDisconnected", err)
	}
}
