package core

import (
	"context"
	"testing"
	"time"

	"audiocodec-go/types"
)

func TestPoller_FiresAndStops(t *testing.T) {
	out := make(chan PollReq, 4)
	p := NewPoller(out)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	a := CapAddr{Domain: "audio", Kind: types.KindCodec, Name: "main"}
	p.Upsert(a, "read", 5*time.Millisecond, 0)

	select {
	case r := <-out:
		if r.Addr != a || r.Verb != "read" {
			t.Fatalf("req %+v", r)
		}
	case <-time.After(time.Second):
		t.Fatal("no poll")
	}

	p.StopAll(a)
	time.Sleep(20 * time.Millisecond)
	for len(out) > 0 {
		<-out
	}
	select {
	case r := <-out:
		t.Fatalf("poll after StopAll: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPoller_UpsertReplaces(t *testing.T) {
	p := NewPoller(make(chan PollReq, 1))
	base := time.Unix(1000, 0)
	p.nowFn = func() time.Time { return base }

	a := CapAddr{Domain: "audio", Kind: types.KindCodec, Name: "main"}
	p.Upsert(a, "read", time.Second, 0)
	p.Upsert(a, "read", 3*time.Second, 0)
	p.Upsert(a, "dump", 2*time.Second, 0)
	if len(p.queue) != 2 {
		t.Fatalf("schedules = %d", len(p.queue))
	}
	if _, wait, _ := p.popDue(); wait != 2*time.Second {
		t.Fatalf("wait = %v", wait)
	}

	p.nowFn = func() time.Time { return base.Add(2 * time.Second) }
	due, _, _ := p.popDue()
	if due == nil || due.verb != "dump" {
		t.Fatalf("due = %+v", due)
	}
	p.Stop(a, "dump")
	p.Upsert(a, "read", 0, 0) // ignored
	if len(p.byKey) != 1 || p.queue[0].every != 3*time.Second {
		t.Fatalf("after stop: %d schedules", len(p.byKey))
	}
}
