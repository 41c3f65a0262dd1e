package core

import (
	"container/heap"
	"context"
	"math/rand"
	"sync"
	"time"
)

// PollReq asks the HAL loop to run Verb on Addr. Requests are dropped when
// the loop is behind; the next tick repeats them.
type PollReq struct {
	Addr CapAddr
	Verb string
}

type schedKey struct {
	addr CapAddr
	verb string
}

// schedule is one periodic verb. idx is its heap position, -1 when off-heap.
type schedule struct {
	key    schedKey
	next   time.Time
	every  time.Duration
	jitter time.Duration
	idx    int
}

// dueQueue orders schedules by next fire time.
type dueQueue []*schedule

func (q dueQueue) Len() int           { return len(q) }
func (q dueQueue) Less(i, j int) bool { return q[i].next.Before(q[j].next) }
func (q dueQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].idx, q[j].idx = i, j
}
func (q *dueQueue) Push(x any) {
	s := x.(*schedule)
	s.idx = len(*q)
	*q = append(*q, s)
}
func (q *dueQueue) Pop() any {
	old := *q
	s := old[len(old)-1]
	s.idx = -1
	*q = old[:len(old)-1]
	return s
}

// Poller fires PollReqs on out from a single timer.
type Poller struct {
	mu    sync.Mutex
	byKey map[schedKey]*schedule
	queue dueQueue
	rnd   *rand.Rand
	kick  chan struct{}
	out   chan<- PollReq
	nowFn func() time.Time
}

func NewPoller(out chan<- PollReq) *Poller {
	return &Poller{
		byKey: make(map[schedKey]*schedule),
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		kick:  make(chan struct{}, 1),
		out:   out,
		nowFn: time.Now,
	}
}

// Upsert installs or replaces the schedule for (a, verb). Every fire,
// including the first, lands interval plus up to jitter from the previous one.
func (p *Poller) Upsert(a CapAddr, verb string, interval, jitter time.Duration) {
	if interval <= 0 || verb == "" {
		return
	}
	if jitter < 0 {
		jitter = 0
	}
	k := schedKey{addr: a, verb: verb}

	p.mu.Lock()
	s, ok := p.byKey[k]
	if !ok {
		s = &schedule{key: k, idx: -1}
		p.byKey[k] = s
	}
	s.every, s.jitter = interval, jitter
	s.next = p.nowFn().Add(p.spread(interval, jitter))
	if s.idx < 0 {
		heap.Push(&p.queue, s)
	} else {
		heap.Fix(&p.queue, s.idx)
	}
	p.mu.Unlock()
	p.poke()
}

func (p *Poller) Stop(a CapAddr, verb string) {
	p.mu.Lock()
	p.dropLocked(schedKey{addr: a, verb: verb})
	p.mu.Unlock()
	p.poke()
}

// StopAll drops every schedule on a.
func (p *Poller) StopAll(a CapAddr) {
	p.mu.Lock()
	for k := range p.byKey {
		if k.addr == a {
			p.dropLocked(k)
		}
	}
	p.mu.Unlock()
	p.poke()
}

func (p *Poller) dropLocked(k schedKey) {
	if s, ok := p.byKey[k]; ok {
		heap.Remove(&p.queue, s.idx)
		delete(p.byKey, k)
	}
}

// Run serves the schedules until ctx ends.
func (p *Poller) Run(ctx context.Context) {
	t := time.NewTimer(time.Hour)
	defer t.Stop()

	for {
		due, wait, idle := p.popDue()
		if due != nil {
			select {
			case p.out <- PollReq{Addr: due.addr, Verb: due.verb}:
			default:
			}
			continue
		}

		var fire <-chan time.Time
		if !idle {
			t.Reset(wait)
			fire = t.C
		}
		select {
		case <-ctx.Done():
			return
		case <-p.kick:
		case <-fire:
		}
		if !idle && !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
	}
}

// popDue re-arms and returns the earliest schedule if it is due. Otherwise
// it reports how long until it is, or idle when nothing is scheduled.
func (p *Poller) popDue() (due *schedKey, wait time.Duration, idle bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil, 0, true
	}
	s := p.queue[0]
	now := p.nowFn()
	if d := s.next.Sub(now); d > 0 {
		return nil, d, false
	}
	s.next = now.Add(p.spread(s.every, s.jitter))
	heap.Fix(&p.queue, 0)
	k := s.key
	return &k, 0, false
}

func (p *Poller) poke() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *Poller) spread(interval, jitter time.Duration) time.Duration {
	if jitter == 0 {
		return interval
	}
	return interval + time.Duration(p.rnd.Int63n(int64(jitter)+1))
}
