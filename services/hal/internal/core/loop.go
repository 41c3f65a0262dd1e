package core

import (
	"context"
	"strings"
	"time"

	"audiocodec-go/bus"
	"audiocodec-go/errcode"
	"audiocodec-go/types"
)

const (
	eventQueueLen = 16
	pollQueueLen  = 8
)

type HAL struct {
	conn *bus.Connection
	res  Resources

	// Device registry
	dev map[string]Device // devID -> device

	// Capability index: address -> devID
	capIndex map[CapAddr]string

	poller *Poller
	pollCh chan PollReq

	cfgSub  *bus.Subscription
	ctrlSub *bus.Subscription

	// Single-threaded publication of device events
	evCh chan Event
}

func NewHAL(conn *bus.Connection, reg ResourceRegistry) *HAL {
	h := &HAL{
		conn:     conn,
		res:      Resources{Reg: reg},
		dev:      map[string]Device{},
		capIndex: map[CapAddr]string{},
		pollCh:   make(chan PollReq, pollQueueLen),
		evCh:     make(chan Event, eventQueueLen),
	}
	h.poller = NewPoller(h.pollCh)
	// HAL provides the emitter to devices.
	h.res.Pub = h
	return h
}

func (h *HAL) Run(ctx context.Context) {
	h.cfgSub = h.conn.Subscribe(topicConfigHAL())
	h.ctrlSub = h.conn.Subscribe(ctrlWildcard())
	defer h.conn.Unsubscribe(h.cfgSub)
	defer h.conn.Unsubscribe(h.ctrlSub)

	go h.poller.Run(ctx)

	h.pubHALState("idle", "")
	ready := false
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.pubHALState("stopped", "context_cancelled")
			return
		case msg := <-h.cfgSub.Channel():
			cfg, err := DecodeHALConfig(msg.Payload)
			if err != nil {
				println("[hal] bad config:", err.Error())
				continue
			}
			// applyConfig is additive/idempotent for existing devices.
			h.applyConfig(ctx, cfg)
			if !ready {
				ready = true
				h.pubHALState("ready", "")
			}
		case m := <-h.ctrlSub.Channel():
			if !ready {
				// Reject controls until HAL has a configuration.
				h.reply(m, errcode.HALNotReady)
				continue
			}
			h.handleControl(m) // strictly non-blocking
		case ev := <-h.evCh:
			// All device→HAL telemetry is published from this goroutine.
			h.handleEvent(ev)
		case pr := <-h.pollCh:
			h.handlePoll(pr)
		}
	}
}

func (h *HAL) applyConfig(ctx context.Context, cfg types.HALConfig) {
	for i := range cfg.Devices {
		dc := cfg.Devices[i]
		if _, exists := h.dev[dc.ID]; exists {
			continue
		}
		b, ok := lookupBuilder(dc.Type)
		if !ok {
			println("[hal] no builder for type:", dc.Type, "id:", dc.ID, "known:", strings.Join(BuilderTypes(), ","))
			continue
		}
		dev, err := b.Build(ctx, BuilderInput{
			ID:     dc.ID,
			Type:   dc.Type,
			Params: dc.Params,
			Res:    h.res,
		})
		if err != nil {
			println("[hal] build failed for:", dc.ID, "err:", err.Error())
			continue
		}

		// Resolve capability addresses; an address has one owner.
		var caps []CapabilitySpec
		for _, cs := range dev.Capabilities() {
			a := CapAddr{Domain: cs.Domain, Kind: cs.Kind, Name: cs.Name}
			if a.Domain == "" {
				a.Domain = defaultDomainFor(cs.Kind)
			}
			if a.Name == "" {
				a.Name = dev.ID()
			}
			if owner, taken := h.capIndex[a]; taken {
				println("[hal] capability conflict:", capBase(a).String(), "owner:", owner)
				continue
			}
			cs.Domain, cs.Name = a.Domain, a.Name
			caps = append(caps, cs)
		}
		if len(caps) == 0 {
			_ = dev.Close()
			continue
		}

		if err := dev.Init(ctx); err != nil {
			println("[hal] init failed for:", dc.ID, "err:", err.Error())
			_ = dev.Close()
			continue
		}
		h.dev[dev.ID()] = dev
		for _, cs := range caps {
			a := CapAddr{Domain: cs.Domain, Kind: cs.Kind, Name: cs.Name}
			h.capIndex[a] = dev.ID()
			// Retained info + status:down; device events queued during
			// Init are published after these.
			h.conn.Publish(h.conn.NewMessage(capInfo(a), cs.Info, true))
			h.conn.Publish(h.conn.NewMessage(
				capStatus(a),
				types.CapabilityStatus{Link: types.LinkDown, TS: time.Now().UnixNano()},
				true,
			))
		}
	}

	for _, ps := range cfg.Pollers {
		a := CapAddr{Domain: ps.Domain, Kind: ps.Kind, Name: ps.Name}
		if _, ok := h.capIndex[a]; !ok {
			println("[hal] poller for unknown capability:", capBase(a).String())
			continue
		}
		verb := ps.Verb
		if verb == "" {
			verb = "read"
		}
		h.poller.Upsert(a, verb, time.Duration(ps.IntervalMs)*time.Millisecond, time.Duration(ps.JitterMs)*time.Millisecond)
	}
}

func (h *HAL) handleControl(msg *bus.Message) {
	// hal/cap/<domain>/<kind>/<name>/control/<verb>
	if msg.Topic.Len() != 7 {
		h.reply(msg, errcode.InvalidTopic)
		return
	}
	domain, _ := msg.Topic.At(2).(string)
	kind, _ := msg.Topic.At(3).(string)
	name, _ := msg.Topic.At(4).(string)
	verb, _ := msg.Topic.At(6).(string)
	a := CapAddr{Domain: domain, Kind: types.Kind(kind), Name: name}

	ownerID, ok := h.capIndex[a]
	if !ok {
		h.reply(msg, errcode.UnknownCapability)
		return
	}
	dev := h.dev[ownerID]
	if dev == nil {
		h.reply(msg, errcode.Error)
		return
	}

	switch verb {
	case "poll_start":
		ps, code := As[types.PollStart](msg.Payload)
		if code != "" || ps.IntervalMs == 0 {
			h.reply(msg, errcode.InvalidPayload)
			return
		}
		if ps.Verb == "" {
			ps.Verb = "read"
		}
		h.poller.Upsert(a, ps.Verb, time.Duration(ps.IntervalMs)*time.Millisecond, time.Duration(ps.JitterMs)*time.Millisecond)
		h.reply(msg, errcode.OK)
		return
	case "poll_stop":
		ps, code := As[types.PollStop](msg.Payload)
		if code != "" {
			h.reply(msg, code)
			return
		}
		if ps.Verb == "" {
			ps.Verb = "read"
		}
		h.poller.Stop(a, ps.Verb)
		h.reply(msg, errcode.OK)
		return
	}

	res, err := dev.Control(a, verb, msg.Payload)
	if err != nil {
		h.reply(msg, errcode.Of(err))
		return
	}
	if res.OK {
		h.reply(msg, errcode.OK)
		return
	}
	code := res.Error
	if code == "" {
		code = errcode.Busy
	}
	h.reply(msg, code)
}

// handlePoll runs an advisory control; rejections are dropped.
func (h *HAL) handlePoll(pr PollReq) {
	dev := h.dev[h.capIndex[pr.Addr]]
	if dev == nil {
		h.poller.StopAll(pr.Addr)
		return
	}
	_, _ = dev.Control(pr.Addr, pr.Verb, nil)
}

func (h *HAL) handleEvent(ev Event) {
	a := ev.Addr
	ts := ev.TS
	if ts == 0 {
		ts = time.Now().UnixNano()
	}

	// 1) Error → retained status:degraded, plus the tagged event if any.
	if ev.Err != "" {
		if ev.IsEvent && ev.EventTag != "" {
			h.conn.Publish(h.conn.NewMessage(capEventTagged(a, ev.EventTag), ev.Payload, false))
		}
		h.conn.Publish(h.conn.NewMessage(
			capStatus(a),
			types.CapabilityStatus{Link: types.LinkDegraded, TS: ts, Error: ev.Err},
			true,
		))
		return
	}

	// 2) Success: event vs value
	if ev.IsEvent {
		if ev.EventTag != "" {
			h.conn.Publish(h.conn.NewMessage(capEventTagged(a, ev.EventTag), ev.Payload, false))
		} else {
			h.conn.Publish(h.conn.NewMessage(capEvent(a), ev.Payload, false))
		}
		return
	}
	h.conn.Publish(h.conn.NewMessage(capValue(a), ev.Payload, true))
	h.conn.Publish(h.conn.NewMessage(
		capStatus(a),
		types.CapabilityStatus{Link: types.LinkUp, TS: ts},
		true,
	))
}

func (h *HAL) closeAll() {
	for id, d := range h.dev {
		if err := d.Close(); err != nil {
			println("[hal] close failed for:", id, "err:", err.Error())
		}
	}
}

func (h *HAL) pubHALState(level, status string) {
	h.conn.Publish(h.conn.NewMessage(
		T("hal", "state"),
		types.HALState{Level: level, Status: status, TS: time.Now().UnixNano()},
		true,
	))
}

func defaultDomainFor(kind types.Kind) string {
	switch kind {
	case types.KindCodec:
		return "audio"
	default:
		return "io"
	}
}

// ---- HAL as EventEmitter (enqueue to single publisher) ----

func (h *HAL) Emit(ev Event) bool {
	select {
	case h.evCh <- ev:
		return true
	default:
		return false
	}
}

// reply answers a request; errcode.OK sends OKReply, anything else ErrorReply.
// Fire-and-forget controls carry no reply address and get nothing.
func (h *HAL) reply(m *bus.Message, code errcode.Code) {
	if !m.CanReply() {
		return
	}
	var payload any = types.OKReply{OK: true}
	if code != errcode.OK {
		if code == "" {
			code = errcode.Error
		}
		payload = types.ErrorReply{Error: string(code)}
	}
	h.conn.Reply(m, payload, false)
}
