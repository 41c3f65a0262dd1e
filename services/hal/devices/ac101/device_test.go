package ac101dev

import (
	"context"
	"testing"
	"time"

	"audiocodec-go/drivers/ac101"
	"audiocodec-go/drivers/ac101/ac101test"
	"audiocodec-go/errcode"
	"audiocodec-go/services/hal/internal/core"
	"audiocodec-go/types"
)

// directOwner runs transactions inline on the fake chip.
type directOwner struct{ c *ac101test.Chip }

func (o directOwner) Tx(addr uint16, w, r []byte, _ int) error { return o.c.Tx(addr, w, r) }

type fakeReg struct {
	owner    core.I2COwner
	released []string
}

func (f *fakeReg) ClaimI2C(devID string, id core.ResourceID) (core.I2COwner, error) {
	if id != "i2c0" {
		return nil, errcode.UnknownBus
	}
	return f.owner, nil
}

func (f *fakeReg) ReleaseI2C(devID string, id core.ResourceID) {
	f.released = append(f.released, devID)
}

type chanEmitter chan core.Event

func (c chanEmitter) Emit(ev core.Event) bool {
	select {
	case c <- ev:
		return true
	default:
		return false
	}
}

func nextEvent(t *testing.T, ch chanEmitter) core.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return core.Event{}
	}
}

type harness struct {
	chip *ac101test.Chip
	reg  *fakeReg
	ev   chanEmitter
	dev  *Device
}

func newHarness(t *testing.T, p Params, prep func(*ac101test.Chip)) *harness {
	t.Helper()
	sleep = func(time.Duration) {}
	t.Cleanup(func() { sleep = time.Sleep })

	chip := ac101test.New(ac101.AddressDefault)
	if prep != nil {
		prep(chip)
	}
	h := &harness{chip: chip, reg: &fakeReg{owner: directOwner{chip}}, ev: make(chanEmitter, 32)}

	d, err := builder{}.Build(context.Background(), core.BuilderInput{
		ID: "codec0", Type: "ac101", Params: p,
		Res: core.Resources{Reg: h.reg, Pub: h.ev},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	h.dev = d.(*Device)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = h.dev.Close()
	})
	if err := h.dev.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	return h
}

func (h *harness) control(t *testing.T, verb string, payload any) core.EnqueueResult {
	t.Helper()
	res, err := h.dev.Control(h.dev.a, verb, payload)
	if err != nil {
		t.Fatalf("%s: unexpected error %v", verb, err)
	}
	return res
}

func TestInit_PublishesReadyValue(t *testing.T) {
	h := newHarness(t, Params{Bus: "i2c0", SampleRateHz: 44100, Bits: 16, Volume: 0.6}, nil)

	ev := nextEvent(t, h.ev)
	if ev.Err != "" || ev.IsEvent {
		t.Fatalf("want value, got %+v", ev)
	}
	v, ok := ev.Payload.(types.CodecValue)
	if !ok {
		t.Fatalf("payload %T", ev.Payload)
	}
	if v.Status != "ready" || v.Mode != "adcdac" || v.Muted {
		t.Fatalf("state: %+v", v)
	}
	if v.SampleRateHz != 44100 || v.Bits != 16 {
		t.Fatalf("format: %+v", v)
	}
	if v.Headphone != 38 || v.Speaker != 38 {
		t.Fatalf("levels: hp=%d spk=%d", v.Headphone, v.Speaker)
	}
	if ev.Addr != (core.CapAddr{Domain: "audio", Kind: types.KindCodec, Name: "codec0"}) {
		t.Fatalf("addr: %+v", ev.Addr)
	}
}

func TestInit_ResetMismatchIsFatal(t *testing.T) {
	h := newHarness(t, Params{Bus: "i2c0"}, func(c *ac101test.Chip) { c.SetResetReadback(0x0000) })

	ev := nextEvent(t, h.ev)
	if !ev.IsEvent || ev.EventTag != "init_failed" || ev.Err != string(errcode.DeviceFailed) {
		t.Fatalf("want init_failed, got %+v", ev)
	}
	p, _ := ev.Payload.(types.CodecInitFailed)
	if p.Step != "reset" {
		t.Fatalf("step: %q", p.Step)
	}
	if n := len(h.chip.Writes()); n != 1 {
		t.Fatalf("writes after failed reset: %d", n)
	}

	if res := h.control(t, "set_volume", types.CodecSetVolume{Volume: 0.5}); res.OK || res.Error != errcode.DeviceFailed {
		t.Fatalf("set_volume after failure: %+v", res)
	}
	if res := h.control(t, "init", nil); res.OK || res.Error != errcode.DeviceFailed {
		t.Fatalf("init after failure: %+v", res)
	}
	if res := h.control(t, "read", nil); !res.OK {
		t.Fatalf("read after failure: %+v", res)
	}
	ev = nextEvent(t, h.ev)
	if ev.Err != string(errcode.DeviceFailed) {
		t.Fatalf("read on failed device: %+v", ev)
	}
}

func TestControl_SetVolumeAndMute(t *testing.T) {
	h := newHarness(t, Params{Bus: "i2c0"}, nil)
	nextEvent(t, h.ev)

	if res := h.control(t, "set_volume", map[string]any{"volume": 0.5}); !res.OK {
		t.Fatalf("set_volume: %+v", res)
	}
	v := nextEvent(t, h.ev).Payload.(types.CodecValue)
	if v.Headphone != 32 || v.Speaker != 32 {
		t.Fatalf("levels: hp=%d spk=%d", v.Headphone, v.Speaker)
	}

	if res := h.control(t, "set_mute", types.CodecSetMute{On: true}); !res.OK {
		t.Fatalf("set_mute: %+v", res)
	}
	v = nextEvent(t, h.ev).Payload.(types.CodecValue)
	if !v.Muted {
		t.Fatal("expected muted")
	}
	// Mute leaves the volume fields alone.
	if v.Headphone != 32 {
		t.Fatalf("hp after mute: %d", v.Headphone)
	}
}

func TestControl_InitAndModeReportUnmute(t *testing.T) {
	h := newHarness(t, Params{Bus: "i2c0"}, nil)
	nextEvent(t, h.ev)

	for _, step := range []struct {
		verb    string
		payload any
	}{
		{"init", nil},
		{"set_mode", types.CodecSetMode{Mode: "dac"}},
	} {
		if res := h.control(t, "set_mute", types.CodecSetMute{On: true}); !res.OK {
			t.Fatalf("set_mute: %+v", res)
		}
		if v := nextEvent(t, h.ev).Payload.(types.CodecValue); !v.Muted {
			t.Fatal("expected muted")
		}
		if res := h.control(t, step.verb, step.payload); !res.OK {
			t.Fatalf("%s: %+v", step.verb, res)
		}
		v := nextEvent(t, h.ev).Payload.(types.CodecValue)
		if v.Muted {
			t.Fatalf("%s: value reports muted with outputs enabled", step.verb)
		}
		if hp := h.chip.Reg(uint8(ac101.RegHPOutCtrl)); hp&0x3000 != 0x3000 {
			t.Fatalf("%s: HPOUT = %#04x", step.verb, hp)
		}
	}
}

func TestControl_SetVolumeFade(t *testing.T) {
	h := newHarness(t, Params{Bus: "i2c0"}, nil)
	if v := nextEvent(t, h.ev).Payload.(types.CodecValue); v.Headphone != 63 {
		t.Fatalf("init level: %d", v.Headphone)
	}
	h.chip.ClearLog()

	if res := h.control(t, "set_volume", types.CodecSetVolume{Volume: 0, FadeMs: 320}); !res.OK {
		t.Fatalf("fade: %+v", res)
	}
	v := nextEvent(t, h.ev).Payload.(types.CodecValue)
	if v.Headphone != 0 || v.Speaker != 0 {
		t.Fatalf("after fade: hp=%d spk=%d", v.Headphone, v.Speaker)
	}
	hp := 0
	for _, w := range h.chip.Writes() {
		if w.Reg == uint8(ac101.RegHPOutCtrl) {
			hp++
		}
	}
	if hp < 2 {
		t.Fatalf("fade wrote headphone %d times", hp)
	}

	if res := h.control(t, "set_volume", types.CodecSetVolume{Volume: 1, FadeMs: 60_000}); res.OK || res.Error != errcode.InvalidPayload {
		t.Fatalf("overlong fade: %+v", res)
	}
}

func TestControl_SetFormatAndMode(t *testing.T) {
	h := newHarness(t, Params{Bus: "i2c0"}, nil)
	nextEvent(t, h.ev)

	if res := h.control(t, "set_format", types.CodecSetFormat{SampleRateHz: 48000, Bits: 24}); !res.OK {
		t.Fatalf("set_format: %+v", res)
	}
	v := nextEvent(t, h.ev).Payload.(types.CodecValue)
	if v.SampleRateHz != 48000 || v.Bits != 24 {
		t.Fatalf("format: %+v", v)
	}

	if res := h.control(t, "set_mode", types.CodecSetMode{Mode: "dac"}); !res.OK {
		t.Fatalf("set_mode: %+v", res)
	}
	v = nextEvent(t, h.ev).Payload.(types.CodecValue)
	if v.Mode != "dac" {
		t.Fatalf("mode: %q", v.Mode)
	}
}

func TestControl_RejectsBadInput(t *testing.T) {
	h := newHarness(t, Params{Bus: "i2c0"}, nil)
	nextEvent(t, h.ev)

	cases := []struct {
		verb    string
		payload any
		want    errcode.Code
	}{
		{"set_format", types.CodecSetFormat{Bits: 12}, errcode.InvalidPayload},
		{"set_format", types.CodecSetFormat{}, errcode.InvalidPayload},
		{"set_mode", types.CodecSetMode{Mode: "stereo"}, errcode.InvalidPayload},
		{"set_volume", 42, errcode.InvalidPayload},
		{"reboot", nil, errcode.Unsupported},
	}
	for _, tc := range cases {
		res := h.control(t, tc.verb, tc.payload)
		if res.OK || res.Error != tc.want {
			t.Errorf("%s(%v): got %+v want %s", tc.verb, tc.payload, res, tc.want)
		}
	}
}

func TestControl_DumpEvent(t *testing.T) {
	h := newHarness(t, Params{Bus: "i2c0"}, nil)
	nextEvent(t, h.ev)

	h.chip.FailRead(uint8(ac101.RegOMixerSR), ac101test.ErrNACK)
	if res := h.control(t, "dump", nil); !res.OK {
		t.Fatalf("dump: %+v", res)
	}
	ev := nextEvent(t, h.ev)
	if !ev.IsEvent || ev.EventTag != "dump" {
		t.Fatalf("want dump event, got %+v", ev)
	}
	d := ev.Payload.(types.CodecDump)
	if len(d.Registers) != ac101.NumRegisters {
		t.Fatalf("registers: %d", len(d.Registers))
	}
	if d.Error == "" {
		t.Fatal("expected dump error")
	}
	bad := 0
	for _, r := range d.Registers {
		if !r.OK {
			bad++
			if r.Name != ac101.RegOMixerSR.String() {
				t.Fatalf("unexpected failed register %s", r.Name)
			}
		}
	}
	if bad != 1 {
		t.Fatalf("failed entries: %d", bad)
	}
}

func TestClose_ReleasesBusAndStopsWorker(t *testing.T) {
	h := newHarness(t, Params{Bus: "i2c0"}, nil)
	nextEvent(t, h.ev)

	_ = h.dev.Close()
	if len(h.reg.released) == 0 || h.reg.released[0] != "codec0" {
		t.Fatalf("released: %v", h.reg.released)
	}
	if res := h.control(t, "read", nil); res.OK || res.Error != errcode.Unavailable {
		t.Fatalf("read after close: %+v", res)
	}
}

func TestBuild_Validation(t *testing.T) {
	reg := &fakeReg{owner: directOwner{ac101test.New(ac101.AddressDefault)}}
	in := func(p any) core.BuilderInput {
		return core.BuilderInput{ID: "c", Type: "ac101", Params: p, Res: core.Resources{Reg: reg}}
	}
	bad := []any{
		nil,
		Params{},
		Params{Bus: "i2c0", Addr: 0x80},
		Params{Bus: "i2c0", Bits: 12},
		Params{Bus: "i2c0", Volume: 1.5},
		Params{Bus: "i2c0", Mode: "loud"},
	}
	for _, p := range bad {
		if _, err := (builder{}).Build(context.Background(), in(p)); err != errcode.InvalidParams {
			t.Errorf("params %+v: got %v", p, err)
		}
	}
	if _, err := (builder{}).Build(context.Background(), in(Params{Bus: "i2c9"})); err != errcode.UnknownBus {
		t.Fatalf("unknown bus: %v", err)
	}

	d, err := (builder{}).Build(context.Background(), in(map[string]any{"bus": "i2c0", "name": "main", "mode": "line"}))
	if err != nil {
		t.Fatalf("map params: %v", err)
	}
	dev := d.(*Device)
	if dev.params.Addr != ac101.AddressDefault || dev.a.Domain != "audio" || dev.a.Name != "main" || dev.mode != ac101.ModeLine {
		t.Fatalf("defaults: %+v mode=%v", dev.a, dev.mode)
	}
}
