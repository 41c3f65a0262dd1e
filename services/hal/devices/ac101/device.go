package ac101dev

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"audiocodec-go/drivers/ac101"
	"audiocodec-go/errcode"
	"audiocodec-go/services/hal/internal/core"
	"audiocodec-go/types"
	"audiocodec-go/x/ramp"
)

const (
	reqQueueLen = 8
	i2cTimeout  = 50 // ms per transaction
	maxFadeMs   = 10_000
	fadeSteps   = 32
)

// sleep is the settle-delay function handed to the driver.
var sleep = time.Sleep

// Device is a single-goroutine HAL device for the AC101. The worker owns the
// driver; controls only enqueue.
type Device struct {
	id     string
	a      core.CapAddr // audio/codec/<name>
	res    core.Resources
	i2c    core.I2COwner
	params Params
	mode   ac101.Mode // applied after init when non-zero

	alive  atomic.Bool
	failed atomic.Bool

	// Owned by the worker only:
	drv *ac101.Device

	// Single-owner worker channels
	reqCh chan request
	done  chan struct{}
}

type opCode uint8

const (
	opInit opCode = iota
	opRead
	opSetVolume
	opSetMute
	opSetFormat
	opSetMode
	opDump
	opStop
)

type request struct {
	op  opCode
	arg any
}

// ownerBus runs the driver's transactions through the shared bus owner.
type ownerBus struct {
	o         core.I2COwner
	timeoutMS int
}

func (b ownerBus) Tx(addr uint16, w, r []byte) error { return b.o.Tx(addr, w, r, b.timeoutMS) }

// ---- core.Device interface ----

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []core.CapabilitySpec {
	return []core.CapabilitySpec{{
		Domain: d.a.Domain,
		Kind:   types.KindCodec,
		Name:   d.a.Name,
		Info: types.Info{
			SchemaVersion: 1, Driver: "ac101",
			Detail: types.CodecInfo{Chip: "ac101", Addr: d.params.Addr, Bus: d.params.Bus},
		},
	}}
}

// Init starts the worker, which brings the chip up before serving controls.
func (d *Device) Init(ctx context.Context) error {
	d.reqCh = make(chan request, reqQueueLen)
	d.done = make(chan struct{})
	d.reqCh <- request{op: opInit}

	d.alive.Store(true)
	go d.worker(ctx)
	return nil
}

func (d *Device) Close() error {
	if d.alive.Load() {
		// best-effort stop
		select {
		case d.reqCh <- request{op: opStop}:
		default:
		}
		t := time.NewTimer(300 * time.Millisecond)
		select {
		case <-d.done:
		case <-t.C:
		}
		t.Stop()
	}
	d.res.Reg.ReleaseI2C(d.id, core.ResourceID(d.params.Bus))
	return nil
}

func (d *Device) Control(_ core.CapAddr, verb string, payload any) (core.EnqueueResult, error) {
	// Map verbs to requests; all controls are non-blocking enqueue-only.
	send := func(req request) (core.EnqueueResult, error) {
		if !d.alive.Load() {
			return core.EnqueueResult{OK: false, Error: errcode.Unavailable}, nil
		}
		select {
		case d.reqCh <- req:
			return core.EnqueueResult{OK: true}, nil
		default:
			return core.EnqueueResult{OK: false, Error: errcode.Busy}, nil
		}
	}
	reject := func(c errcode.Code) (core.EnqueueResult, error) {
		return core.EnqueueResult{OK: false, Error: c}, nil
	}

	switch verb {
	case "read":
		return send(request{op: opRead})
	case "dump":
		return send(request{op: opDump})
	}

	// Everything below changes chip state.
	if d.failed.Load() {
		return reject(errcode.DeviceFailed)
	}
	switch verb {
	case "init":
		return send(request{op: opInit})
	case "set_volume":
		v, code := core.As[types.CodecSetVolume](payload)
		if code != "" || math.IsNaN(float64(v.Volume)) || v.FadeMs > maxFadeMs {
			return reject(errcode.InvalidPayload)
		}
		return send(request{op: opSetVolume, arg: v})
	case "set_mute":
		v, code := core.As[types.CodecSetMute](payload)
		if code != "" {
			return reject(code)
		}
		return send(request{op: opSetMute, arg: v})
	case "set_format":
		v, code := core.As[types.CodecSetFormat](payload)
		if code != "" || (v.Bits != 0 && !ac101.Resolution(v.Bits).Valid()) {
			return reject(errcode.InvalidPayload)
		}
		if v.Bits == 0 && v.SampleRateHz == 0 {
			return reject(errcode.InvalidPayload)
		}
		return send(request{op: opSetFormat, arg: v})
	case "set_mode":
		v, code := core.As[types.CodecSetMode](payload)
		if code != "" {
			return reject(code)
		}
		m, ok := ac101.ParseMode(v.Mode)
		if !ok {
			return reject(errcode.InvalidPayload)
		}
		return send(request{op: opSetMode, arg: m})
	default:
		return reject(errcode.Unsupported)
	}
}

// ---- Worker ----

func (d *Device) worker(ctx context.Context) {
	defer close(d.done)
	defer d.alive.Store(false)

	d.drv = ac101.New(ownerBus{o: d.i2c, timeoutMS: i2cTimeout}, ac101.Config{
		Address:      d.params.Addr,
		Resolution:   ac101.Resolution(d.params.Bits),
		SampleRateHz: d.params.SampleRateHz,
		Sleep:        sleep,
	})

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.reqCh:
			switch req.op {
			case opInit:
				d.bringUp()
			case opRead:
				d.publishValue()
			case opSetVolume:
				v, _ := req.arg.(types.CodecSetVolume)
				d.apply(d.setVolume(ctx, v))
			case opSetMute:
				v, _ := req.arg.(types.CodecSetMute)
				d.apply(d.drv.SetMute(v.On))
			case opSetFormat:
				v, _ := req.arg.(types.CodecSetFormat)
				d.apply(d.setFormat(v))
			case opSetMode:
				m, _ := req.arg.(ac101.Mode)
				err := d.drv.SetMode(m)
				if err == nil {
					d.mode = m
				}
				d.apply(err)
			case opDump:
				d.publishDump()
			case opStop:
				return
			}
		}
	}
}

// ---- Worker helpers (single-owner context) ----

// bringUp runs the init sequence and the configured start-up settings.
func (d *Device) bringUp() {
	if err := d.drv.Init(); err != nil {
		d.failed.Store(d.drv.Status() == ac101.StatusFailed)
		step := ""
		var ie *ac101.InitError
		if errors.As(err, &ie) {
			step = ie.Step.String()
		}
		println("[ac101]", d.id, "init failed:", err.Error())
		_ = d.res.Pub.Emit(core.Event{
			Addr:     d.a,
			IsEvent:  true,
			EventTag: "init_failed",
			Payload:  types.CodecInitFailed{Step: step, Error: err.Error()},
			Err:      string(errcode.DeviceFailed),
			TS:       time.Now().UnixNano(),
		})
		return
	}
	if d.mode == 0 {
		d.mode = ac101.ModeADCDAC
	} else if err := d.drv.SetMode(d.mode); err != nil {
		d.apply(err)
		return
	}
	if d.params.Volume > 0 {
		if err := d.drv.SetVolume(d.params.Volume); err != nil {
			d.apply(err)
			return
		}
	}
	if d.params.Muted {
		if err := d.drv.MuteOn(); err != nil {
			d.apply(err)
			return
		}
	}
	d.publishValue()
}

// setVolume applies v, fading over the headphone scale when FadeMs is set.
// Both outputs follow every step. Controls queue behind a running fade.
func (d *Device) setVolume(ctx context.Context, v types.CodecSetVolume) error {
	if v.FadeMs == 0 {
		return d.drv.SetVolume(v.Volume)
	}
	cur, err := d.drv.HeadphoneVolume()
	if err != nil {
		return err
	}
	return ramp.Linear(cur, ac101.HeadphoneField(v.Volume), ac101.MaxHeadphoneLevel,
		time.Duration(v.FadeMs)*time.Millisecond, fadeSteps,
		func(dt time.Duration) bool {
			sleep(dt)
			return ctx.Err() == nil
		},
		func(l uint8) error { return d.drv.SetVolume(ac101.VolumeFromHeadphone(l)) },
	)
}

func (d *Device) setFormat(v types.CodecSetFormat) error {
	if v.SampleRateHz != 0 {
		if err := d.drv.SetSampleFrequency(v.SampleRateHz); err != nil {
			return err
		}
	}
	if v.Bits != 0 {
		return d.drv.SetBitsPerSample(ac101.Resolution(v.Bits))
	}
	return nil
}

// apply publishes the outcome of a state-changing call.
func (d *Device) apply(err error) {
	if err != nil {
		d.emitErr(err)
		return
	}
	d.publishValue()
}

func (d *Device) publishValue() {
	v := types.CodecValue{
		Status: d.drv.Status().String(),
		Muted:  d.drv.IsMuted(),
	}
	if d.drv.Status() == ac101.StatusReady {
		v.Mode = d.mode.String()
	}
	var err error
	if v.Headphone, err = d.drv.HeadphoneVolume(); err != nil {
		d.emitErr(err)
		return
	}
	if v.Speaker, err = d.drv.SpeakerVolume(); err != nil {
		d.emitErr(err)
		return
	}
	v.Volume = ac101.VolumeFromHeadphone(v.Headphone)
	if v.SampleRateHz, err = d.drv.I2sSampleRate(); err != nil {
		d.emitErr(err)
		return
	}
	ws, err := d.drv.I2sWordSize()
	if err != nil {
		d.emitErr(err)
		return
	}
	v.Bits = uint8(ac101.ResolutionOf(ws))

	if d.drv.Status() == ac101.StatusFailed {
		// Registers are readable but the device is unusable.
		_ = d.res.Pub.Emit(core.Event{Addr: d.a, Err: string(errcode.DeviceFailed), TS: time.Now().UnixNano()})
		return
	}
	_ = d.res.Pub.Emit(core.Event{Addr: d.a, Payload: v, TS: time.Now().UnixNano()})
}

func (d *Device) publishDump() {
	regs, err := d.drv.Dump(make([]ac101.RegisterValue, 0, ac101.NumRegisters))
	out := types.CodecDump{Registers: make([]types.CodecRegister, len(regs))}
	for i, r := range regs {
		out.Registers[i] = types.CodecRegister{Reg: uint8(r.Reg), Name: r.Reg.String(), Value: r.Value, OK: r.OK}
	}
	if err != nil {
		out.Error = string(errcode.MapDriverErr(err))
	}
	_ = d.res.Pub.Emit(core.Event{Addr: d.a, IsEvent: true, EventTag: "dump", Payload: out, TS: time.Now().UnixNano()})
}

func (d *Device) emitErr(err error) {
	code := errcode.MapDriverErr(err)
	if code == errcode.DeviceFailed {
		d.failed.Store(true)
	}
	_ = d.res.Pub.Emit(core.Event{Addr: d.a, Err: string(code), TS: time.Now().UnixNano()})
}
