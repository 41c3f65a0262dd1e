package ac101

import (
	"errors"
	"strconv"
	"time"

	"tinygo.org/x/drivers"
)

var (
	ErrResetVerify  = errors.New("ac101: reset verification failed")
	ErrDeviceFailed = errors.New("ac101: device failed")
	ErrInvalidRes   = errors.New("ac101: unsupported resolution")
	ErrInvalidMode  = errors.New("ac101: unknown mode")
)

// InitError reports which bring-up step failed.
type InitError struct {
	Step Step
	Err  error
}

func (e *InitError) Error() string {
	return "ac101: init " + e.Step.String() + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error { return e.Err }

// Step identifies one stage of the bring-up sequence.
type Step uint8

const (
	StepReset Step = iota + 1
	StepPreset
	StepPLL
	StepClock
	StepI2S
	StepRouting
	StepOutput
)

func (s Step) String() string {
	switch s {
	case StepReset:
		return "reset"
	case StepPreset:
		return "preset"
	case StepPLL:
		return "pll"
	case StepClock:
		return "clock"
	case StepI2S:
		return "i2s"
	case StepRouting:
		return "routing"
	case StepOutput:
		return "output"
	default:
		return "step(" + strconv.Itoa(int(s)) + ")"
	}
}

// Status is the operational state of a Device.
type Status uint8

const (
	StatusUninitialised Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "uninitialised"
	}
}

const (
	ResetSettle  = 100 * time.Millisecond
	MixerSettle  = 100 * time.Millisecond
	OutputSettle = 10 * time.Millisecond
)

type Config struct {
	Address      uint16     // 0 => AddressDefault
	Resolution   Resolution // 0 => 16 bit
	SampleRateHz uint32     // 0 => 16000
	// Sleep blocks for the chip settle delays. nil => time.Sleep.
	Sleep func(time.Duration)
}

func DefaultConfig() Config {
	return Config{
		Address:      AddressDefault,
		Resolution:   Resolution16,
		SampleRateHz: DefaultSampleRateHz,
	}
}

// Validate rejects values the chip cannot encode. Unsupported sample rates
// are accepted; they fall back to 16 kHz when applied.
func (c Config) Validate() error {
	if c.Address > 0x7F {
		return errors.New("ac101: address must be 7-bit")
	}
	if c.Resolution != 0 && !c.Resolution.Valid() {
		return ErrInvalidRes
	}
	return nil
}

type Device struct {
	i2c   drivers.I2C
	addr  uint16
	sleep func(time.Duration)

	status  Status
	res     Resolution
	rateHz  uint32
	isMuted bool

	// Fixed buffers to avoid per-call heap allocations.
	w [3]byte
	r [2]byte
}

func New(i2c drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	res := cfg.Resolution
	if res == 0 {
		res = Resolution16
	}
	rate := cfg.SampleRateHz
	if rate == 0 {
		rate = DefaultSampleRateHz
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Device{
		i2c:    i2c,
		addr:   addr,
		sleep:  sleep,
		res:    res,
		rateHz: rate,
	}
}

func (d *Device) Address() uint16 { return d.addr }

func (d *Device) Status() Status { return d.status }

// Resolution returns the configured bit depth.
func (d *Device) Resolution() Resolution { return d.res }

// SampleFrequency returns the configured sample rate in Hz.
func (d *Device) SampleFrequency() uint32 { return d.rateHz }

// IsMuted mirrors the last mute state that was applied successfully.
func (d *Device) IsMuted() bool { return d.isMuted }

func (d *Device) usable() error {
	if d.status == StatusFailed {
		return ErrDeviceFailed
	}
	return nil
}

// SetBitsPerSample sets the I2S word size. Before Init only the cached value
// changes; once Ready the word size is written and cached on success.
func (d *Device) SetBitsPerSample(r Resolution) error {
	if err := d.usable(); err != nil {
		return err
	}
	if !r.Valid() {
		return ErrInvalidRes
	}
	if d.status == StatusReady {
		if err := d.SetI2sWordSize(ResolutionField(r)); err != nil {
			return err
		}
	}
	d.res = r
	return nil
}

// SetSampleFrequency sets the sample rate. Before Init only the cached value
// changes; once Ready the rate register is written and cached on success.
func (d *Device) SetSampleFrequency(hz uint32) error {
	if err := d.usable(); err != nil {
		return err
	}
	if d.status == StatusReady {
		if err := d.SetI2sSampleRate(hz); err != nil {
			return err
		}
	}
	d.rateHz = hz
	return nil
}
