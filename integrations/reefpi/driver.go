package reefpi

import (
	"fmt"
	"log"
	"sync"

	"audiocodec-go/drivers/ac101"

	"github.com/reef-pi/hal"
)

// codecDriver serialises all chip access; reef-pi may call pins concurrently.
type codecDriver struct {
	mu    sync.Mutex
	dev   *ac101.Device
	debug bool
	meta  hal.Metadata

	volume *volumeChannel
	mute   *muteOutput
}

func newDriver(dev *ac101.Device, debug bool, meta hal.Metadata) (*codecDriver, error) {
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("ac101 addr=0x%02X: %w", dev.Address(), err)
	}
	d := &codecDriver{dev: dev, debug: debug, meta: meta}
	d.volume = &volumeChannel{d: d, last: 100}
	d.mute = &muteOutput{d: d}
	if debug {
		log.Printf("ac101 init addr=0x%02X rate=%d bits=%d", dev.Address(), dev.SampleFrequency(), dev.Resolution())
	}
	return d, nil
}

func (d *codecDriver) Metadata() hal.Metadata { return d.meta }

// Close leaves the codec running; the bus belongs to reef-pi.
func (d *codecDriver) Close() error { return nil }

func (d *codecDriver) Pins(cap hal.Capability) ([]hal.Pin, error) {
	switch cap {
	case hal.PWM:
		return []hal.Pin{d.volume}, nil
	case hal.DigitalOutput:
		return []hal.Pin{d.mute}, nil
	default:
		return nil, fmt.Errorf("ac101: unsupported capability: %s", cap.String())
	}
}

func (d *codecDriver) PWMChannels() []hal.PWMChannel { return []hal.PWMChannel{d.volume} }

func (d *codecDriver) PWMChannel(n int) (hal.PWMChannel, error) {
	if n != 0 {
		return nil, fmt.Errorf("ac101: invalid pwm channel %d", n)
	}
	return d.volume, nil
}

func (d *codecDriver) DigitalOutputPins() []hal.DigitalOutputPin {
	return []hal.DigitalOutputPin{d.mute}
}

func (d *codecDriver) DigitalOutputPin(n int) (hal.DigitalOutputPin, error) {
	if n != 0 {
		return nil, fmt.Errorf("ac101: invalid output pin %d", n)
	}
	return d.mute, nil
}

// volumeChannel maps a 0..100 duty onto the unified volume.
type volumeChannel struct {
	d    *codecDriver
	last float64 // last non-zero duty, restored by Write(true)
	on   bool
}

func (c *volumeChannel) Name() string { return driverName + " volume" }
func (c *volumeChannel) Number() int  { return 0 }
func (c *volumeChannel) Close() error { return nil }

func (c *volumeChannel) Set(value float64) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("ac101: volume %v out of range 0..100", value)
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if err := c.d.dev.SetVolume(float32(value / 100)); err != nil {
		return err
	}
	if value > 0 {
		c.last = value
	}
	c.on = value > 0
	if c.d.debug {
		log.Printf("ac101 volume=%.1f%%", value)
	}
	return nil
}

func (c *volumeChannel) Write(on bool) error {
	if !on {
		return c.Set(0)
	}
	c.d.mu.Lock()
	last := c.last
	c.d.mu.Unlock()
	return c.Set(last)
}

func (c *volumeChannel) LastState() bool {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	return c.on
}

// muteOutput is on while the outputs are muted.
type muteOutput struct {
	d *codecDriver
}

func (m *muteOutput) Name() string { return driverName + " mute" }
func (m *muteOutput) Number() int  { return 0 }
func (m *muteOutput) Close() error { return nil }

func (m *muteOutput) Write(on bool) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if m.d.debug {
		log.Printf("ac101 mute=%v", on)
	}
	return m.d.dev.SetMute(on)
}

func (m *muteOutput) LastState() bool {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	return m.d.dev.IsMuted()
}
