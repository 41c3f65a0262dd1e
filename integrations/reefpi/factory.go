// Package reefpi exposes an AC101 codec to reef-pi: the volume is a PWM
// channel (0..100 %) and the mute switch is a digital output.
package reefpi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"

	"audiocodec-go/drivers/ac101"

	"github.com/reef-pi/hal"
	"github.com/reef-pi/rpi/i2c"
)

const (
	driverName = "ac101"

	paramAddress    = "Address"    // string, e.g. "0x1A"
	paramSampleRate = "SampleRate" // Hz
	paramBits       = "Bits"       // 8/16/20/24
	paramDebug      = "Debug"
)

type factory struct {
	meta       hal.Metadata
	parameters []hal.ConfigParameter
}

var (
	f    *factory
	once sync.Once
)

func Factory() hal.DriverFactory {
	once.Do(func() {
		f = &factory{
			meta: hal.Metadata{
				Name:        driverName,
				Description: "AC101 audio codec over I2C. PWM channel 0 sets the output volume, digital output 0 mutes.",
				Capabilities: []hal.Capability{
					hal.PWM,
					hal.DigitalOutput,
				},
			},
			parameters: []hal.ConfigParameter{
				{Name: paramAddress, Type: hal.String, Order: 0, Default: "0x1A"},
				{Name: paramSampleRate, Type: hal.Integer, Order: 1, Default: int(ac101.DefaultSampleRateHz)},
				{Name: paramBits, Type: hal.Integer, Order: 2, Default: 16},
				{Name: paramDebug, Type: hal.Boolean, Order: 3, Default: false},
			},
		}
	})
	return f
}

func (f *factory) Metadata() hal.Metadata               { return f.meta }
func (f *factory) GetParameters() []hal.ConfigParameter { return f.parameters }

// parseAddr accepts "0x1A" style hex or "26" style decimal.
func parseAddr(s string) (uint16, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, errors.New("empty address")
	}
	base := 10
	if strings.HasPrefix(s, "0x") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 8)
	if err != nil {
		return 0, err
	}
	if v > 0x7F {
		return 0, errors.New("not a 7-bit address")
	}
	return uint16(v), nil
}

func (f *factory) ValidateParameters(params map[string]interface{}) (bool, map[string][]string) {
	errs := make(map[string][]string)

	if v, ok := params[paramAddress]; ok {
		s, _ := v.(string)
		if _, err := parseAddr(s); err != nil {
			errs[paramAddress] = append(errs[paramAddress], "must be a 7-bit I2C address like 0x1A")
		}
	}
	if v, ok := params[paramSampleRate]; ok {
		hz, ok := hal.ConvertToInt(v)
		if !ok || hz <= 0 || int64(hz) > math.MaxUint32 {
			errs[paramSampleRate] = append(errs[paramSampleRate], "must be a positive rate in Hz; unsupported rates run at 16000")
		}
	}
	if v, ok := params[paramBits]; ok {
		b, ok := hal.ConvertToInt(v)
		if !ok || b < 0 || b > 255 || !ac101.Resolution(b).Valid() {
			errs[paramBits] = append(errs[paramBits], "must be 8, 16, 20 or 24")
		}
	}
	if v, ok := params[paramDebug]; ok {
		if _, ok := v.(bool); !ok {
			errs[paramDebug] = append(errs[paramDebug], "must be boolean")
		}
	}

	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

func (f *factory) NewDriver(params map[string]interface{}, hardwareResources interface{}) (hal.Driver, error) {
	if ok, failures := f.ValidateParameters(params); !ok {
		return nil, errors.New(hal.ToErrorString(failures))
	}

	bus, ok := hardwareResources.(i2c.Bus)
	if !ok {
		return nil, fmt.Errorf("ac101: expected i2c.Bus, got %T", hardwareResources)
	}

	cfg := ac101.DefaultConfig()
	if s, ok := params[paramAddress].(string); ok {
		cfg.Address, _ = parseAddr(s)
	}
	if v, ok := params[paramSampleRate]; ok {
		hz, _ := hal.ConvertToInt(v)
		cfg.SampleRateHz = uint32(hz)
	}
	if v, ok := params[paramBits]; ok {
		b, _ := hal.ConvertToInt(v)
		cfg.Resolution = ac101.Resolution(b)
	}
	debug, _ := params[paramDebug].(bool)

	if debug {
		if b, err := json.MarshalIndent(params, "", "  "); err == nil {
			log.Printf("ac101 NewDriver params:\n%s", string(b))
		}
	}

	return newDriver(ac101.New(busAdapter{bus: bus}, cfg), debug, f.meta)
}
