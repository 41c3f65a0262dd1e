// Package hal runs the capability HAL: it applies config/hal, builds devices
// and serves hal/cap/<domain>/<kind>/<name>/... on the bus.
package hal

import (
	"context"

	"audiocodec-go/bus"
	"audiocodec-go/services/hal/internal/core"
	"audiocodec-go/services/hal/internal/provider"

	// Device builders register themselves.
	_ "audiocodec-go/services/hal/devices/ac101"

	"tinygo.org/x/drivers"
)

type options struct {
	i2c        map[string]drivers.I2C
	noPlatform bool
}

// Option adjusts Run.
type Option func(*options)

// WithI2C registers an extra I2C bus under id, e.g. a host adapter.
func WithI2C(id string, b drivers.I2C) Option {
	return func(o *options) {
		if o.i2c == nil {
			o.i2c = map[string]drivers.I2C{}
		}
		o.i2c[id] = b
	}
}

// WithoutPlatformBuses skips the buses of the build-selected board plan.
func WithoutPlatformBuses() Option {
	return func(o *options) { o.noPlatform = true }
}

// Run blocks until ctx is cancelled.
func Run(ctx context.Context, conn *bus.Connection, opts ...Option) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	var reg *provider.Registry
	if o.noPlatform {
		reg = provider.NewRegistry()
	} else {
		reg = provider.NewResources()
	}
	defer reg.Close()
	for id, b := range o.i2c {
		reg.AddI2C(core.ResourceID(id), b)
	}

	core.NewHAL(conn, reg).Run(ctx)
}
