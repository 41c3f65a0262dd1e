//go:build linux && !rp2040 && !rp2350

package main

import (
	"fmt"
	"sync"

	i2c "github.com/d2r2/go-i2c"
	logger "github.com/d2r2/go-logger"
)

// linuxBus talks to /dev/i2c-N. go-i2c binds one handle per slave address,
// so handles are opened on first use.
type linuxBus struct {
	mu    sync.Mutex
	bus   int
	conns map[uint16]*i2c.I2C
}

func openLinux(bus int) (hostBus, error) {
	// go-i2c logs every transfer at debug level.
	logger.ChangePackageLogLevel("i2c", logger.InfoLevel)
	return &linuxBus{bus: bus, conns: map[uint16]*i2c.I2C{}}, nil
}

func (b *linuxBus) conn(addr uint16) (*i2c.I2C, error) {
	if addr > 0x7F {
		return nil, errAddr
	}
	if c, ok := b.conns[addr]; ok {
		return c, nil
	}
	c, err := i2c.NewI2C(uint8(addr), b.bus)
	if err != nil {
		return nil, fmt.Errorf("open /dev/i2c-%d addr 0x%02X: %w", b.bus, addr, err)
	}
	b.conns[addr] = c
	return c, nil
}

func (b *linuxBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, err := b.conn(addr)
	if err != nil {
		return err
	}
	if len(w) > 0 {
		if _, err := c.WriteBytes(w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		n, err := c.ReadBytes(r)
		if err != nil {
			return err
		}
		if n != len(r) {
			return fmt.Errorf("i2c: short read %d/%d", n, len(r))
		}
	}
	return nil
}

func (b *linuxBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var first error
	for a, c := range b.conns {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
		delete(b.conns, a)
	}
	return first
}
