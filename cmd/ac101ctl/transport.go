//go:build !rp2040 && !rp2350

package main

import (
	"errors"
	"fmt"
	"time"

	mcp "github.com/ardnew/mcp2221a"
	"tinygo.org/x/drivers"
)

var errAddr = errors.New("address out of 7-bit range")

// hostBus is a drivers.I2C that can also be closed.
type hostBus interface {
	drivers.I2C
	Close() error
}

func openBus(transport string, busNum int, baud uint32) (hostBus, error) {
	var (
		b   hostBus
		err error
	)
	switch transport {
	case "linux":
		b, err = openLinux(busNum)
	case "mcp2221a":
		var m *mcpBus
		if m, err = openMCP(byte(busNum), baud); err == nil {
			b = m
		}
	default:
		err = fmt.Errorf("unknown transport %q (want linux or mcp2221a)", transport)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// mcpBus drives the codec through a Microchip MCP2221A USB bridge.
type mcpBus struct {
	m *mcp.MCP2221A
}

func openMCP(idx byte, baud uint32) (*mcpBus, error) {
	m, err := mcp.New(idx, mcp.VID, mcp.PID)
	if err != nil {
		return nil, fmt.Errorf("mcp2221a open: %w", err)
	}
	if err := m.Reset(5 * time.Second); err != nil {
		m.Close()
		return nil, fmt.Errorf("mcp2221a reset: %w", err)
	}
	if baud == 0 {
		baud = mcp.I2CBaudRate
	}
	if err := m.I2CSetConfig(baud); err != nil {
		m.Close()
		return nil, fmt.Errorf("mcp2221a i2c config: %w", err)
	}
	return &mcpBus{m: m}, nil
}

func (b *mcpBus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return errAddr
	}
	a := uint8(addr)
	if len(w) > 0 {
		// No STOP when a read follows: the read goes out as a repeated start.
		if err := b.m.I2CWrite(len(r) == 0, a, w, uint16(len(w))); err != nil {
			return err
		}
	}
	if len(r) == 0 {
		return nil
	}
	got, err := b.m.I2CRead(len(w) > 0, a, uint16(len(r)))
	if err != nil {
		return err
	}
	if len(got) < len(r) {
		return fmt.Errorf("mcp2221a: short read %d/%d", len(got), len(r))
	}
	copy(r, got)
	return nil
}

func (b *mcpBus) Close() error { return b.m.Close() }
