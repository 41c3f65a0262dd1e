// Package ac101test provides an in-memory AC101 register file that
// implements drivers.I2C, for tests of the driver and its consumers.
package ac101test

import (
	"errors"
	"sync"
)

var ErrNACK = errors.New("ac101test: nack")

const (
	regReset      = 0x00
	resetSentinel = 0x0123
	resetReadback = 0x0101
)

// Write is one logged register write.
type Write struct {
	Reg uint8
	Val uint16
}

// Chip is a fake codec. Register words travel big-endian.
//
// Supported transactions:
//   - w=[reg,hi,lo], r=nil: write
//   - w=[reg], r=[2]: read
//   - w=[reg], r=nil: set the register pointer
//   - w=nil, r=[2]: read at the pointer
type Chip struct {
	mu   sync.Mutex
	addr uint16
	regs [256]uint16
	ptr  uint8

	resetReadback uint16
	writes        []Write
	reads         int
	failRead      map[uint8]error
	failWrite     map[uint8]error
	failAll       error
}

// New returns a chip at addr whose reset readback is the datasheet value.
func New(addr uint16) *Chip {
	return &Chip{
		addr:          addr,
		resetReadback: resetReadback,
		failRead:      map[uint8]error{},
		failWrite:     map[uint8]error{},
	}
}

func (c *Chip) Tx(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if addr != c.addr {
		return ErrNACK
	}
	if c.failAll != nil {
		return c.failAll
	}
	switch {
	case len(w) == 3 && len(r) == 0:
		reg := w[0]
		if err := c.failWrite[reg]; err != nil {
			return err
		}
		val := uint16(w[1])<<8 | uint16(w[2])
		c.writes = append(c.writes, Write{Reg: reg, Val: val})
		if reg == regReset && val == resetSentinel {
			c.regs = [256]uint16{}
			c.regs[regReset] = c.resetReadback
			return nil
		}
		c.regs[reg] = val
		return nil
	case len(w) == 1 && len(r) == 0:
		c.ptr = w[0]
		return nil
	case len(w) == 1 && len(r) == 2:
		c.ptr = w[0]
		return c.readLocked(r)
	case len(w) == 0 && len(r) == 2:
		return c.readLocked(r)
	}
	return ErrNACK
}

func (c *Chip) readLocked(r []byte) error {
	if err := c.failRead[c.ptr]; err != nil {
		return err
	}
	c.reads++
	v := c.regs[c.ptr]
	r[0] = byte(v >> 8)
	r[1] = byte(v)
	return nil
}

// Reg returns the current word of reg.
func (c *Chip) Reg(reg uint8) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[reg]
}

// SetReg stores a word without logging it as a write.
func (c *Chip) SetReg(reg uint8, v uint16) {
	c.mu.Lock()
	c.regs[reg] = v
	c.mu.Unlock()
}

// SetResetReadback sets what the reset register reads after a reset write.
func (c *Chip) SetResetReadback(v uint16) {
	c.mu.Lock()
	c.resetReadback = v
	c.mu.Unlock()
}

// FailRead makes reads of reg fail with err; nil clears it.
func (c *Chip) FailRead(reg uint8, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failRead, reg)
		return
	}
	c.failRead[reg] = err
}

// FailWrite makes writes to reg fail with err; nil clears it.
func (c *Chip) FailWrite(reg uint8, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failWrite, reg)
		return
	}
	c.failWrite[reg] = err
}

// Disconnect makes every transaction fail with err; nil reconnects.
func (c *Chip) Disconnect(err error) {
	c.mu.Lock()
	c.failAll = err
	c.mu.Unlock()
}

// Writes returns a copy of the write log.
func (c *Chip) Writes() []Write {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Write, len(c.writes))
	copy(out, c.writes)
	return out
}

// Reads returns the number of successful reads.
func (c *Chip) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// ClearLog forgets logged writes and reads.
func (c *Chip) ClearLog() {
	c.mu.Lock()
	c.writes = nil
	c.reads = 0
	c.mu.Unlock()
}
