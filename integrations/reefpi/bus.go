package reefpi

import (
	"errors"

	"github.com/reef-pi/rpi/i2c"
	"tinygo.org/x/drivers"
)

var errShortRead = errors.New("reefpi: short i2c read")

// busAdapter presents a reef-pi i2c.Bus as a tinygo drivers.I2C.
type busAdapter struct {
	bus i2c.Bus
}

var _ drivers.I2C = busAdapter{}

// Tx maps the transaction shapes the codec driver uses onto the reef-pi
// bus calls. A one-byte write followed by a read is a register read.
func (a busAdapter) Tx(addr uint16, w, r []byte) error {
	dev := byte(addr)
	switch {
	case len(r) == 0:
		return a.bus.WriteBytes(dev, w)
	case len(w) == 1:
		return a.bus.ReadFromReg(dev, w[0], r)
	case len(w) == 0:
		return a.read(dev, r)
	}
	if err := a.bus.WriteBytes(dev, w); err != nil {
		return err
	}
	return a.read(dev, r)
}

func (a busAdapter) read(dev byte, r []byte) error {
	b, err := a.bus.ReadBytes(dev, len(r))
	if err != nil {
		return err
	}
	if len(b) < len(r) {
		return errShortRead
	}
	copy(r, b)
	return nil
}
