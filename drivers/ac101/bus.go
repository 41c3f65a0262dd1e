package ac101

// I2C 16-bit word operations (big-endian: HIGH then LOW).

func (d *Device) readWord(reg Register) (uint16, error) {
	d.w[0] = byte(reg)
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:2]); err != nil {
		return 0, err
	}
	return uint16(d.r[0])<<8 | uint16(d.r[1]), nil
}

func (d *Device) writeWord(reg Register, val uint16) error {
	d.w[0] = byte(reg)
	d.w[1] = byte(val >> 8) // high
	d.w[2] = byte(val)      // low
	return d.i2c.Tx(d.addr, d.w[:3], nil)
}

// modifyRegister clears the clear bits, then sets the set bits. Bits outside
// clear|set keep their current value.
func (d *Device) modifyRegister(reg Register, set, clear uint16) error {
	cur, err := d.readWord(reg)
	if err != nil {
		return err
	}
	return d.writeWord(reg, (cur&^clear)|set)
}

func (d *Device) writeWords(words []regWord) error {
	for _, w := range words {
		if err := d.writeWord(w.reg, w.val); err != nil {
			return err
		}
	}
	return nil
}

// ReadRegister reads one raw register word.
func (d *Device) ReadRegister(reg Register) (uint16, error) {
	return d.readWord(reg)
}

// WriteRegister writes one raw register word. It bypasses the device state.
func (d *Device) WriteRegister(reg Register, val uint16) error {
	return d.writeWord(reg, val)
}
