package ac101

// I2S1 format control. Each setter owns a disjoint field of I2S1LCK_CTRL and
// leaves the others as they are.

// SetI2sSampleRate writes the rate code into I2S_SR_CTRL[12:16). Unsupported
// rates select 16 kHz.
func (d *Device) SetI2sSampleRate(hz uint32) error {
	if err := d.usable(); err != nil {
		return err
	}
	return d.writeWord(RegI2SSRCtrl, uint16(SampleRateField(hz))<<srShift)
}

// I2sSampleRate reads the rate back in Hz.
func (d *Device) I2sSampleRate() (uint32, error) {
	v, err := d.readWord(RegI2SSRCtrl)
	if err != nil {
		return 0, err
	}
	return SampleRateHz(uint8(v >> srShift)), nil
}

func (d *Device) SetI2sMode(m I2sMode) error {
	if err := d.usable(); err != nil {
		return err
	}
	return d.modifyRegister(RegI2S1LCKCtrl, uint16(m&1)<<lckModeShift, lckModeMask)
}

func (d *Device) SetI2sWordSize(w WordSize) error {
	if err := d.usable(); err != nil {
		return err
	}
	return d.modifyRegister(RegI2S1LCKCtrl, uint16(w&3)<<lckWordShift, lckWordMask)
}

// I2sWordSize reads the word-size code back.
func (d *Device) I2sWordSize() (WordSize, error) {
	v, err := d.readWord(RegI2S1LCKCtrl)
	if err != nil {
		return 0, err
	}
	return WordSize((v & lckWordMask) >> lckWordShift), nil
}

func (d *Device) SetI2sFormat(f I2sFormat) error {
	if err := d.usable(); err != nil {
		return err
	}
	return d.modifyRegister(RegI2S1LCKCtrl, uint16(f&3)<<lckFmtShift, lckFmtMask)
}

// SetI2sClock sets the BCLK and LRCK dividers and polarities in one write.
func (d *Device) SetI2sClock(bdiv BitClockDiv, binv bool, ldiv LRClockDiv, linv bool) error {
	if err := d.usable(); err != nil {
		return err
	}
	var set uint16
	if binv {
		set |= 1 << lckBCLKInvShift
	}
	if linv {
		set |= 1 << lckLRCKInvShift
	}
	set |= uint16(bdiv&0xF) << lckBCLKDivShift
	set |= uint16(ldiv&0x7) << lckLRCKDivShift
	return d.modifyRegister(RegI2S1LCKCtrl, set, lckClockMask)
}
