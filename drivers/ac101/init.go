package ac101

// Init runs the bring-up sequence from power-on reset to a streaming-ready
// codec. Any failure leaves the device Failed; there is no retry. Calling
// Init on a Failed device returns ErrDeviceFailed.
func (d *Device) Init() error {
	if err := d.usable(); err != nil {
		return err
	}
	if err := d.runInit(); err != nil {
		d.status = StatusFailed
		return err
	}
	d.status = StatusReady
	return nil
}

func (d *Device) runInit() error {
	if err := d.reset(); err != nil {
		return &InitError{Step: StepReset, Err: err}
	}
	if err := d.writeWords(presetWords); err != nil {
		return &InitError{Step: StepPreset, Err: err}
	}
	if err := d.writeWords(pllWords); err != nil {
		return &InitError{Step: StepPLL, Err: err}
	}
	if err := d.writeWords(clockWords); err != nil {
		return &InitError{Step: StepClock, Err: err}
	}
	if err := d.applyI2S(); err != nil {
		return &InitError{Step: StepI2S, Err: err}
	}
	if err := d.writeWords(routingWords); err != nil {
		return &InitError{Step: StepRouting, Err: err}
	}
	if err := d.SetMode(ModeADCDAC); err != nil {
		return &InitError{Step: StepOutput, Err: err}
	}
	if err := d.SetVolume(1.0); err != nil {
		return &InitError{Step: StepOutput, Err: err}
	}
	return nil
}

func (d *Device) reset() error {
	if err := d.writeWord(RegChipAudioRS, resetSentinel); err != nil {
		return err
	}
	d.sleep(ResetSettle)
	v, err := d.readWord(RegChipAudioRS)
	if err != nil {
		return err
	}
	if v != resetReadback {
		return ErrResetVerify
	}
	return nil
}

// applyI2S writes the configured rate and word size plus the fixed clocking:
// BCLK = I2S1CLK/8, LRCK = BCLK/32, no inversion, peripheral role, I2S frames.
func (d *Device) applyI2S() error {
	if err := d.SetI2sSampleRate(d.rateHz); err != nil {
		return err
	}
	if err := d.SetI2sClock(BCLKDiv8, false, LRCKDiv32, false); err != nil {
		return err
	}
	if err := d.SetI2sMode(ModePeripheral); err != nil {
		return err
	}
	if err := d.SetI2sWordSize(ResolutionField(d.res)); err != nil {
		return err
	}
	return d.SetI2sFormat(FormatI2S)
}
