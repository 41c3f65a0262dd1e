package ac101

import "audiocodec-go/x/mathx"

// HeadphoneVolume returns the 6-bit headphone level (0..63).
func (d *Device) HeadphoneVolume() (uint8, error) {
	v, err := d.readWord(RegHPOutCtrl)
	if err != nil {
		return 0, err
	}
	return uint8((v & hpVolMask) >> hpVolShift), nil
}

// SetHeadphoneVolume writes level (clamped to 63) into the headphone field.
func (d *Device) SetHeadphoneVolume(level uint8) error {
	if err := d.usable(); err != nil {
		return err
	}
	return d.writeHeadphone(mathx.Min(level, MaxHeadphoneLevel))
}

// SpeakerVolume returns the speaker level scaled onto the headphone range.
func (d *Device) SpeakerVolume() (uint8, error) {
	v, err := d.readWord(RegSpkOutCtrl)
	if err != nil {
		return 0, err
	}
	return uint8(v&spkVolMask) << 1, nil
}

// SetSpeakerVolume takes a headphone-scale level (0..63); the speaker field
// gets half of it, clamped to 31.
func (d *Device) SetSpeakerVolume(level uint8) error {
	if err := d.usable(); err != nil {
		return err
	}
	return d.writeSpeaker(mathx.Min(level>>1, MaxSpeakerLevel))
}

// SetVolume sets both outputs from one nominal level v in [0,1]. The
// headphone field gets the 6-bit code, the speaker field half of it.
func (d *Device) SetVolume(v float32) error {
	if err := d.usable(); err != nil {
		return err
	}
	code := HeadphoneField(v)
	if err := d.writeHeadphone(code); err != nil {
		return err
	}
	return d.writeSpeaker(SpeakerField(code))
}

// Volume returns the nominal level in [0,1], read from the headphone register.
func (d *Device) Volume() (float32, error) {
	code, err := d.HeadphoneVolume()
	if err != nil {
		return 0, err
	}
	return VolumeFromHeadphone(code), nil
}

func (d *Device) writeHeadphone(code uint8) error {
	return d.modifyRegister(RegHPOutCtrl, uint16(code)<<hpVolShift&hpVolMask, hpVolMask)
}

func (d *Device) writeSpeaker(code uint8) error {
	return d.modifyRegister(RegSpkOutCtrl, uint16(code)&spkVolMask, spkVolMask)
}

// SetMute gates both output stages. The cached mute state changes only when
// both registers were written.
func (d *Device) SetMute(on bool) error {
	if err := d.usable(); err != nil {
		return err
	}
	var err error
	if on {
		err = d.modifyRegister(RegHPOutCtrl, 0, hpMuteMask)
		if err == nil {
			err = d.modifyRegister(RegSpkOutCtrl, 0, spkMuteMask)
		}
	} else {
		err = d.modifyRegister(RegHPOutCtrl, hpMuteMask, 0)
		if err == nil {
			err = d.modifyRegister(RegSpkOutCtrl, spkMuteMask, 0)
		}
	}
	if err != nil {
		return err
	}
	d.isMuted = on
	return nil
}

func (d *Device) MuteOn() error  { return d.SetMute(true) }
func (d *Device) MuteOff() error { return d.SetMute(false) }
