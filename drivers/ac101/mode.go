package ac101

// Mode selects which signal paths are enabled.
type Mode uint8

const (
	ModeADC Mode = iota + 1
	ModeDAC
	ModeADCDAC
	ModeLine
)

func (m Mode) HasADC() bool { return m == ModeADC || m == ModeADCDAC || m == ModeLine }
func (m Mode) HasDAC() bool { return m == ModeDAC || m == ModeADCDAC || m == ModeLine }
func (m Mode) IsLine() bool { return m == ModeLine }

func (m Mode) Valid() bool { return m >= ModeADC && m <= ModeLine }

func (m Mode) String() string {
	switch m {
	case ModeADC:
		return "adc"
	case ModeDAC:
		return "dac"
	case ModeADCDAC:
		return "adcdac"
	case ModeLine:
		return "line"
	default:
		return "unknown"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, bool) {
	for m := ModeADC; m <= ModeLine; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// SetMode enables the paths m includes. Paths are only ever switched on.
// The DAC branch order is mixer, settle, headphone, speaker, settle; the
// output enables also clear both mutes.
func (d *Device) SetMode(m Mode) error {
	if err := d.usable(); err != nil {
		return err
	}
	if !m.Valid() {
		return ErrInvalidMode
	}
	if m.IsLine() {
		if err := d.writeWords(lineInWords); err != nil {
			return err
		}
	}
	if m.HasADC() {
		if err := d.writeWords(adcEnableWords); err != nil {
			return err
		}
	}
	if m.HasDAC() {
		if err := d.writeWord(RegOMixerDACACtrl, dacMixerEnable); err != nil {
			return err
		}
		d.sleep(MixerSettle)
		if err := d.writeWord(RegHPOutCtrl, hpOutEnable); err != nil {
			return err
		}
		if err := d.writeWord(RegSpkOutCtrl, spkOutEnable); err != nil {
			return err
		}
		d.isMuted = false
		d.sleep(OutputSettle)
	}
	return nil
}
