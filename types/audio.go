package types

// Kind is the capability class in hal/cap/<domain>/<kind>/<name>.
type Kind string

const KindCodec Kind = "codec"

// ------------------------
// Audio codec
// ------------------------

// CodecParams configures one codec device in HALConfig.
type CodecParams struct {
	Bus          string  `json:"bus"`                      // e.g. "i2c0"
	Addr         uint16  `json:"addr,omitempty"`           // 0 => 0x1A
	Domain       string  `json:"domain,omitempty"`         // "" => "audio"
	Name         string  `json:"name,omitempty"`           // "" => device id
	SampleRateHz uint32  `json:"sample_rate_hz,omitempty"` // 0 => 16000
	Bits         uint8   `json:"bits,omitempty"`           // 8/16/20/24; 0 => 16
	Volume       float32 `json:"volume,omitempty"`         // applied after init when >0
	Mode         string  `json:"mode,omitempty"`           // adc|dac|adcdac|line; "" keeps init default
	Muted        bool    `json:"muted,omitempty"`
}

type CodecInfo struct {
	Chip string `json:"chip"` // "ac101"
	Addr uint16 `json:"addr"`
	Bus  string `json:"bus"`
}

// CodecValue is published under hal/cap/audio/codec/<name>/value (retained).
type CodecValue struct {
	Status       string  `json:"status"`  // uninitialised|ready|failed
	Volume       float32 `json:"volume"`  // 0..1, from the headphone register
	Headphone    uint8   `json:"hp"`      // 0..63
	Speaker      uint8   `json:"spk"`     // 0..63 (headphone scale)
	Muted        bool    `json:"muted"`   // last applied mute state
	SampleRateHz uint32  `json:"rate_hz"` // as read back
	Bits         uint8   `json:"bits"`    // as read back
	Mode         string  `json:"mode,omitempty"`
}

// Controls
type CodecSetVolume struct {
	Volume float32 `json:"volume"`            // 0..1; clamped
	FadeMs uint32  `json:"fade_ms,omitempty"` // 0 => immediate; max 10000
}

type CodecSetMute struct {
	On bool `json:"on"`
}

type CodecSetFormat struct {
	SampleRateHz uint32 `json:"sample_rate_hz,omitempty"` // 0 => unchanged
	Bits         uint8  `json:"bits,omitempty"`           // 0 => unchanged
}

type CodecSetMode struct {
	Mode string `json:"mode"` // adc|dac|adcdac|line
}

// CodecRegister is one entry of a dump event.
type CodecRegister struct {
	Reg   uint8  `json:"reg"`
	Name  string `json:"name"`
	Value uint16 `json:"value"`
	OK    bool   `json:"ok"`
}

// CodecDump is published under .../event/dump.
type CodecDump struct {
	Registers []CodecRegister `json:"registers"`
	Error     string          `json:"error,omitempty"`
}

// CodecInitFailed is published under .../event/init_failed.
type CodecInitFailed struct {
	Step  string `json:"step"`
	Error string `json:"error"`
}
