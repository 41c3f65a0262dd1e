package ac101

import "audiocodec-go/x/mathx"

// Resolution is the I2S sample width in bits.
type Resolution uint8

const (
	Resolution8  Resolution = 8
	Resolution16 Resolution = 16
	Resolution20 Resolution = 20
	Resolution24 Resolution = 24
)

// Valid reports whether the chip has a word-size encoding for r.
func (r Resolution) Valid() bool {
	switch r {
	case Resolution8, Resolution16, Resolution20, Resolution24:
		return true
	}
	return false
}

// WordSize is the 2-bit I2S1LCK_CTRL word-size code.
type WordSize uint8

const (
	WordSize8  WordSize = 0x0
	WordSize16 WordSize = 0x1
	WordSize20 WordSize = 0x2
	WordSize24 WordSize = 0x3
)

// I2sMode selects which side of the link drives BCLK/LRCK.
type I2sMode uint8

const (
	ModeController I2sMode = 0x0
	ModePeripheral I2sMode = 0x1
)

// I2sFormat is the frame format code.
type I2sFormat uint8

const (
	FormatI2S   I2sFormat = 0x0
	FormatLeft  I2sFormat = 0x1
	FormatRight I2sFormat = 0x2
	FormatDSP   I2sFormat = 0x3
)

// BitClockDiv is the I2S1CLK/BCLK1 ratio code.
type BitClockDiv uint8

const (
	BCLKDiv1   BitClockDiv = 0x0
	BCLKDiv2   BitClockDiv = 0x1
	BCLKDiv4   BitClockDiv = 0x2
	BCLKDiv6   BitClockDiv = 0x3
	BCLKDiv8   BitClockDiv = 0x4
	BCLKDiv12  BitClockDiv = 0x5
	BCLKDiv16  BitClockDiv = 0x6
	BCLKDiv24  BitClockDiv = 0x7
	BCLKDiv32  BitClockDiv = 0x8
	BCLKDiv48  BitClockDiv = 0x9
	BCLKDiv64  BitClockDiv = 0xA
	BCLKDiv96  BitClockDiv = 0xB
	BCLKDiv128 BitClockDiv = 0xC
	BCLKDiv192 BitClockDiv = 0xD
)

// LRClockDiv is the BCLK1/LRCK ratio code.
type LRClockDiv uint8

const (
	LRCKDiv16  LRClockDiv = 0x0
	LRCKDiv32  LRClockDiv = 0x1
	LRCKDiv64  LRClockDiv = 0x2
	LRCKDiv128 LRClockDiv = 0x3
	LRCKDiv256 LRClockDiv = 0x4
)

// Supported sample rates, indexed by their 4-bit I2S_SR_CTRL code.
var sampleRates = [...]uint32{
	8000, 11052, 12000, 16000, 22050, 24000, 32000, 44100, 48000, 96000, 192000,
}

const (
	DefaultSampleRateHz = 16000
	sampleRateFallback  = 0x3 // 16 kHz
)

// SampleRateField maps a rate in Hz onto its 4-bit code. Rates the chip does
// not support map to the 16 kHz code.
func SampleRateField(hz uint32) uint8 {
	for code, r := range sampleRates {
		if r == hz {
			return uint8(code)
		}
	}
	return sampleRateFallback
}

// SampleRateHz decodes a 4-bit rate code. Unknown codes decode as 16 kHz.
func SampleRateHz(code uint8) uint32 {
	if int(code) < len(sampleRates) {
		return sampleRates[code]
	}
	return DefaultSampleRateHz
}

// SupportedSampleRate reports whether hz has an exact code.
func SupportedSampleRate(hz uint32) bool {
	for _, r := range sampleRates {
		if r == hz {
			return true
		}
	}
	return false
}

// ResolutionField maps a bit depth onto its 2-bit word-size code; unknown
// depths map to 0 (8 bit).
func ResolutionField(r Resolution) WordSize {
	switch r {
	case Resolution8:
		return WordSize8
	case Resolution16:
		return WordSize16
	case Resolution20:
		return WordSize20
	case Resolution24:
		return WordSize24
	default:
		return WordSize8
	}
}

// ResolutionOf is the inverse of ResolutionField.
func ResolutionOf(w WordSize) Resolution {
	switch w & 0x3 {
	case WordSize16:
		return Resolution16
	case WordSize20:
		return Resolution20
	case WordSize24:
		return Resolution24
	default:
		return Resolution8
	}
}

// Volume scale limits.
const (
	MaxHeadphoneLevel = 63 // 6-bit, 1 dB steps
	MaxSpeakerLevel   = 31 // 5-bit, 1.5 dB steps
)

// HeadphoneField maps v in [0,1] linearly onto the 6-bit headphone code.
func HeadphoneField(v float32) uint8 {
	if v != v { // NaN
		return 0
	}
	v = mathx.Clamp(v, 0, 1)
	return uint8(v*MaxHeadphoneLevel + 0.5)
}

// SpeakerField maps a 6-bit headphone-scale code onto the 5-bit speaker code.
// The speaker register has half the resolution.
func SpeakerField(code6 uint8) uint8 {
	return mathx.Min(code6, MaxHeadphoneLevel) >> 1
}

// VolumeFromHeadphone maps a 6-bit headphone code back onto [0,1].
func VolumeFromHeadphone(code uint8) float32 {
	return float32(mathx.Min(code, MaxHeadphoneLevel)) / MaxHeadphoneLevel
}
