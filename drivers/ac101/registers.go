// Package ac101 provides constants for register addresses, bring-up control
// words and bitfields used in the operation of the AC101 audio codec.
package ac101

const (
	// 7-bit I2C address (0011_010b).
	AddressDefault = 0x1A

	// CHIP_AUDIO_RS: writing resetSentinel resets every register; the chip
	// then reads back resetReadback.
	resetSentinel = 0x0123
	resetReadback = 0x0101
)

// Register is an 8-bit register sub-address. Every register holds a 16-bit word.
type Register uint8

const (
	// Reset / clocking
	RegChipAudioRS Register = 0x00
	RegPLLCtrl1    Register = 0x01
	RegPLLCtrl2    Register = 0x02
	RegSysclkCtrl  Register = 0x03
	RegModClkEna   Register = 0x04
	RegModRstCtrl  Register = 0x05
	RegI2SSRCtrl   Register = 0x06

	// I2S1 interface
	RegI2S1LCKCtrl   Register = 0x10
	RegI2S1SDOUTCtrl Register = 0x11
	RegI2S1SDINCtrl  Register = 0x12
	RegI2S1MXRSrc    Register = 0x13
	RegI2S1VolCtrl1  Register = 0x14
	RegI2S1VolCtrl2  Register = 0x15
	RegI2S1VolCtrl3  Register = 0x16
	RegI2S1VolCtrl4  Register = 0x17
	RegI2S1MXRGain   Register = 0x18

	// ADC / DAC digital
	RegADCDigCtrl Register = 0x40
	RegADCVolCtrl Register = 0x41
	RegHMICCtrl1  Register = 0x44
	RegHMICCtrl2  Register = 0x45
	RegHMICStatus Register = 0x46
	RegDACDigCtrl Register = 0x48
	RegDACVolCtrl Register = 0x49
	RegDACMXRSrc  Register = 0x4C
	RegDACMXRGain Register = 0x4D

	// Analog paths and outputs
	RegADCAPCCtrl     Register = 0x50
	RegADCSrc         Register = 0x51
	RegADCSrcBstCtrl  Register = 0x52
	RegOMixerDACACtrl Register = 0x53
	RegOMixerSR       Register = 0x54
	RegOMixerBst1Ctrl Register = 0x55
	RegHPOutCtrl      Register = 0x56
	RegSpkOutCtrl     Register = 0x58

	// DAC dynamic audio processing
	RegDACDAPCtrl  Register = 0xA0
	RegDACDAPHHPFC Register = 0xA1
	RegDACDAPLHPFC Register = 0xA2
	RegDACDAPLHAVC Register = 0xA3
	RegDACDAPLLAVC Register = 0xA4
	RegDACDAPRHAVC Register = 0xA5
	RegDACDAPRLAVC Register = 0xA6
	RegDACDAPHGDEC Register = 0xA7
	RegDACDAPLGDEC Register = 0xA8
	RegDACDAPHGATC Register = 0xA9
	RegDACDAPLGATC Register = 0xAA
	RegDACDAPHETHD Register = 0xAB
	RegDACDAPLETHD Register = 0xAC
	RegDACDAPHGKPA Register = 0xAD
	RegDACDAPLGKPA Register = 0xAE
	RegDACDAPHGOPA Register = 0xAF
	RegDACDAPLGOPA Register = 0xB0
	RegDACDAPOpt   Register = 0xB1
	RegDACDAPEna   Register = 0xB5
)

// Bitfields.
const (
	// HPOUT_CTRL
	hpVolShift = 4
	hpVolMask  = 0x3F << hpVolShift // bits [4:10)
	hpMuteMask = 0x3 << 12          // bits 12,13: left/right output source enable

	// SPKOUT_CTRL
	spkVolMask  = 0x1F        // bits [0:5)
	spkMuteMask = 1<<9 | 1<<5 // right/left speaker enable

	// I2S_SR_CTRL
	srShift = 12 // bits [12:16)

	// I2S1LCK_CTRL
	lckModeShift    = 15
	lckModeMask     = 1 << lckModeShift
	lckBCLKInvShift = 14
	lckLRCKInvShift = 13
	lckBCLKDivShift = 9
	lckLRCKDivShift = 6
	lckClockMask    = 0x7FC0 // bits [6:15)
	lckWordShift    = 4
	lckWordMask     = 0x3 << lckWordShift // bits [4:6)
	lckFmtShift     = 2
	lckFmtMask      = 0x3 << lckFmtShift // bits [2:4)
)

type regWord struct {
	reg Register
	val uint16
}

// Fixed bring-up control words, applied in order.
var (
	// Speaker stage preset; keeps outputs quiet while clocks come up.
	presetWords = []regWord{
		{RegSpkOutCtrl, 0xE880},
	}

	// PLL from a 256*fs MCLK reference.
	pllWords = []regWord{
		{RegPLLCtrl1, 0x014F},
		{RegPLLCtrl2, 0x8600},
	}

	// SYSCLK from PLL, module clocks and resets released.
	clockWords = []regWord{
		{RegSysclkCtrl, 0x8B08},
		{RegModClkEna, 0x800C},
		{RegModRstCtrl, 0x800C},
	}

	// AIF slots, ADC inputs and DAC to output mixer.
	routingWords = []regWord{
		{RegI2S1SDOUTCtrl, 0xC000},
		{RegI2S1SDINCtrl, 0xC000},
		{RegI2S1MXRSrc, 0x2200},
		{RegADCSrcBstCtrl, 0xCCC4},
		{RegADCSrc, 0x2020},
		{RegADCDigCtrl, 0x8000},
		{RegADCAPCCtrl, 0xBBC3},
		{RegDACMXRSrc, 0xCC00},
		{RegDACDigCtrl, 0x8000},
		{RegOMixerSR, 0x0081},
		{RegOMixerDACACtrl, 0xF080},
	}

	// Line-level ADC preset.
	lineInWords = []regWord{
		{RegADCSrc, 0x0408},
		{RegADCDigCtrl, 0x8000},
		{RegADCAPCCtrl, 0x3BC0},
	}

	// Input path module clock and reset gates.
	adcEnableWords = []regWord{
		{RegModClkEna, 0x800C},
		{RegModRstCtrl, 0x800C},
	}
)

// Output enable words. Order is mixer, settle, headphone, speaker, settle.
const (
	dacMixerEnable = 0xFF80
	hpOutEnable    = 0xFBC0
	spkOutEnable   = 0xEABD
)

type regName struct {
	reg  Register
	name string
}

// registerMap lists every readable register in diagnostic order.
var registerMap = [...]regName{
	{RegChipAudioRS, "CHIP_AUDIO_RS"},
	{RegPLLCtrl1, "PLL_CTRL1"},
	{RegPLLCtrl2, "PLL_CTRL2"},
	{RegSysclkCtrl, "SYSCLK_CTRL"},
	{RegModClkEna, "MOD_CLK_ENA"},
	{RegModRstCtrl, "MOD_RST_CTRL"},
	{RegI2SSRCtrl, "I2S_SR_CTRL"},
	{RegI2S1LCKCtrl, "I2S1LCK_CTRL"},
	{RegI2S1SDOUTCtrl, "I2S1_SDOUT_CTRL"},
	{RegI2S1SDINCtrl, "I2S1_SDIN_CTRL"},
	{RegI2S1MXRSrc, "I2S1_MXR_SRC"},
	{RegI2S1VolCtrl1, "I2S1_VOL_CTRL1"},
	{RegI2S1VolCtrl2, "I2S1_VOL_CTRL2"},
	{RegI2S1VolCtrl3, "I2S1_VOL_CTRL3"},
	{RegI2S1VolCtrl4, "I2S1_VOL_CTRL4"},
	{RegI2S1MXRGain, "I2S1_MXR_GAIN"},
	{RegADCDigCtrl, "ADC_DIG_CTRL"},
	{RegADCVolCtrl, "ADC_VOL_CTRL"},
	{RegHMICCtrl1, "HMIC_CTRL1"},
	{RegHMICCtrl2, "HMIC_CTRL2"},
	{RegHMICStatus, "HMIC_STATUS"},
	{RegDACDigCtrl, "DAC_DIG_CTRL"},
	{RegDACVolCtrl, "DAC_VOL_CTRL"},
	{RegDACMXRSrc, "DAC_MXR_SRC"},
	{RegDACMXRGain, "DAC_MXR_GAIN"},
	{RegADCAPCCtrl, "ADC_APC_CTRL"},
	{RegADCSrc, "ADC_SRC"},
	{RegADCSrcBstCtrl, "ADC_SRCBST_CTRL"},
	{RegOMixerDACACtrl, "OMIXER_DACA_CTRL"},
	{RegOMixerSR, "OMIXER_SR"},
	{RegOMixerBst1Ctrl, "OMIXER_BST1_CTRL"},
	{RegHPOutCtrl, "HPOUT_CTRL"},
	{RegSpkOutCtrl, "SPKOUT_CTRL"},
	{RegDACDAPCtrl, "AC_DAC_DAPCTRL"},
	{RegDACDAPHHPFC, "AC_DAC_DAPHHPFC"},
	{RegDACDAPLHPFC, "AC_DAC_DAPLHPFC"},
	{RegDACDAPLHAVC, "AC_DAC_DAPLHAVC"},
	{RegDACDAPLLAVC, "AC_DAC_DAPLLAVC"},
	{RegDACDAPRHAVC, "AC_DAC_DAPRHAVC"},
	{RegDACDAPRLAVC, "AC_DAC_DAPRLAVC"},
	{RegDACDAPHGDEC, "AC_DAC_DAPHGDEC"},
	{RegDACDAPLGDEC, "AC_DAC_DAPLGDEC"},
	{RegDACDAPHGATC, "AC_DAC_DAPHGATC"},
	{RegDACDAPLGATC, "AC_DAC_DAPLGATC"},
	{RegDACDAPHETHD, "AC_DAC_DAPHETHD"},
	{RegDACDAPLETHD, "AC_DAC_DAPLETHD"},
	{RegDACDAPHGKPA, "AC_DAC_DAPHGKPA"},
	{RegDACDAPLGKPA, "AC_DAC_DAPLGKPA"},
	{RegDACDAPHGOPA, "AC_DAC_DAPHGOPA"},
	{RegDACDAPLGOPA, "AC_DAC_DAPLGOPA"},
	{RegDACDAPOpt, "AC_DAC_DAPOPT"},
	{RegDACDAPEna, "DAC_DAP_ENA"},
}

// Registers returns the readable registers in diagnostic order.
func Registers() []Register {
	out := make([]Register, len(registerMap))
	for i, e := range registerMap {
		out[i] = e.reg
	}
	return out
}

// NumRegisters is the size of the register map.
const NumRegisters = len(registerMap)

func (r Register) String() string {
	for _, e := range registerMap {
		if e.reg == r {
			return e.name
		}
	}
	return "UNKNOWN"
}

// RegisterByName looks a register up by its datasheet name.
func RegisterByName(name string) (Register, bool) {
	for _, e := range registerMap {
		if e.name == name {
			return e.reg, true
		}
	}
	return 0, false
}
