//go:build rp2040 || rp2350

package setups

// PicoAudio is a Pico with an AC101 breakout on GP4/GP5.
var PicoAudio = Board{
	Name: "pico-audio",
	I2C:  []I2CBus{{ID: "i2c0", SDA: 4, SCL: 5, Hz: 400_000}},
}
