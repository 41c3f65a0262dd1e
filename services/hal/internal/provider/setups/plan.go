// Package setups lists the boards a firmware image can be built for.
package setups

// Board is the bus wiring brought up before config/hal is applied. Devices
// on the buses come from config, not from here.
type Board struct {
	Name string
	I2C  []I2CBus
}

// I2CBus is one controller; pins are GPIO numbers.
type I2CBus struct {
	ID       string // "i2c0", "i2c1"
	SDA, SCL int
	Hz       uint32
}
