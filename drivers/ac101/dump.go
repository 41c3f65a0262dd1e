package ac101

// RegisterValue is one entry of a register dump. OK is false when the read
// failed; Value is then zero.
type RegisterValue struct {
	Reg   Register
	Value uint16
	OK    bool
}

// Dump reads every register in map order and appends the results to dst.
// A failed read does not stop the dump; the first error is returned.
// Dump works in any state.
func (d *Device) Dump(dst []RegisterValue) ([]RegisterValue, error) {
	var first error
	for _, e := range registerMap {
		v, err := d.readWord(e.reg)
		if err != nil {
			if first == nil {
				first = err
			}
			dst = append(dst, RegisterValue{Reg: e.reg})
			continue
		}
		dst = append(dst, RegisterValue{Reg: e.reg, Value: v, OK: true})
	}
	return dst, first
}
