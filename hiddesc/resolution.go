package hiddesc

// HID unit codes for the length and rotation systems.
const (
	unitCentimeter uint32 = 0x11
	unitRadians    uint32 = 0x12
	unitInch       uint32 = 0x13
	unitDegrees    uint32 = 0x14
)

// Resolution derives the axis resolution in device units per millimeter
// (per degree for rotational axes) from the item's logical and physical
// bounds and unit. It returns 0 when the unit system is unknown or the
// bounds do not allow a derivation.
func (it Item) Resolution() int32 {
	logSize := int64(it.LogicalMaximum) - int64(it.LogicalMinimum)
	physSize := int64(it.PhysicalMaximum) - int64(it.PhysicalMinimum)
	if physSize == 0 {
		physSize = logSize
	}
	var mul, div int64
	switch it.Unit {
	case unitCentimeter:
		mul, div = 1, 10
	case unitInch:
		mul, div = 10, 254
	case unitDegrees:
		mul, div = 1, 1
	case unitRadians:
		// 1 radian = 57.3 degrees.
		mul, div = 10, 573
	default:
		return 0
	}
	// A positive exponent scales the physical range up, a negative one
	// means it is stored in fractional units.
	for e := it.UnitExponent; e > 0; e-- {
		div *= 10
	}
	for e := it.UnitExponent; e < 0; e++ {
		mul *= 10
	}
	if physSize == 0 || div == 0 {
		return 0
	}
	return int32(logSize * mul / (physSize * div))
}
