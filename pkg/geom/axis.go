package geom

// Axis names one of the global coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "unknown"
	}
}

// Vec returns the unit vector of the axis.
func (a Axis) Vec() Vec3 {
	switch a {
	case AxisX:
		return UnitX
	case AxisY:
		return UnitY
	default:
		return UnitZ
	}
}

// MarshalText lets axes appear as "X"/"Y"/"Z" in JSON output.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
