package build

// Mode selects how newly produced geometry combines with the
// accumulated part.
type Mode int

const (
	// ModeAdd fuses new solids into the part.
	ModeAdd Mode = iota
	// ModeSubtract cuts new solids out of the part.
	ModeSubtract
	// ModeIntersect keeps only the common volume.
	ModeIntersect
	// ModeReplace discards the part and substitutes the new solids.
	ModeReplace
	// ModeConstruction records geometry that guides later operations
	// but contributes no volume.
	ModeConstruction
	// ModePrivate discards the inputs entirely; used for exploratory
	// geometry.
	ModePrivate
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeSubtract:
		return "subtract"
	case ModeIntersect:
		return "intersect"
	case ModeReplace:
		return "replace"
	case ModeConstruction:
		return "construction"
	case ModePrivate:
		return "private"
	}
	return "unknown"
}

func (m Mode) known() bool {
	return m >= ModeAdd && m <= ModePrivate
}

// Until selects which surface of the existing part terminates an
// extrusion with no explicit amount.
type Until int

const (
	// UntilNext stops the extrusion at the next surface.
	UntilNext Until = iota + 1
	// UntilLast stops the extrusion at the last surface.
	UntilLast
)

// Select chooses between all topology of the part and only the
// topology created by the last operation.
type Select int

const (
	// SelectAll selects the whole part.
	SelectAll Select = iota
	// SelectLast selects only the last operation's diff. Valid until
	// the next merge.
	SelectLast
)
