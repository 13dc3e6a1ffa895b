package types

// Global is the minimal model of a module-level variable needed for
// alignment decisions: its value type, an optional explicit alignment in
// bytes, and whether the module defines an initializer for it.
type Global struct {
	Name           string
	Elem           TypeID
	Align          int // 0 when no explicit alignment was requested
	HasInitializer bool
}
