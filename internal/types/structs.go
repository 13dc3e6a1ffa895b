package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// StructField describes a single field inside a struct type.
type StructField struct {
	Name string // optional; empty for anonymous fields
	Type TypeID
}

// StructInfo stores metadata for a struct type.
type StructInfo struct {
	Name   string
	Fields []StructField
}

// RegisterStruct allocates a nominal struct type slot and returns its TypeID.
func (in *Interner) RegisterStruct(name string) TypeID {
	slot := in.appendStructInfo(StructInfo{Name: name})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// SetStructFields stores the resolved field descriptors for the struct type.
//
// Callers that mutate a struct type already seen by a layout engine must
// invalidate that engine's cached layout first.
func (in *Interner) SetStructFields(typeID TypeID, fields []StructField) {
	info := in.structInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = cloneStructFields(fields)
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(typeID TypeID) (*StructInfo, bool) {
	info := in.structInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// StructFields returns a copy of struct fields for the TypeID.
func (in *Interner) StructFields(typeID TypeID) []StructField {
	info := in.structInfo(typeID)
	if info == nil || len(info.Fields) == 0 {
		return nil
	}
	return cloneStructFields(info.Fields)
}

// NumFields returns the number of fields of a struct type.
func (in *Interner) NumFields(typeID TypeID) int {
	info := in.structInfo(typeID)
	if info == nil {
		return 0
	}
	return len(info.Fields)
}

// FieldType returns the type of field i of a struct type.
func (in *Interner) FieldType(typeID TypeID, i int) (TypeID, bool) {
	info := in.structInfo(typeID)
	if info == nil || i < 0 || i >= len(info.Fields) {
		return NoTypeID, false
	}
	return info.Fields[i].Type, true
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}

func (in *Interner) appendStructInfo(info StructInfo) uint32 {
	if in.structs == nil {
		in.structs = append(in.structs, StructInfo{})
	}
	in.structs = append(in.structs, StructInfo{
		Name:   info.Name,
		Fields: cloneStructFields(info.Fields),
	})
	slot, err := safecast.Conv[uint32](len(in.structs) - 1)
	if err != nil {
		panic(fmt.Errorf("struct info overflow: %w", err))
	}
	return slot
}

func cloneStructFields(fields []StructField) []StructField {
	if len(fields) == 0 {
		return nil
	}
	return slices.Clone(fields)
}
