// Package edm describes the entity data model that semantic query trees are
// bound against: primitive types, entity types with their structural and
// navigation properties, entity sets and model functions.
package edm

import "fmt"

// PrimitiveKind identifies an EDM primitive type.
type PrimitiveKind int

const (
	PrimitiveNone PrimitiveKind = iota
	PrimitiveBinary
	PrimitiveBoolean
	PrimitiveByte
	PrimitiveDate
	PrimitiveDateTimeOffset
	PrimitiveDecimal
	PrimitiveDouble
	PrimitiveDuration
	PrimitiveGuid
	PrimitiveInt16
	PrimitiveInt32
	PrimitiveInt64
	PrimitiveSByte
	PrimitiveSingle
	PrimitiveString
	PrimitiveTimeOfDay
)

var primitiveNames = map[PrimitiveKind]string{
	PrimitiveBinary:         "Edm.Binary",
	PrimitiveBoolean:        "Edm.Boolean",
	PrimitiveByte:           "Edm.Byte",
	PrimitiveDate:           "Edm.Date",
	PrimitiveDateTimeOffset: "Edm.DateTimeOffset",
	PrimitiveDecimal:        "Edm.Decimal",
	PrimitiveDouble:         "Edm.Double",
	PrimitiveDuration:       "Edm.Duration",
	PrimitiveGuid:           "Edm.Guid",
	PrimitiveInt16:          "Edm.Int16",
	PrimitiveInt32:          "Edm.Int32",
	PrimitiveInt64:          "Edm.Int64",
	PrimitiveSByte:          "Edm.SByte",
	PrimitiveSingle:         "Edm.Single",
	PrimitiveString:         "Edm.String",
	PrimitiveTimeOfDay:      "Edm.TimeOfDay",
}

// String returns the qualified EDM name (e.g., "Edm.Int32").
func (k PrimitiveKind) String() string {
	if name, ok := primitiveNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PrimitiveKind(%d)", int(k))
}

// PrimitiveKindByName resolves a qualified EDM primitive type name.
func PrimitiveKindByName(name string) (PrimitiveKind, bool) {
	for kind, n := range primitiveNames {
		if n == name {
			return kind, true
		}
	}
	return PrimitiveNone, false
}

// TypeKind classifies a TypeReference.
type TypeKind int

const (
	TypeKindNone TypeKind = iota
	TypeKindPrimitive
	TypeKindEntity
	TypeKindCollection
)

// TypeReference is a use of a type together with its nullability.
type TypeReference interface {
	// FullName returns the qualified type name (e.g., "Edm.String", "Collection(NS.Order)")
	FullName() string

	// IsNullable reports whether the value may be null
	IsNullable() bool

	// TypeKind classifies the referenced type
	TypeKind() TypeKind
}

// PrimitiveTypeReference references an EDM primitive type.
type PrimitiveTypeReference struct {
	Kind     PrimitiveKind
	Nullable bool
}

func (r *PrimitiveTypeReference) FullName() string   { return r.Kind.String() }
func (r *PrimitiveTypeReference) IsNullable() bool   { return r.Nullable }
func (r *PrimitiveTypeReference) TypeKind() TypeKind { return TypeKindPrimitive }

// EntityTypeReference references an entity type.
type EntityTypeReference struct {
	Type     *EntityType
	Nullable bool
}

func (r *EntityTypeReference) FullName() string {
	if r.Type == nil {
		return ""
	}
	return r.Type.FullName()
}
func (r *EntityTypeReference) IsNullable() bool   { return r.Nullable }
func (r *EntityTypeReference) TypeKind() TypeKind { return TypeKindEntity }

// CollectionTypeReference references a collection of Elem.
type CollectionTypeReference struct {
	Elem TypeReference
}

func (r *CollectionTypeReference) FullName() string {
	if r.Elem == nil {
		return "Collection()"
	}
	return "Collection(" + r.Elem.FullName() + ")"
}
func (r *CollectionTypeReference) IsNullable() bool   { return false }
func (r *CollectionTypeReference) TypeKind() TypeKind { return TypeKindCollection }

// Primitive returns a reference to the given primitive kind.
func Primitive(kind PrimitiveKind, nullable bool) *PrimitiveTypeReference {
	return &PrimitiveTypeReference{Kind: kind, Nullable: nullable}
}

func Boolean(nullable bool) *PrimitiveTypeReference { return Primitive(PrimitiveBoolean, nullable) }
func Int32(nullable bool) *PrimitiveTypeReference   { return Primitive(PrimitiveInt32, nullable) }
func Int64(nullable bool) *PrimitiveTypeReference   { return Primitive(PrimitiveInt64, nullable) }
func Double(nullable bool) *PrimitiveTypeReference  { return Primitive(PrimitiveDouble, nullable) }
func String(nullable bool) *PrimitiveTypeReference  { return Primitive(PrimitiveString, nullable) }
func Binary(nullable bool) *PrimitiveTypeReference  { return Primitive(PrimitiveBinary, nullable) }

// CollectionOf returns a collection type reference over elem.
func CollectionOf(elem TypeReference) *CollectionTypeReference {
	return &CollectionTypeReference{Elem: elem}
}

// AsPrimitive returns ref as a primitive reference, or nil.
func AsPrimitive(ref TypeReference) *PrimitiveTypeReference {
	p, _ := ref.(*PrimitiveTypeReference)
	return p
}

// AsEntity returns ref as an entity reference, or nil.
func AsEntity(ref TypeReference) *EntityTypeReference {
	e, _ := ref.(*EntityTypeReference)
	return e
}

// AsCollection returns ref as a collection reference, or nil.
func AsCollection(ref TypeReference) *CollectionTypeReference {
	c, _ := ref.(*CollectionTypeReference)
	return c
}

// IsPrimitiveKind reports whether ref is a primitive of one of kinds.
func IsPrimitiveKind(ref TypeReference, kinds ...PrimitiveKind) bool {
	p := AsPrimitive(ref)
	if p == nil {
		return false
	}
	for _, k := range kinds {
		if p.Kind == k {
			return true
		}
	}
	return false
}
