package edm

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TypeOfValue infers the primitive type of a Go value. A nil value has no
// type and yields (nil, nil).
func TypeOfValue(value interface{}) (*PrimitiveTypeReference, error) {
	if value == nil {
		return nil, nil
	}
	kind, err := PrimitiveKindOf(reflect.TypeOf(value))
	if err != nil {
		return nil, err
	}
	return Primitive(kind, false), nil
}

// PrimitiveKindOf maps a Go type to an EDM primitive kind.
func PrimitiveKindOf(goType reflect.Type) (PrimitiveKind, error) {
	if goType == nil {
		return PrimitiveNone, fmt.Errorf("nil type")
	}

	if goType.Kind() == reflect.Ptr {
		goType = goType.Elem()
	}

	switch goType {
	case reflect.TypeOf(time.Time{}):
		return PrimitiveDateTimeOffset, nil
	case reflect.TypeOf(time.Duration(0)):
		return PrimitiveDuration, nil
	case reflect.TypeOf(decimal.Decimal{}):
		return PrimitiveDecimal, nil
	case reflect.TypeOf(uuid.UUID{}):
		return PrimitiveGuid, nil
	}

	if goType.Kind() == reflect.Slice && goType.Elem().Kind() == reflect.Uint8 {
		return PrimitiveBinary, nil
	}

	switch goType.Kind() {
	case reflect.String:
		return PrimitiveString, nil
	case reflect.Int, reflect.Int32:
		return PrimitiveInt32, nil
	case reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return PrimitiveInt64, nil
	case reflect.Int16:
		return PrimitiveInt16, nil
	case reflect.Int8:
		return PrimitiveSByte, nil
	case reflect.Uint16:
		return PrimitiveInt32, nil
	case reflect.Uint8:
		return PrimitiveByte, nil
	case reflect.Float32:
		return PrimitiveSingle, nil
	case reflect.Float64:
		return PrimitiveDouble, nil
	case reflect.Bool:
		return PrimitiveBoolean, nil
	default:
		return PrimitiveNone, fmt.Errorf("unsupported Go type: %s", goType.String())
	}
}

var integralRank = map[PrimitiveKind]int{
	PrimitiveByte:  1,
	PrimitiveSByte: 1,
	PrimitiveInt16: 2,
	PrimitiveInt32: 3,
	PrimitiveInt64: 4,
}

// IsNumeric reports whether kind is an integral or floating point kind.
func IsNumeric(kind PrimitiveKind) bool {
	if _, ok := integralRank[kind]; ok {
		return true
	}
	return kind == PrimitiveDecimal || kind == PrimitiveSingle || kind == PrimitiveDouble
}

// PromoteNumeric returns the kind both operands of a numeric operation are
// widened to. Integral kinds widen to the larger integral kind; any
// floating point operand widens the result to Single or Double; Decimal wins
// over integral kinds. ok is false when either kind is not numeric.
func PromoteNumeric(a, b PrimitiveKind) (kind PrimitiveKind, ok bool) {
	if !IsNumeric(a) || !IsNumeric(b) {
		return PrimitiveNone, false
	}
	if a == b {
		return a, true
	}
	switch {
	case a == PrimitiveDouble || b == PrimitiveDouble:
		return PrimitiveDouble, true
	case a == PrimitiveSingle || b == PrimitiveSingle:
		if a == PrimitiveDecimal || b == PrimitiveDecimal {
			return PrimitiveDouble, true
		}
		return PrimitiveSingle, true
	case a == PrimitiveDecimal || b == PrimitiveDecimal:
		return PrimitiveDecimal, true
	}
	if integralRank[a] >= integralRank[b] {
		if a == PrimitiveSByte || a == PrimitiveByte {
			return PrimitiveInt16, true
		}
		return a, true
	}
	return b, true
}
