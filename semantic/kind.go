package semantic

import "strconv"

// Kind identifies the concrete payload a semantic node carries. Every value
// other than KindNone maps to exactly one node type.
type Kind int

const (
	KindNone Kind = iota
	KindAll
	KindAny
	KindBinaryOperator
	KindCollectionNavigation
	KindCollectionPropertyAccess
	KindConstant
	KindConvert
	KindEntityCollectionCast
	KindEntityRangeVariableReference
	KindNonentityRangeVariableReference
	KindSingleEntityCast
	KindSingleNavigation
	KindSingleEntityFunctionCall
	KindSingleValueFunctionCall
	KindSingleValueOpenPropertyAccess
	KindSingleValuePropertyAccess
	KindUnaryOperator
	KindEntitySet
	KindEntityCollectionFunctionCall
	KindCollectionFunctionCall
	KindIn
	KindCollectionConstant

	// kindCount must stay last.
	kindCount
)

var kindNames = [kindCount]string{
	KindNone:                            "None",
	KindAll:                             "All",
	KindAny:                             "Any",
	KindBinaryOperator:                  "BinaryOperator",
	KindCollectionNavigation:            "CollectionNavigation",
	KindCollectionPropertyAccess:        "CollectionPropertyAccess",
	KindConstant:                        "Constant",
	KindConvert:                         "Convert",
	KindEntityCollectionCast:            "EntityCollectionCast",
	KindEntityRangeVariableReference:    "EntityRangeVariableReference",
	KindNonentityRangeVariableReference: "NonentityRangeVariableReference",
	KindSingleEntityCast:                "SingleEntityCast",
	KindSingleNavigation:                "SingleNavigation",
	KindSingleEntityFunctionCall:        "SingleEntityFunctionCall",
	KindSingleValueFunctionCall:         "SingleValueFunctionCall",
	KindSingleValueOpenPropertyAccess:   "SingleValueOpenPropertyAccess",
	KindSingleValuePropertyAccess:       "SingleValuePropertyAccess",
	KindUnaryOperator:                   "UnaryOperator",
	KindEntitySet:                       "EntitySet",
	KindEntityCollectionFunctionCall:    "EntityCollectionFunctionCall",
	KindCollectionFunctionCall:          "CollectionFunctionCall",
	KindIn:                              "In",
	KindCollectionConstant:              "CollectionConstant",
}

// String returns the kind name, e.g. "BinaryOperator".
func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsValid reports whether k identifies a node type.
func (k Kind) IsValid() bool {
	return k > KindNone && k < kindCount
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount-1)
	for k := KindNone + 1; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
