// Package semantic defines the bound representation of OData query
// expressions and the visitor contract consumers use to process it.
//
// A bound expression is a tree of immutable nodes. Each node reports a Kind
// identifying its concrete type, and Accept routes a node to the matching
// method of a Visitor:
//
//	type countConstants struct {
//		semantic.DefaultVisitor[int]
//	}
//
//	func (v countConstants) VisitConstant(*semantic.ConstantNode) (int, error) {
//		return 1, nil
//	}
//
//	n, err := semantic.Accept[int](node, countConstants{})
//
// Methods a visitor does not override fail with a *NotImplementedError
// naming the node kind, so a consumer that meets a construct it does not
// support reports it instead of producing a wrong result. Accept handles a
// single node; visitors that need to process children call Accept on them.
package semantic
