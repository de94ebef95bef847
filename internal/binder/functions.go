package binder

import (
	"fmt"
	"strings"

	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/internal/syntax"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

// builtin describes a canonical function.
type builtin struct {
	minArgs, maxArgs int
	// params constrains argument types positionally; a missing or zero
	// entry accepts any type
	params []edm.PrimitiveKind
	// returns computes the result type from the bound arguments
	returns func(args []semantic.SingleValueNode) edm.TypeReference
}

func fixed(kind edm.PrimitiveKind) func([]semantic.SingleValueNode) edm.TypeReference {
	return func(args []semantic.SingleValueNode) edm.TypeReference {
		return edm.Primitive(kind, anyNullable(args))
	}
}

func sameAsFirst(args []semantic.SingleValueNode) edm.TypeReference {
	return args[0].TypeReference()
}

var (
	str = edm.PrimitiveString
	dto = edm.PrimitiveDateTimeOffset
)

var builtins = map[string]builtin{
	"contains":          {2, 2, []edm.PrimitiveKind{str, str}, fixed(edm.PrimitiveBoolean)},
	"startswith":        {2, 2, []edm.PrimitiveKind{str, str}, fixed(edm.PrimitiveBoolean)},
	"endswith":          {2, 2, []edm.PrimitiveKind{str, str}, fixed(edm.PrimitiveBoolean)},
	"length":            {1, 1, []edm.PrimitiveKind{str}, fixed(edm.PrimitiveInt32)},
	"indexof":           {2, 2, []edm.PrimitiveKind{str, str}, fixed(edm.PrimitiveInt32)},
	"substring":         {2, 3, []edm.PrimitiveKind{str, edm.PrimitiveInt32, edm.PrimitiveInt32}, fixed(str)},
	"tolower":           {1, 1, []edm.PrimitiveKind{str}, fixed(str)},
	"toupper":           {1, 1, []edm.PrimitiveKind{str}, fixed(str)},
	"trim":              {1, 1, []edm.PrimitiveKind{str}, fixed(str)},
	"concat":            {2, 2, []edm.PrimitiveKind{str, str}, fixed(str)},
	"year":              {1, 1, nil, fixed(edm.PrimitiveInt32)},
	"month":             {1, 1, nil, fixed(edm.PrimitiveInt32)},
	"day":               {1, 1, nil, fixed(edm.PrimitiveInt32)},
	"hour":              {1, 1, nil, fixed(edm.PrimitiveInt32)},
	"minute":            {1, 1, nil, fixed(edm.PrimitiveInt32)},
	"second":            {1, 1, nil, fixed(edm.PrimitiveInt32)},
	"fractionalseconds": {1, 1, nil, fixed(edm.PrimitiveDecimal)},
	"date":              {1, 1, []edm.PrimitiveKind{dto}, fixed(edm.PrimitiveDate)},
	"time":              {1, 1, []edm.PrimitiveKind{dto}, fixed(edm.PrimitiveTimeOfDay)},
	"now":               {0, 0, nil, fixed(dto)},
	"maxdatetime":       {0, 0, nil, fixed(dto)},
	"mindatetime":       {0, 0, nil, fixed(dto)},
	"round":             {1, 1, nil, sameAsFirst},
	"floor":             {1, 1, nil, sameAsFirst},
	"ceiling":           {1, 1, nil, sameAsFirst},
}

// operatorFunctions are operators that may also be written in call syntax.
var operatorFunctions = map[string]bool{
	"add": true, "sub": true, "mul": true, "div": true, "mod": true, "has": true,
}

func (st *state) bindCall(call *syntax.FunctionCallExpr) (semantic.Node, error) {
	if strings.Contains(call.Function, ".") {
		return st.bindModelFunction(call)
	}

	name := strings.ToLower(call.Function)
	switch {
	case name == "cast":
		return st.bindCastFunction(call)
	case name == "isof":
		return st.bindIsOf(call)
	case operatorFunctions[name]:
		if len(call.Args) != 2 {
			return nil, bindErrorf(call.Pos, "%s expects 2 arguments, got %d", name, len(call.Args))
		}
		return st.bindBinary(name, call.Args[0], call.Args[1], call.Pos)
	}

	fn, ok := builtins[name]
	if !ok {
		return nil, bindErrorf(call.Pos, "unknown function '%s'", call.Function)
	}
	if len(call.Args) < fn.minArgs || len(call.Args) > fn.maxArgs {
		return nil, bindErrorf(call.Pos, "%s expects %s, got %d", name, arity(fn.minArgs, fn.maxArgs), len(call.Args))
	}

	args := make([]semantic.SingleValueNode, len(call.Args))
	for i, arg := range call.Args {
		bound, err := st.bindSingle(arg)
		if err != nil {
			return nil, err
		}
		if i < len(fn.params) && fn.params[i] != edm.PrimitiveNone {
			if bound, err = coerceArgument(bound, fn.params[i], name, arg.Position()); err != nil {
				return nil, err
			}
		}
		args[i] = bound
	}

	if name == "round" || name == "floor" || name == "ceiling" {
		if ref := args[0].TypeReference(); ref != nil && !isNumeric(ref) {
			return nil, bindErrorf(call.Pos, "%s expects a numeric argument, got %s", name, ref.FullName())
		}
	}

	return semantic.NewSingleValueFunctionCallNode(name, nodes(args), fn.returns(args)), nil
}

// bindCastFunction binds cast(Type) and cast(expr, Type). Entity targets
// produce a type cast node; primitive targets a cast function call.
func (st *state) bindCastFunction(call *syntax.FunctionCallExpr) (semantic.Node, error) {
	source, typeName, err := st.typeArguments(call)
	if err != nil {
		return nil, err
	}

	if target := st.binder.model.FindEntityType(typeName); target != nil {
		entity, ok := source.(semantic.SingleEntityNode)
		if !ok {
			return nil, bindErrorf(call.Pos, "cast to entity type '%s' requires an entity argument", typeName)
		}
		return semantic.NewSingleEntityCastNode(entity, target), nil
	}

	kind, ok := edm.PrimitiveKindByName(typeName)
	if !ok {
		return nil, bindErrorf(call.Pos, "unknown type '%s'", typeName)
	}
	args := []semantic.Node{source, semantic.NewLiteralConstantNode(typeName, "'"+typeName+"'")}
	return semantic.NewSingleValueFunctionCallNode("cast", args, edm.Primitive(kind, true)), nil
}

func (st *state) bindIsOf(call *syntax.FunctionCallExpr) (semantic.Node, error) {
	source, typeName, err := st.typeArguments(call)
	if err != nil {
		return nil, err
	}
	if st.binder.model.FindEntityType(typeName) == nil {
		if _, ok := edm.PrimitiveKindByName(typeName); !ok {
			return nil, bindErrorf(call.Pos, "unknown type '%s'", typeName)
		}
	}
	args := []semantic.Node{source, semantic.NewLiteralConstantNode(typeName, "'"+typeName+"'")}
	return semantic.NewSingleValueFunctionCallNode("isof", args, edm.Boolean(false)), nil
}

// typeArguments splits the arguments of cast and isof into the value being
// tested, defaulting to $it, and the qualified type name.
func (st *state) typeArguments(call *syntax.FunctionCallExpr) (semantic.SingleValueNode, string, error) {
	var valueExpr, typeExpr syntax.ASTNode
	switch len(call.Args) {
	case 1:
		typeExpr = call.Args[0]
	case 2:
		valueExpr, typeExpr = call.Args[0], call.Args[1]
	default:
		return nil, "", bindErrorf(call.Pos, "%s expects 1 or 2 arguments, got %d", strings.ToLower(call.Function), len(call.Args))
	}

	var typeName string
	switch t := typeExpr.(type) {
	case *syntax.MemberExpr:
		if t.Source == nil {
			typeName = t.Name
		}
	case *syntax.LiteralExpr:
		if s, ok := t.Value.(string); ok {
			typeName = s
		}
	}
	if typeName == "" {
		return nil, "", bindErrorf(typeExpr.Position(), "expected a qualified type name")
	}

	if valueExpr == nil {
		return reference(st.it), typeName, nil
	}
	value, err := st.bindSingle(valueExpr)
	if err != nil {
		return nil, "", err
	}
	return value, typeName, nil
}

func (st *state) bindModelFunction(call *syntax.FunctionCallExpr) (semantic.Node, error) {
	overloads := st.binder.model.FindFunctions(call.Function)
	if len(overloads) == 0 {
		return nil, bindErrorf(call.Pos, "unknown function '%s'", call.Function)
	}
	var fn *edm.Function
	for _, candidate := range overloads {
		if len(candidate.Parameters) == len(call.Args) {
			fn = candidate
			break
		}
	}
	if fn == nil {
		return nil, bindErrorf(call.Pos, "no overload of '%s' takes %d arguments", call.Function, len(call.Args))
	}

	args := make([]semantic.Node, len(call.Args))
	for i, arg := range call.Args {
		bound, err := st.bind(arg)
		if err != nil {
			return nil, err
		}
		if single, ok := bound.(semantic.SingleValueNode); ok {
			if p := edm.AsPrimitive(fn.Parameters[i].Type); p != nil {
				if bound, err = coerceArgument(single, p.Kind, fn.FullName(), arg.Position()); err != nil {
					return nil, err
				}
			}
		}
		args[i] = bound
	}

	name := fn.FullName()
	switch ret := fn.ReturnType.(type) {
	case *edm.EntityTypeReference:
		return semantic.NewSingleEntityFunctionCallNode(name, args, ret, st.functionSet(fn, ret)), nil
	case *edm.CollectionTypeReference:
		if elem := edm.AsEntity(ret.Elem); elem != nil {
			return semantic.NewEntityCollectionFunctionCallNode(name, args, elem, st.functionSet(fn, elem)), nil
		}
		return semantic.NewCollectionFunctionCallNode(name, args, ret.Elem), nil
	}
	return semantic.NewSingleValueFunctionCallNode(name, args, fn.ReturnType), nil
}

func (st *state) functionSet(fn *edm.Function, ref *edm.EntityTypeReference) *edm.EntitySet {
	if fn.EntitySet != nil {
		return fn.EntitySet
	}
	return st.binder.model.EntitySetFor(ref.Type)
}

// coerceArgument checks an argument against a primitive parameter kind,
// widening numerics and typing untyped nulls.
func coerceArgument(arg semantic.SingleValueNode, kind edm.PrimitiveKind, function string, pos int) (semantic.SingleValueNode, error) {
	ref := arg.TypeReference()
	if ref == nil {
		return nullOf(arg, edm.Primitive(kind, true)), nil
	}
	p := edm.AsPrimitive(ref)
	if p == nil {
		return nil, bindErrorf(pos, "%s expects %s, got %s", function, kind, ref.FullName())
	}
	if p.Kind == kind {
		return arg, nil
	}
	if promoted, ok := edm.PromoteNumeric(p.Kind, kind); ok && promoted == kind {
		return widen(arg, kind), nil
	}
	if p.Kind == edm.PrimitiveDate && kind == edm.PrimitiveDateTimeOffset {
		return widen(arg, kind), nil
	}
	return nil, bindErrorf(pos, "%s expects %s, got %s", function, kind, ref.FullName())
}

func anyNullable(args []semantic.SingleValueNode) bool {
	for _, a := range args {
		if ref := a.TypeReference(); ref == nil || ref.IsNullable() {
			return true
		}
	}
	return false
}

func nodes(args []semantic.SingleValueNode) []semantic.Node {
	out := make([]semantic.Node, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

func arity(minArgs, maxArgs int) string {
	switch {
	case minArgs == maxArgs && minArgs == 1:
		return "1 argument"
	case minArgs == maxArgs:
		return fmt.Sprintf("%d arguments", minArgs)
	}
	return fmt.Sprintf("%d to %d arguments", minArgs, maxArgs)
}
