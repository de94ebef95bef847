package printer

import (
	"strings"

	"github.com/nlstn/go-odata-uriparser/semantic"
)

// TreeOption configures Tree.
type TreeOption func(*treeConfig)

type treeConfig struct {
	indent    string
	showTypes bool
	kindStyle func(a ...interface{}) string
	typeStyle func(a ...interface{}) string
}

// WithIndent sets the string repeated once per nesting level. Defaults to two spaces.
func WithIndent(indent string) TreeOption {
	return func(c *treeConfig) {
		c.indent = indent
	}
}

// WithTypes appends the type reference of every typed node.
func WithTypes() TreeOption {
	return func(c *treeConfig) {
		c.showTypes = true
	}
}

// WithStyles decorates kind names and type names, e.g. with terminal colors.
// Either function may be nil.
func WithStyles(kind, typeName func(a ...interface{}) string) TreeOption {
	return func(c *treeConfig) {
		if kind != nil {
			c.kindStyle = kind
		}
		if typeName != nil {
			c.typeStyle = typeName
		}
	}
}

func plain(a ...interface{}) string {
	if len(a) == 0 {
		return ""
	}
	s, _ := a[0].(string)
	return s
}

// Tree renders n as an indented outline with one node per line:
//
//	BinaryOperator and
//	  BinaryOperator gt
//	    SingleValuePropertyAccess Price
//	      EntityRangeVariableReference $it
//	    Constant 10
func Tree(n semantic.Node, opts ...TreeOption) (string, error) {
	cfg := treeConfig{indent: "  ", kindStyle: plain, typeStyle: plain}
	for _, opt := range opts {
		opt(&cfg)
	}

	var b strings.Builder
	if err := writeTree(&b, n, 0, &cfg); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeTree(b *strings.Builder, n semantic.Node, depth int, cfg *treeConfig) error {
	e, err := semantic.Accept[outline](n, outlineVisitor{})
	if err != nil {
		return err
	}

	b.WriteString(strings.Repeat(cfg.indent, depth))
	b.WriteString(cfg.kindStyle(n.Kind().String()))
	if e.label != "" {
		b.WriteString(" ")
		b.WriteString(e.label)
	}
	if cfg.showTypes {
		if ref := n.TypeReference(); ref != nil {
			b.WriteString(" : ")
			b.WriteString(cfg.typeStyle(ref.FullName()))
		}
	}
	b.WriteString("\n")

	for _, child := range e.children {
		if err := writeTree(b, child, depth+1, cfg); err != nil {
			return err
		}
	}
	return nil
}

// outline is the label and children of one tree line.
type outline struct {
	label    string
	children []semantic.Node
}

type outlineVisitor struct {
	semantic.DefaultVisitor[outline]
}

func lambdaOutline(source semantic.CollectionNode, variable semantic.RangeVariable, body semantic.SingleValueNode) outline {
	o := outline{children: []semantic.Node{source}}
	if variable != nil {
		o.label = variable.Name()
	}
	if body != nil {
		o.children = append(o.children, body)
	}
	return o
}

func (outlineVisitor) VisitAll(n *semantic.AllNode) (outline, error) {
	return lambdaOutline(n.Source(), n.CurrentRangeVariable(), n.Body()), nil
}

func (outlineVisitor) VisitAny(n *semantic.AnyNode) (outline, error) {
	return lambdaOutline(n.Source(), n.CurrentRangeVariable(), n.Body()), nil
}

func (outlineVisitor) VisitBinaryOperator(n *semantic.BinaryOperatorNode) (outline, error) {
	return outline{label: n.OperatorKind().String(), children: []semantic.Node{n.Left(), n.Right()}}, nil
}

func (outlineVisitor) VisitUnaryOperator(n *semantic.UnaryOperatorNode) (outline, error) {
	return outline{label: n.OperatorKind().String(), children: []semantic.Node{n.Operand()}}, nil
}

func (outlineVisitor) VisitIn(n *semantic.InNode) (outline, error) {
	return outline{children: []semantic.Node{n.Left(), n.Right()}}, nil
}

func (outlineVisitor) VisitConstant(n *semantic.ConstantNode) (outline, error) {
	return outline{label: constantText(n)}, nil
}

func (outlineVisitor) VisitCollectionConstant(n *semantic.CollectionConstantNode) (outline, error) {
	items := n.Items()
	children := make([]semantic.Node, len(items))
	for i, item := range items {
		children[i] = item
	}
	return outline{children: children}, nil
}

func (outlineVisitor) VisitConvert(n *semantic.ConvertNode) (outline, error) {
	return outline{children: []semantic.Node{n.Source()}}, nil
}

func (outlineVisitor) VisitSingleValuePropertyAccess(n *semantic.SingleValuePropertyAccessNode) (outline, error) {
	return outline{label: n.Property().Name, children: []semantic.Node{n.Source()}}, nil
}

func (outlineVisitor) VisitCollectionPropertyAccess(n *semantic.CollectionPropertyAccessNode) (outline, error) {
	return outline{label: n.Property().Name, children: []semantic.Node{n.Source()}}, nil
}

func (outlineVisitor) VisitSingleValueOpenPropertyAccess(n *semantic.SingleValueOpenPropertyAccessNode) (outline, error) {
	return outline{label: n.Name(), children: []semantic.Node{n.Source()}}, nil
}

func (outlineVisitor) VisitSingleNavigation(n *semantic.SingleNavigationNode) (outline, error) {
	return outline{label: n.NavigationProperty().Name, children: []semantic.Node{n.Source()}}, nil
}

func (outlineVisitor) VisitCollectionNavigation(n *semantic.CollectionNavigationNode) (outline, error) {
	return outline{label: n.NavigationProperty().Name, children: []semantic.Node{n.Source()}}, nil
}

func (outlineVisitor) VisitSingleEntityCast(n *semantic.SingleEntityCastNode) (outline, error) {
	return outline{label: n.EntityType().FullName(), children: []semantic.Node{n.Source()}}, nil
}

func (outlineVisitor) VisitEntityCollectionCast(n *semantic.EntityCollectionCastNode) (outline, error) {
	return outline{label: n.EntityType().FullName(), children: []semantic.Node{n.Source()}}, nil
}

func (outlineVisitor) VisitEntityRangeVariableReference(n *semantic.EntityRangeVariableReferenceNode) (outline, error) {
	return outline{label: n.Name()}, nil
}

func (outlineVisitor) VisitNonentityRangeVariableReference(n *semantic.NonentityRangeVariableReferenceNode) (outline, error) {
	return outline{label: n.Name()}, nil
}

func (outlineVisitor) VisitEntitySet(n *semantic.EntitySetNode) (outline, error) {
	return outline{label: n.EntitySet().Name}, nil
}

func (outlineVisitor) VisitSingleValueFunctionCall(n *semantic.SingleValueFunctionCallNode) (outline, error) {
	return outline{label: n.Name(), children: n.Arguments()}, nil
}

func (outlineVisitor) VisitSingleEntityFunctionCall(n *semantic.SingleEntityFunctionCallNode) (outline, error) {
	return outline{label: n.Name(), children: n.Arguments()}, nil
}

func (outlineVisitor) VisitCollectionFunctionCall(n *semantic.CollectionFunctionCallNode) (outline, error) {
	return outline{label: n.Name(), children: n.Arguments()}, nil
}

func (outlineVisitor) VisitEntityCollectionFunctionCall(n *semantic.EntityCollectionFunctionCallNode) (outline, error) {
	return outline{label: n.Name(), children: n.Arguments()}, nil
}
