package gormfilter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

// entityPath addresses an entity row. A range variable is addressed
// directly by its alias; an entity reached through navigation properties
// carries the hops that correlate it with the row it was navigated from.
type entityPath struct {
	alias  string
	entity *edm.EntityType
	hops   []hop
}

// hop joins alias to the previous row of the path through on.
type hop struct {
	table string
	alias string
	on    string
}

func (p *entityPath) navigate(nav *edm.NavigationProperty, alias string) *entityPath {
	return &entityPath{
		alias:  alias,
		entity: nav.Target,
		hops: append(slices.Clone(p.hops), hop{
			table: quoteIdent(nav.Target.Table),
			alias: alias,
			on:    alias + "." + quoteIdent(nav.TargetColumn) + " = " + p.alias + "." + quoteIdent(nav.SourceColumn),
		}),
	}
}

// column returns an expression for col of the addressed entity.
func (p *entityPath) column(col string) string {
	ref := p.alias + "." + quoteIdent(col)
	if len(p.hops) == 0 {
		return ref
	}
	return "(" + p.subquery(ref) + ")"
}

// subquery selects selectExpr from the rows at the end of the path. The
// first hop correlates the subquery with the enclosing statement.
func (p *entityPath) subquery(selectExpr string, conds ...string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectExpr)
	b.WriteString(" FROM ")
	for i, h := range p.hops {
		if i > 0 {
			b.WriteString(" JOIN ")
		}
		b.WriteString(h.table)
		b.WriteString(" AS ")
		b.WriteString(h.alias)
		if i > 0 {
			b.WriteString(" ON ")
			b.WriteString(h.on)
		}
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(append([]string{p.hops[0].on}, conds...), " AND "))
	return b.String()
}

// pathVisitor resolves single-entity nodes to addressable rows.
type pathVisitor struct {
	semantic.DefaultVisitor[*entityPath]
	v *sqlVisitor
}

func (v *sqlVisitor) entity(n semantic.SingleEntityNode) (*entityPath, error) {
	return semantic.Accept[*entityPath](n, pathVisitor{v: v})
}

func (p pathVisitor) VisitEntityRangeVariableReference(n *semantic.EntityRangeVariableReferenceNode) (*entityPath, error) {
	s, ok := p.v.scopes[n.RangeVariable()]
	if !ok || s.entity == nil {
		return nil, fmt.Errorf("%w: range variable %s is not in scope", ErrUnsupported, n.Name())
	}
	return s.entity, nil
}

func (p pathVisitor) VisitSingleNavigation(n *semantic.SingleNavigationNode) (*entityPath, error) {
	source, err := p.v.entity(n.Source())
	if err != nil {
		return nil, err
	}
	nav := n.NavigationProperty()
	if nav.Target == nil || nav.Target.Table == "" {
		return nil, fmt.Errorf("%w: navigation %s has no target table", ErrUnsupported, nav.Name)
	}
	return source.navigate(nav, p.v.nextAlias("n")), nil
}

// lambdaSource is the row source a lambda or in operator ranges over.
// Entity collections are rows reached through a navigation path; value
// collections are JSON arrays expanded by a table-valued function.
type lambdaSource struct {
	path   *entityPath
	from   string
	values string
	scope  scope
}

// query selects from the source rows satisfying conds.
func (s lambdaSource) query(conds ...string) string {
	if s.path != nil {
		return s.path.subquery("1", conds...)
	}
	q := "SELECT 1 FROM " + s.from
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	return q
}

type sourceVisitor struct {
	semantic.DefaultVisitor[lambdaSource]
	v *sqlVisitor
}

func (v *sqlVisitor) lambdaSource(n semantic.CollectionNode) (lambdaSource, error) {
	return semantic.Accept[lambdaSource](n, sourceVisitor{v: v})
}

func (s sourceVisitor) VisitCollectionNavigation(n *semantic.CollectionNavigationNode) (lambdaSource, error) {
	source, err := s.v.entity(n.Source())
	if err != nil {
		return lambdaSource{}, err
	}
	nav := n.NavigationProperty()
	if nav.Target == nil || nav.Target.Table == "" {
		return lambdaSource{}, fmt.Errorf("%w: navigation %s has no target table", ErrUnsupported, nav.Name)
	}
	path := source.navigate(nav, s.v.nextAlias("t"))
	return lambdaSource{
		path:  path,
		scope: scope{entity: &entityPath{alias: path.alias, entity: nav.Target}},
	}, nil
}

func (s sourceVisitor) VisitCollectionPropertyAccess(n *semantic.CollectionPropertyAccessNode) (lambdaSource, error) {
	entity, ok := n.Source().(semantic.SingleEntityNode)
	if !ok {
		return lambdaSource{}, fmt.Errorf("%w: collection %s of a non-entity value", ErrUnsupported, n.Property().Name)
	}
	source, err := s.v.entity(entity)
	if err != nil {
		return lambdaSource{}, err
	}

	col := source.column(n.Property().Column)
	alias := s.v.nextAlias("j")
	values := alias + "." + quoteIdent("value")
	from := "json_each(" + col + ") AS " + alias
	if s.v.postgres() {
		from = "jsonb_array_elements_text((" + col + ")::jsonb) AS " + alias + "(value)"
	}
	return lambdaSource{from: from, values: values, scope: scope{value: values}}, nil
}

// quoteIdent quotes an identifier with double quotes, which both SQLite and
// PostgreSQL accept. Embedded quotes are doubled.
func quoteIdent(ident string) string {
	if ident == "" {
		return ident
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
