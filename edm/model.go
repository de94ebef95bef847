package edm

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	errDuplicateEntityType = errors.New("edm: duplicate entity type")
	errDuplicateEntitySet  = errors.New("edm: duplicate entity set")
	errInvalidFunction     = errors.New("edm: invalid function")
)

// EntityType describes an entity type and its properties.
type EntityType struct {
	Namespace string
	Name      string
	// BaseType is the type this type derives from, if any
	BaseType *EntityType
	// Open types accept dynamic properties not declared in the model
	Open bool
	// Table is the storage table backing the type
	Table       string
	Keys        []string
	Properties  []*StructuralProperty
	Navigations []*NavigationProperty
}

// StructuralProperty is a primitive or collection-of-primitive property.
type StructuralProperty struct {
	Name   string
	Type   TypeReference
	Column string
}

// NavigationProperty relates an entity type to another entity type.
//
// The join condition between the declaring (source) entity and the target
// entity is target.TargetColumn = source.SourceColumn.
type NavigationProperty struct {
	Name         string
	Target       *EntityType
	Collection   bool
	Nullable     bool
	SourceColumn string
	TargetColumn string
}

// FullName returns the namespace qualified type name.
func (t *EntityType) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// Reference returns a type reference to t.
func (t *EntityType) Reference(nullable bool) *EntityTypeReference {
	return &EntityTypeReference{Type: t, Nullable: nullable}
}

// FindProperty looks up a structural property on t or its base types.
func (t *EntityType) FindProperty(name string) *StructuralProperty {
	for cur := t; cur != nil; cur = cur.BaseType {
		for _, p := range cur.Properties {
			if p.Name == name {
				return p
			}
		}
	}
	return nil
}

// FindNavigation looks up a navigation property on t or its base types.
func (t *EntityType) FindNavigation(name string) *NavigationProperty {
	for cur := t; cur != nil; cur = cur.BaseType {
		for _, n := range cur.Navigations {
			if n.Name == name {
				return n
			}
		}
	}
	return nil
}

// IsAssignableTo reports whether t is other or derives from it.
func (t *EntityType) IsAssignableTo(other *EntityType) bool {
	for cur := t; cur != nil; cur = cur.BaseType {
		if cur == other {
			return true
		}
	}
	return false
}

// IsOpen reports whether t or any base type is open.
func (t *EntityType) IsOpen() bool {
	for cur := t; cur != nil; cur = cur.BaseType {
		if cur.Open {
			return true
		}
	}
	return false
}

// KeyColumn returns the storage column of the first key property.
func (t *EntityType) KeyColumn() string {
	for cur := t; cur != nil; cur = cur.BaseType {
		if len(cur.Keys) > 0 {
			if p := t.FindProperty(cur.Keys[0]); p != nil {
				return p.Column
			}
		}
	}
	return "id"
}

// EntitySet is a named collection of entities of one type.
type EntitySet struct {
	Name string
	Type *EntityType

	bindings map[string]*EntitySet
}

// NewEntitySet creates an entity set over t.
func NewEntitySet(name string, t *EntityType) *EntitySet {
	return &EntitySet{Name: name, Type: t, bindings: make(map[string]*EntitySet)}
}

// Bind records target as the entity set reached through nav.
func (s *EntitySet) Bind(nav *NavigationProperty, target *EntitySet) {
	if s.bindings == nil {
		s.bindings = make(map[string]*EntitySet)
	}
	s.bindings[nav.Name] = target
}

// NavigationTarget returns the entity set bound to nav, or nil when the
// navigation is unbound.
func (s *EntitySet) NavigationTarget(nav *NavigationProperty) *EntitySet {
	if s == nil || nav == nil {
		return nil
	}
	return s.bindings[nav.Name]
}

// Parameter is a function parameter.
type Parameter struct {
	Name string
	Type TypeReference
}

// Function is a model function callable from query expressions.
type Function struct {
	Namespace  string
	Name       string
	Parameters []Parameter
	ReturnType TypeReference
	// EntitySet is the set entity-typed results belong to, if known
	EntitySet *EntitySet
}

// FullName returns the namespace qualified function name.
func (f *Function) FullName() string {
	if f.Namespace == "" {
		return f.Name
	}
	return f.Namespace + "." + f.Name
}

// Model is the registry of types, sets and functions of one service.
//
// A Model is built once and then read concurrently; it is not safe to
// register new elements while queries are being bound.
type Model struct {
	Namespace string

	types     map[string]*EntityType
	sets      map[string]*EntitySet
	functions map[string][]*Function
}

// NewModel creates an empty model.
func NewModel(namespace string) *Model {
	return &Model{
		Namespace: namespace,
		types:     make(map[string]*EntityType),
		sets:      make(map[string]*EntitySet),
		functions: make(map[string][]*Function),
	}
}

// AddEntityType registers t. The type's namespace defaults to the model's.
func (m *Model) AddEntityType(t *EntityType) error {
	if t.Namespace == "" {
		t.Namespace = m.Namespace
	}
	if _, exists := m.types[t.FullName()]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEntityType, t.FullName())
	}
	m.types[t.FullName()] = t
	return nil
}

// AddEntitySet registers s.
func (m *Model) AddEntitySet(s *EntitySet) error {
	if _, exists := m.sets[s.Name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEntitySet, s.Name)
	}
	m.sets[s.Name] = s
	return nil
}

// AddFunction registers f. Overloads share a name and differ by arity.
func (m *Model) AddFunction(f *Function) error {
	if f.Name == "" || f.ReturnType == nil {
		return fmt.Errorf("%w: name and return type are required", errInvalidFunction)
	}
	if f.Namespace == "" {
		f.Namespace = m.Namespace
	}
	m.functions[f.FullName()] = append(m.functions[f.FullName()], f)
	return nil
}

// FindEntityType resolves a qualified or model-local type name.
func (m *Model) FindEntityType(name string) *EntityType {
	if t, ok := m.types[name]; ok {
		return t
	}
	if !strings.Contains(name, ".") {
		return m.types[m.Namespace+"."+name]
	}
	return nil
}

// FindEntitySet resolves an entity set by name.
func (m *Model) FindEntitySet(name string) *EntitySet {
	return m.sets[name]
}

// FindFunctions returns the overloads registered under a qualified name.
func (m *Model) FindFunctions(name string) []*Function {
	return m.functions[name]
}

// EntitySets returns all entity sets ordered by name.
func (m *Model) EntitySets() []*EntitySet {
	sets := make([]*EntitySet, 0, len(m.sets))
	for _, s := range m.sets {
		sets = append(sets, s)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })
	return sets
}

// EntitySetFor returns the first entity set (by name) whose type is t.
func (m *Model) EntitySetFor(t *EntityType) *EntitySet {
	for _, s := range m.EntitySets() {
		if s.Type == t {
			return s
		}
	}
	return nil
}
