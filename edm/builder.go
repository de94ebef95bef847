package edm

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm/schema"
)

var errNoKey = errors.New("edm: entity type has no key property")

// Builder derives a Model from GORM model structs.
//
// Columns become structural properties, relations become navigation
// properties carrying their join columns, and every navigation whose target
// type backs a registered entity set is bound to that set.
type Builder struct {
	namespace string
	namer     schema.Namer
	cache     *sync.Map
	logger    *slog.Logger

	sets    []setSpec
	types   []interface{}
	options map[reflect.Type]*typeSpec
}

type setSpec struct {
	name  string
	model interface{}
}

type typeSpec struct {
	base interface{}
	open bool
}

// TypeOption customizes how an entity type is derived.
type TypeOption func(*typeSpec)

// BaseType declares model as the base type of the entity type.
func BaseType(model interface{}) TypeOption {
	return func(s *typeSpec) {
		s.base = model
	}
}

// OpenType marks the entity type as open.
func OpenType() TypeOption {
	return func(s *typeSpec) {
		s.open = true
	}
}

// NewBuilder creates a builder for a model in namespace.
func NewBuilder(namespace string) *Builder {
	return &Builder{
		namespace: namespace,
		namer:     schema.NamingStrategy{},
		cache:     &sync.Map{},
		logger:    slog.Default(),
		options:   make(map[reflect.Type]*typeSpec),
	}
}

// SetLogger sets the logger used while building.
func (b *Builder) SetLogger(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	b.logger = logger
	return b
}

// SetNamer overrides the GORM naming strategy used for table and column names.
func (b *Builder) SetNamer(namer schema.Namer) *Builder {
	if namer != nil {
		b.namer = namer
	}
	return b
}

// EntitySet registers an entity set named name backed by model.
func (b *Builder) EntitySet(name string, model interface{}, opts ...TypeOption) *Builder {
	b.sets = append(b.sets, setSpec{name: name, model: model})
	b.applyOptions(model, opts)
	return b
}

// EntityType registers an entity type that is not the type of any set,
// typically a derived type used in casts.
func (b *Builder) EntityType(model interface{}, opts ...TypeOption) *Builder {
	b.types = append(b.types, model)
	b.applyOptions(model, opts)
	return b
}

func (b *Builder) applyOptions(model interface{}, opts []TypeOption) {
	if len(opts) == 0 {
		return
	}
	goType := indirectType(reflect.TypeOf(model))
	spec, ok := b.options[goType]
	if !ok {
		spec = &typeSpec{}
		b.options[goType] = spec
	}
	for _, opt := range opts {
		opt(spec)
	}
}

// Build parses all registered models and returns the resulting Model.
func (b *Builder) Build() (*Model, error) {
	st := &buildState{
		builder:  b,
		model:    NewModel(b.namespace),
		byGoType: make(map[reflect.Type]*EntityType),
	}

	for _, model := range b.types {
		if _, err := st.entityType(model); err != nil {
			return nil, err
		}
	}

	for _, set := range b.sets {
		t, err := st.entityType(set.model)
		if err != nil {
			return nil, err
		}
		if err := st.model.AddEntitySet(NewEntitySet(set.name, t)); err != nil {
			return nil, err
		}
	}

	for _, set := range st.model.EntitySets() {
		for cur := set.Type; cur != nil; cur = cur.BaseType {
			for _, nav := range cur.Navigations {
				if target := st.model.EntitySetFor(nav.Target); target != nil {
					set.Bind(nav, target)
				}
			}
		}
	}

	b.logger.Debug("EDM model built",
		slog.String("namespace", b.namespace),
		slog.Int("entity_sets", len(b.sets)))

	return st.model, nil
}

type buildState struct {
	builder  *Builder
	model    *Model
	byGoType map[reflect.Type]*EntityType
}

func (st *buildState) entityType(model interface{}) (*EntityType, error) {
	s, err := schema.Parse(model, st.builder.cache, st.builder.namer)
	if err != nil {
		return nil, fmt.Errorf("edm: failed to parse model %T: %w", model, err)
	}
	return st.fromSchema(s)
}

func (st *buildState) fromSchema(s *schema.Schema) (*EntityType, error) {
	if t, ok := st.byGoType[s.ModelType]; ok {
		return t, nil
	}

	t := &EntityType{
		Namespace: st.builder.namespace,
		Name:      s.Name,
		Table:     s.Table,
	}
	// Registered before relations are walked so cyclic relations resolve.
	st.byGoType[s.ModelType] = t

	if spec := st.builder.options[s.ModelType]; spec != nil {
		t.Open = spec.open
		if spec.base != nil {
			base, err := st.entityType(spec.base)
			if err != nil {
				return nil, err
			}
			t.BaseType = base
		}
	}

	for _, field := range s.Fields {
		if field.DBName == "" || odataTagHas(field.Tag, "-") {
			continue
		}
		prop, err := structuralProperty(field)
		if err != nil {
			return nil, fmt.Errorf("edm: %s.%s: %w", s.Name, field.Name, err)
		}
		t.Properties = append(t.Properties, prop)
		if field.PrimaryKey || odataTagHas(field.Tag, "key") {
			t.Keys = append(t.Keys, field.Name)
		}
	}

	if len(t.Keys) == 0 && t.BaseType == nil {
		return nil, fmt.Errorf("%w: %s", errNoKey, s.Name)
	}

	names := make([]string, 0, len(s.Relationships.Relations))
	for name := range s.Relationships.Relations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rel := s.Relationships.Relations[name]
		if odataTagHas(rel.Field.Tag, "-") {
			continue
		}
		if rel.Type == schema.Many2Many {
			st.builder.logger.Debug("Skipping many2many relation",
				slog.String("entity", s.Name),
				slog.String("relation", name))
			continue
		}

		targetSchema, err := schema.Parse(reflect.New(rel.FieldSchema.ModelType).Interface(), st.builder.cache, st.builder.namer)
		if err != nil {
			return nil, fmt.Errorf("edm: failed to parse relation %s.%s: %w", s.Name, name, err)
		}
		target, err := st.fromSchema(targetSchema)
		if err != nil {
			return nil, err
		}

		nav := &NavigationProperty{
			Name:       name,
			Target:     target,
			Collection: rel.Type == schema.HasMany,
			Nullable:   rel.Field.FieldType.Kind() == reflect.Ptr,
		}
		if ref := joinReference(rel); ref != nil {
			if rel.Type == schema.BelongsTo {
				nav.SourceColumn = ref.ForeignKey.DBName
				nav.TargetColumn = ref.PrimaryKey.DBName
			} else {
				nav.SourceColumn = ref.PrimaryKey.DBName
				nav.TargetColumn = ref.ForeignKey.DBName
			}
		}
		t.Navigations = append(t.Navigations, nav)
	}

	if err := st.model.AddEntityType(t); err != nil {
		return nil, err
	}
	return t, nil
}

func structuralProperty(field *schema.Field) (*StructuralProperty, error) {
	goType := field.FieldType
	nullable := !field.PrimaryKey && !field.NotNull

	if goType.Kind() == reflect.Slice && goType.Elem().Kind() != reflect.Uint8 {
		kind, err := PrimitiveKindOf(goType.Elem())
		if err != nil {
			return nil, err
		}
		return &StructuralProperty{
			Name:   field.Name,
			Type:   CollectionOf(Primitive(kind, false)),
			Column: field.DBName,
		}, nil
	}

	kind, err := PrimitiveKindOf(goType)
	if err != nil {
		return nil, err
	}
	return &StructuralProperty{
		Name:   field.Name,
		Type:   Primitive(kind, nullable),
		Column: field.DBName,
	}, nil
}

func joinReference(rel *schema.Relationship) *schema.Reference {
	for _, ref := range rel.References {
		if ref.PrimaryKey != nil && ref.ForeignKey != nil {
			return ref
		}
	}
	return nil
}

// odataTagHas reports whether the comma separated odata struct tag contains part.
func odataTagHas(tag reflect.StructTag, part string) bool {
	for _, p := range strings.Split(tag.Get("odata"), ",") {
		if strings.TrimSpace(p) == part {
			return true
		}
	}
	return false
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
