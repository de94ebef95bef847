package semantic

import (
	"testing"

	"github.com/nlstn/go-odata-uriparser/edm"
)

type testModel struct {
	person     *edm.EntityType
	employee   *edm.EntityType
	people     *edm.EntitySet
	name       *edm.StructuralProperty
	locations  *edm.StructuralProperty
	friends    *edm.NavigationProperty
	manager    *edm.NavigationProperty
	peopleNode *EntitySetNode
}

func newTestModel(t *testing.T) *testModel {
	t.Helper()

	person := &edm.EntityType{
		Namespace: "Test",
		Name:      "Person",
		Table:     "people",
		Keys:      []string{"ID"},
	}
	name := &edm.StructuralProperty{Name: "Name", Type: edm.String(true), Column: "name"}
	locations := &edm.StructuralProperty{
		Name:   "Locations",
		Type:   edm.CollectionOf(edm.String(false)),
		Column: "locations",
	}
	person.Properties = []*edm.StructuralProperty{
		{Name: "ID", Type: edm.Int32(false), Column: "id"},
		name,
		locations,
	}
	friends := &edm.NavigationProperty{
		Name:         "Friends",
		Target:       person,
		Collection:   true,
		SourceColumn: "id",
		TargetColumn: "friend_of_id",
	}
	manager := &edm.NavigationProperty{
		Name:         "Manager",
		Target:       person,
		Nullable:     true,
		SourceColumn: "manager_id",
		TargetColumn: "id",
	}
	person.Navigations = []*edm.NavigationProperty{friends, manager}

	employee := &edm.EntityType{Namespace: "Test", Name: "Employee", BaseType: person}

	model := edm.NewModel("Test")
	if err := model.AddEntityType(person); err != nil {
		t.Fatalf("AddEntityType(Person): %v", err)
	}
	if err := model.AddEntityType(employee); err != nil {
		t.Fatalf("AddEntityType(Employee): %v", err)
	}
	people := edm.NewEntitySet("People", person)
	if err := model.AddEntitySet(people); err != nil {
		t.Fatalf("AddEntitySet(People): %v", err)
	}
	people.Bind(friends, people)
	people.Bind(manager, people)

	return &testModel{
		person:     person,
		employee:   employee,
		people:     people,
		name:       name,
		locations:  locations,
		friends:    friends,
		manager:    manager,
		peopleNode: NewEntitySetNode(people),
	}
}

// sampleNodes returns one minimal node per kind, mirroring how the binder
// and hand-written callers construct them.
func (m *testModel) sampleNodes() map[Kind]Node {
	it := NewEntityRangeVariable("stuff", m.person.Reference(false), m.peopleNode)
	dummy := NewNonentityRangeVariable("dummy", edm.String(false), nil)
	one := NewConstantNode(1)

	return map[Kind]Node{
		KindAll:                             NewAllNode(nil, nil, nil, nil),
		KindAny:                             NewAnyNode(nil, nil, nil, nil),
		KindBinaryOperator:                  NewBinaryOperatorNode(BinaryEqual, NewConstantNode(1), NewConstantNode(2)),
		KindCollectionNavigation:            NewCollectionNavigationNode(nil, m.friends, m.people),
		KindCollectionPropertyAccess:        NewCollectionPropertyAccessNode(one, m.locations),
		KindConstant:                        NewConstantNode(nil),
		KindConvert:                         NewConvertNode(one, edm.Binary(true)),
		KindEntityCollectionCast:            NewEntityCollectionCastNode(m.peopleNode, m.person),
		KindEntityRangeVariableReference:    NewEntityRangeVariableReferenceNode("stuff", it),
		KindNonentityRangeVariableReference: NewNonentityRangeVariableReferenceNode("dummy", dummy),
		KindSingleEntityCast:                NewSingleEntityCastNode(nil, m.person),
		KindSingleNavigation:                NewSingleNavigationNode(nil, m.manager, m.people),
		KindSingleEntityFunctionCall:        NewSingleEntityFunctionCallNode("stuff", nil, m.person.Reference(false), m.people),
		KindSingleValueFunctionCall:         NewSingleValueFunctionCallNode("stuff", nil, edm.Int32(false)),
		KindSingleValueOpenPropertyAccess:   NewSingleValueOpenPropertyAccessNode(one, "stuff"),
		KindSingleValuePropertyAccess:       NewSingleValuePropertyAccessNode(one, m.name),
		KindUnaryOperator:                   NewUnaryOperatorNode(UnaryNot, one),
		KindEntitySet:                       m.peopleNode,
		KindEntityCollectionFunctionCall:    NewEntityCollectionFunctionCallNode("stuff", nil, m.person.Reference(false), m.people),
		KindCollectionFunctionCall:          NewCollectionFunctionCallNode("stuff", nil, edm.String(false)),
		KindIn:                              NewInNode(one, NewCollectionConstantNode([]*ConstantNode{one}, edm.Int32(false))),
		KindCollectionConstant:              NewCollectionConstantNode(nil, edm.Int32(false)),
	}
}
