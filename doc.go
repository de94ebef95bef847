// Package uriparser parses OData $filter and $orderby query options into
// semantic trees bound against an entity data model.
//
// A Parser tokenizes and parses the option text, resolves every identifier
// against the model and returns a tree of semantic nodes:
//
//	model, err := edm.NewBuilder("Shop").
//		EntitySet("Products", &Product{}).
//		Build()
//	if err != nil {
//		return err
//	}
//	p := uriparser.NewParser(model)
//	filter, err := p.ParseFilter(ctx, "Products", "Price gt 10 and Tags/any(t: t eq 'new')")
//
// Trees are consumed through semantic.Visitor and semantic.Accept. The
// printer package renders trees back to text and the gormfilter package
// translates them into SQL for GORM.
package uriparser
