// Command odataexplain shows how $filter and $orderby options are bound
// against a sample catalog model: the normalized option text, the semantic
// tree and the SQL the gormfilter package produces for it.
//
//	odataexplain print --set Products "Price gt 100 and Tags/any(t: t eq 'new')"
//	odataexplain serve --config explain.yaml
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
