package gormfilter

import (
	"fmt"
	"strings"
	"time"

	"github.com/nlstn/go-odata-uriparser/semantic"
)

var (
	maxDateTime = time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC)
	minDateTime = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
)

// datePart maps date functions to strftime formats and EXTRACT fields.
var datePart = map[string][2]string{
	"year":   {"%Y", "YEAR"},
	"month":  {"%m", "MONTH"},
	"day":    {"%d", "DAY"},
	"hour":   {"%H", "HOUR"},
	"minute": {"%M", "MINUTE"},
	"second": {"%S", "SECOND"},
}

var simpleFunctions = map[string]string{
	"length":  "LENGTH",
	"tolower": "LOWER",
	"toupper": "UPPER",
	"trim":    "TRIM",
	"round":   "ROUND",
}

func (v *sqlVisitor) VisitSingleValueFunctionCall(n *semantic.SingleValueFunctionCallNode) (fragment, error) {
	name := n.Name()
	args := n.Arguments()

	switch name {
	case "now":
		if v.postgres() {
			return raw("NOW()"), nil
		}
		return raw("datetime('now')"), nil
	case "maxdatetime":
		return fragment{sql: "?", args: []interface{}{maxDateTime}}, nil
	case "mindatetime":
		return fragment{sql: "?", args: []interface{}{minDateTime}}, nil
	case "cast":
		return v.cast(args)
	case "isof":
		return fragment{}, fmt.Errorf("%w: isof", ErrUnsupported)
	case "contains", "startswith", "endswith":
		return v.match(name, args)
	}

	if strings.Contains(name, ".") {
		return fragment{}, fmt.Errorf("%w: function %s", ErrUnsupported, name)
	}

	fs := make([]fragment, len(args))
	for i, arg := range args {
		f, err := v.visit(arg)
		if err != nil {
			return fragment{}, err
		}
		fs[i] = f
	}
	if len(fs) == 0 {
		return fragment{}, fmt.Errorf("%w: function %s", ErrUnsupported, name)
	}
	a := fs[0].sql
	all := joinArgs(fs)

	if fn, ok := simpleFunctions[name]; ok {
		return fragment{sql: fn + "(" + a + ")", args: all}, nil
	}
	if part, ok := datePart[name]; ok {
		if v.postgres() {
			return fragment{sql: "(EXTRACT(" + part[1] + " FROM " + a + ")::INT)", args: all}, nil
		}
		return fragment{sql: "CAST(strftime('" + part[0] + "', " + a + ") AS INTEGER)", args: all}, nil
	}

	switch name {
	case "fractionalseconds":
		if v.postgres() {
			return fragment{sql: "(EXTRACT(MICROSECONDS FROM " + a + ")::INT % 1000000 / 1000000.0)", args: all}, nil
		}
		return fragment{sql: "(CAST(strftime('%f', " + a + ") AS REAL) - CAST(strftime('%S', " + a + ") AS INTEGER))", args: all}, nil
	case "date":
		if v.postgres() {
			return fragment{sql: "CAST(" + a + " AS DATE)", args: all}, nil
		}
		return fragment{sql: "DATE(" + a + ")", args: all}, nil
	case "time":
		if v.postgres() {
			return fragment{sql: "CAST(" + a + " AS TIME)", args: all}, nil
		}
		return fragment{sql: "TIME(" + a + ")", args: all}, nil
	case "floor":
		if v.postgres() {
			return fragment{sql: "FLOOR(" + a + ")", args: all}, nil
		}
		return repeatArg("CASE WHEN %[1]s = CAST(%[1]s AS INTEGER) THEN %[1]s ELSE CAST(%[1]s AS INTEGER) - (CASE WHEN %[1]s < 0 THEN 1 ELSE 0 END) END", fs[0], 5), nil
	case "ceiling":
		if v.postgres() {
			return fragment{sql: "CEIL(" + a + ")", args: all}, nil
		}
		return repeatArg("CASE WHEN %[1]s = CAST(%[1]s AS INTEGER) THEN %[1]s ELSE CAST(%[1]s AS INTEGER) + (CASE WHEN %[1]s > 0 THEN 1 ELSE 0 END) END", fs[0], 5), nil
	case "indexof":
		if len(fs) != 2 {
			break
		}
		if v.postgres() {
			return fragment{sql: "(STRPOS(" + a + ", " + fs[1].sql + ") - 1)", args: all}, nil
		}
		return fragment{sql: "(INSTR(" + a + ", " + fs[1].sql + ") - 1)", args: all}, nil
	case "substring":
		if len(fs) == 2 {
			return fragment{sql: "SUBSTR(" + a + ", " + fs[1].sql + " + 1)", args: all}, nil
		}
		if len(fs) == 3 {
			return fragment{sql: "SUBSTR(" + a + ", " + fs[1].sql + " + 1, " + fs[2].sql + ")", args: all}, nil
		}
	case "concat":
		if len(fs) == 2 {
			return fragment{sql: "(" + a + " || " + fs[1].sql + ")", args: all}, nil
		}
	}
	return fragment{}, fmt.Errorf("%w: function %s with %d arguments", ErrUnsupported, name, len(fs))
}

// match renders contains, startswith and endswith. Literal patterns use
// LIKE with escaping; computed patterns compare substrings.
func (v *sqlVisitor) match(name string, args []semantic.Node) (fragment, error) {
	if len(args) != 2 {
		return fragment{}, fmt.Errorf("%w: %s with %d arguments", ErrUnsupported, name, len(args))
	}
	subject, err := v.visit(args[0])
	if err != nil {
		return fragment{}, err
	}

	if c, ok := args[1].(*semantic.ConstantNode); ok {
		if s, ok := c.Value().(string); ok {
			sql, likeArgs := buildLikeComparison(subject.sql, s, name != "startswith", name != "endswith")
			return fragment{sql: sql, args: append(subject.args, likeArgs...)}, nil
		}
	}

	pattern, err := v.visit(args[1])
	if err != nil {
		return fragment{}, err
	}
	s, p := subject.sql, pattern.sql
	switch name {
	case "contains":
		if v.postgres() {
			return fragment{sql: "STRPOS(" + s + ", " + p + ") > 0", args: joinArgs([]fragment{subject, pattern})}, nil
		}
		return fragment{sql: "INSTR(" + s + ", " + p + ") > 0", args: joinArgs([]fragment{subject, pattern})}, nil
	case "startswith":
		return fragment{
			sql:  "SUBSTR(" + s + ", 1, LENGTH(" + p + ")) = " + p,
			args: joinArgs([]fragment{subject, pattern, pattern}),
		}, nil
	default:
		return fragment{
			sql:  "SUBSTR(" + s + ", LENGTH(" + s + ") - LENGTH(" + p + ") + 1) = " + p,
			args: joinArgs([]fragment{subject, subject, pattern, pattern}),
		}, nil
	}
}

func (v *sqlVisitor) cast(args []semantic.Node) (fragment, error) {
	if len(args) != 2 {
		return fragment{}, fmt.Errorf("%w: cast with %d arguments", ErrUnsupported, len(args))
	}
	target, ok := args[1].(*semantic.ConstantNode)
	if !ok {
		return fragment{}, fmt.Errorf("%w: cast target", ErrUnsupported)
	}
	typeName, _ := target.Value().(string)
	value, err := v.visit(args[0])
	if err != nil {
		return fragment{}, err
	}
	value.sql = "CAST(" + value.sql + " AS " + edmTypeToSQLType(v.dialect, typeName) + ")"
	return value, nil
}

func joinArgs(fs []fragment) []interface{} {
	var args []interface{}
	for _, f := range fs {
		args = append(args, f.args...)
	}
	return args
}

// repeatArg formats an expression referencing f n times, repeating f's
// arguments to match.
func repeatArg(format string, f fragment, n int) fragment {
	args := make([]interface{}, 0, len(f.args)*n)
	for i := 0; i < n; i++ {
		args = append(args, f.args...)
	}
	return fragment{sql: fmt.Sprintf(format, f.sql), args: args}
}

// edmTypeToSQLType converts a primitive type name to the dialect's column type.
func edmTypeToSQLType(dialect string, edmType string) string {
	if dialect == DialectPostgres {
		switch edmType {
		case "Edm.Int32", "Edm.Int16", "Edm.Byte", "Edm.SByte":
			return "INTEGER"
		case "Edm.Int64":
			return "BIGINT"
		case "Edm.Decimal":
			return "NUMERIC"
		case "Edm.Double", "Edm.Single":
			return "DOUBLE PRECISION"
		case "Edm.Boolean":
			return "BOOLEAN"
		case "Edm.DateTimeOffset":
			return "TIMESTAMP WITH TIME ZONE"
		case "Edm.Date":
			return "DATE"
		case "Edm.TimeOfDay":
			return "TIME"
		case "Edm.Guid":
			return "UUID"
		case "Edm.Binary":
			return "BYTEA"
		}
		return "TEXT"
	}

	switch edmType {
	case "Edm.Int32", "Edm.Int16", "Edm.Byte", "Edm.SByte", "Edm.Int64", "Edm.Boolean":
		return "INTEGER"
	case "Edm.Decimal", "Edm.Double", "Edm.Single":
		return "REAL"
	case "Edm.Binary":
		return "BLOB"
	}
	return "TEXT"
}
