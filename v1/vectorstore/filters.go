package vectorstore

import (
	"fmt"
	"sort"
	"strings"
)

// comparisonOperators maps filter operators onto their SQL counterparts.
var comparisonOperators = map[string]string{
	"$eq":  "=",
	"$ne":  "!=",
	"$lt":  "<",
	"$lte": "<=",
	"$gt":  ">",
	"$gte": ">=",
}

var textOperators = map[string]string{
	"$like":  "LIKE",
	"$ilike": "ILIKE",
}

var specialOperators = map[string]struct{}{
	"$in":      {},
	"$nin":     {},
	"$between": {},
	"$exists":  {},
}

var logicalOperators = map[string]struct{}{
	"$and": {},
	"$or":  {},
	"$not": {},
}

func isSupportedOperator(op string) bool {
	if _, ok := comparisonOperators[op]; ok {
		return true
	}
	if _, ok := textOperators[op]; ok {
		return true
	}
	_, ok := specialOperators[op]
	return ok
}

// CompileFilter translates a structured filter expression into a SQL
// predicate over the table's columns.
//
// A filter is a mapping of field name to condition:
//
//	{"topic": "go"}                         // implicit equality
//	{"year": {"$gte": 2020}}                // field operator
//	{"$or": [{"topic": "go"}, {"x": 1}]}    // logical combinator
//
// A multi-key mapping is the implicit AND of its field filters; field and
// operator keys can not be mixed at the same level. An empty or nil filter
// compiles to the empty predicate.
//
// Field names are validated as identifiers; values are interpolated into
// the predicate using SQL literal syntax, so filter values are trusted
// input, not user-supplied raw text.
func CompileFilter(filter map[string]any) (string, error) {
	if len(filter) == 0 {
		return "", nil
	}

	if len(filter) == 1 {
		var key string
		var value any
		for k, v := range filter {
			key, value = k, v
		}

		if !strings.HasPrefix(key, "$") {
			return compileFieldFilter(key, value)
		}

		// The only operators allowed at the top of a clause are the
		// logical combinators.
		op := strings.ToLower(key)
		if _, ok := logicalOperators[op]; !ok {
			return "", fmt.Errorf("%w: expected $and, $or or $not but got %q", ErrMalformedFilter, key)
		}

		if op == "$not" {
			return compileNot(value)
		}
		return compileConjunction(strings.ToUpper(op[1:]), value)
	}

	// Multiple keys: all of them have to be fields, AND-ed together.
	clauses := make([]string, 0, len(filter))
	for _, key := range sortedKeys(filter) {
		if strings.HasPrefix(key, "$") {
			return "", fmt.Errorf("%w: expected a field but got operator %q", ErrMalformedFilter, key)
		}
		clause, err := compileFieldFilter(key, filter[key])
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	return "(" + strings.Join(clauses, " AND ") + ")", nil
}

func compileConjunction(sqlOp string, value any) (string, error) {
	items, ok := value.([]map[string]any)
	if !ok {
		generic, isSlice := value.([]any)
		if !isSlice {
			return "", fmt.Errorf("%w: expected a list for $%s but got %T", ErrMalformedFilter, strings.ToLower(sqlOp), value)
		}
		items = make([]map[string]any, 0, len(generic))
		for _, el := range generic {
			m, isMap := el.(map[string]any)
			if !isMap {
				return "", fmt.Errorf("%w: expected a mapping inside $%s but got %T", ErrMalformedFilter, strings.ToLower(sqlOp), el)
			}
			items = append(items, m)
		}
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%w: empty $%s", ErrMalformedFilter, strings.ToLower(sqlOp))
	}

	clauses := make([]string, 0, len(items))
	for _, item := range items {
		clause, err := CompileFilter(item)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return "(" + strings.Join(clauses, " "+sqlOp+" ") + ")", nil
}

func compileNot(value any) (string, error) {
	switch v := value.(type) {
	case map[string]any:
		inner, err := CompileFilter(v)
		if err != nil {
			return "", err
		}
		return "(NOT " + inner + ")", nil
	case []any, []map[string]any:
		// A list under $not negates each element and ANDs the negations.
		items, err := asFilterList(v)
		if err != nil {
			return "", err
		}
		if len(items) == 0 {
			return "", fmt.Errorf("%w: empty $not", ErrMalformedFilter)
		}
		clauses := make([]string, 0, len(items))
		for _, item := range items {
			inner, err := CompileFilter(item)
			if err != nil {
				return "", err
			}
			clauses = append(clauses, "NOT "+inner)
		}
		return "(" + strings.Join(clauses, " AND ") + ")", nil
	default:
		return "", fmt.Errorf("%w: expected a mapping or a list for $not but got %T", ErrMalformedFilter, value)
	}
}

func asFilterList(value any) ([]map[string]any, error) {
	switch v := value.(type) {
	case []map[string]any:
		return v, nil
	case []any:
		items := make([]map[string]any, 0, len(v))
		for _, el := range v {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: expected a mapping but got %T", ErrMalformedFilter, el)
			}
			items = append(items, m)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%w: expected a list but got %T", ErrMalformedFilter, value)
	}
}

// compileFieldFilter builds the predicate for a single field. A plain value
// is an equality filter; a single-entry mapping is {operator: value}.
func compileFieldFilter(field string, value any) (string, error) {
	if strings.HasPrefix(field, "$") {
		return "", fmt.Errorf("%w: expected a field but got operator %q", ErrMalformedFilter, field)
	}
	if !isIdentifier(field) {
		return "", fmt.Errorf("%w: invalid field name %q", ErrMalformedFilter, field)
	}

	operator := "$eq"
	filterValue := value
	if spec, ok := value.(map[string]any); ok {
		if len(spec) != 1 {
			return "", fmt.Errorf("%w: expected a single {operator: value} entry for field %q but got %d keys", ErrMalformedFilter, field, len(spec))
		}
		for op, v := range spec {
			operator, filterValue = op, v
		}
		if !isSupportedOperator(operator) {
			return "", fmt.Errorf("%w: unsupported operator %q", ErrMalformedFilter, operator)
		}
	}

	if native, ok := comparisonOperators[operator]; ok {
		literal, err := formatLiteral(filterValue)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", field, native, literal), nil
	}

	if native, ok := textOperators[operator]; ok {
		pattern, ok := filterValue.(string)
		if !ok {
			return "", fmt.Errorf("%w: %s expects a string pattern, got %T", ErrMalformedFilter, operator, filterValue)
		}
		return fmt.Sprintf("(%s %s %s)", field, native, quoteString(pattern)), nil
	}

	switch operator {
	case "$between":
		bounds, err := scalarList(filterValue)
		if err != nil || len(bounds) != 2 {
			return "", fmt.Errorf("%w: $between expects a [low, high] pair", ErrMalformedFilter)
		}
		low, err := formatLiteral(bounds[0])
		if err != nil {
			return "", err
		}
		high, err := formatLiteral(bounds[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s BETWEEN %s AND %s)", field, low, high), nil

	case "$in", "$nin":
		values, err := scalarList(filterValue)
		if err != nil {
			return "", fmt.Errorf("%w: %s expects a list of scalars", ErrMalformedFilter, operator)
		}
		literals := make([]string, 0, len(values))
		for _, v := range values {
			// Booleans coerce to integers in membership tests and would
			// silently misbehave, so they are rejected.
			if _, isBool := v.(bool); isBool {
				return "", fmt.Errorf("%w: boolean values are not supported inside %s", ErrMalformedFilter, operator)
			}
			literal, err := formatLiteral(v)
			if err != nil {
				return "", err
			}
			literals = append(literals, literal)
		}
		native := "IN"
		if operator == "$nin" {
			native = "NOT IN"
		}
		return fmt.Sprintf("(%s %s (%s))", field, native, strings.Join(literals, ", ")), nil

	case "$exists":
		exists, ok := filterValue.(bool)
		if !ok {
			return "", fmt.Errorf("%w: $exists expects a boolean, got %T", ErrMalformedFilter, filterValue)
		}
		if exists {
			return fmt.Sprintf("(%s IS NOT NULL)", field), nil
		}
		return fmt.Sprintf("(%s IS NULL)", field), nil
	}

	return "", fmt.Errorf("%w: unsupported operator %q", ErrMalformedFilter, operator)
}

// formatLiteral renders a scalar as a SQL literal: strings quoted, numbers
// and booleans inlined.
func formatLiteral(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return quoteString(val), nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	case float32:
		return formatFloat(float64(val)), nil
	case float64:
		return formatFloat(val), nil
	default:
		return "", fmt.Errorf("%w: unsupported literal type %T", ErrMalformedFilter, v)
	}
}

func formatFloat(f float64) string {
	// %v keeps integral floats compact (3 not 3.000000).
	return fmt.Sprintf("%v", f)
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// scalarList normalizes the supported slice shapes into []any.
func scalarList(v any) ([]any, error) {
	switch vals := v.(type) {
	case []any:
		return vals, nil
	case []string:
		out := make([]any, len(vals))
		for i, s := range vals {
			out[i] = s
		}
		return out, nil
	case []int:
		out := make([]any, len(vals))
		for i, n := range vals {
			out[i] = n
		}
		return out, nil
	case []int64:
		out := make([]any, len(vals))
		for i, n := range vals {
			out[i] = n
		}
		return out, nil
	case []float64:
		out := make([]any, len(vals))
		for i, f := range vals {
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list, got %T", ErrMalformedFilter, v)
	}
}

// isIdentifier reports whether s is a bare SQL identifier:
// [A-Za-z_][A-Za-z0-9_]*.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// sortedKeys gives multi-key filters a deterministic compile order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
