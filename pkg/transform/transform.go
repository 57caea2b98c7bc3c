package transform

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Type identifies how a mapping rule converts source values into the target field
type Type string

const (
	TypeDirect  Type = "DIRECT"
	TypeFormula Type = "FORMULA"
	TypeLookup  Type = "LOOKUP"
	TypeConcat  Type = "CONCAT"
	TypeSplit   Type = "SPLIT"
	// TypeCustom exists as a configuration value only. It is rejected by
	// validation and has no handler, so it can never reach execution.
	TypeCustom Type = "CUSTOM"
)

// Params is the variant parameter bag of a rule; each handler owns its shape
type Params map[string]interface{}

// Context carries the full source row so transforms can read sibling fields
type Context struct {
	Row         map[string]interface{}
	SourceField string
	TargetField string

	// LookupTable resolves a named reference table when a LOOKUP rule
	// uses table_name instead of an inline table. Optional.
	LookupTable func(name string) (map[string]string, bool)
}

// Handler is one sub-evaluator: an independent validator plus executor
type Handler interface {
	Validate(params Params) error
	Execute(value interface{}, params Params, ctx Context) (interface{}, error)
}

var handlers = map[Type]Handler{
	TypeDirect:  directHandler{},
	TypeFormula: formulaHandler{},
	TypeLookup:  lookupHandler{},
	TypeConcat:  concatHandler{},
	TypeSplit:   splitHandler{},
}

// IsSupported reports whether the transform type has a runtime handler
func IsSupported(t Type) bool {
	_, ok := handlers[t]
	return ok
}

// ValidateParams checks a rule's parameters before any document is processed
func ValidateParams(t Type, params Params) error {
	if t == TypeCustom {
		return fmt.Errorf("custom transforms are disabled")
	}
	h, ok := handlers[t]
	if !ok {
		return fmt.Errorf("unsupported transform type: %s", t)
	}
	return h.Validate(params)
}

// Execute converts one source value into one target value
func Execute(value interface{}, t Type, params Params, ctx Context) (interface{}, error) {
	h, ok := handlers[t]
	if !ok {
		return nil, fmt.Errorf("unsupported transform type: %s", t)
	}
	return h.Execute(value, params, ctx)
}

// directHandler returns the input unchanged, any shape
type directHandler struct{}

func (directHandler) Validate(params Params) error {
	if len(params) > 0 {
		return fmt.Errorf("direct transform takes no parameters")
	}
	return nil
}

func (directHandler) Execute(value interface{}, _ Params, _ Context) (interface{}, error) {
	return value, nil
}

// lookupHandler maps the stringified input through a reference table
type lookupHandler struct{}

func (lookupHandler) Validate(params Params) error {
	table, hasTable := mapParam(params["table"])
	tableName, hasName := params["table_name"].(string)

	if hasName && tableName != "" {
		return nil
	}
	if !hasTable || len(table) == 0 {
		return fmt.Errorf("lookup table must not be empty")
	}
	return nil
}

func (lookupHandler) Execute(value interface{}, params Params, ctx Context) (interface{}, error) {
	key := Stringify(value)

	if tableName, ok := params["table_name"].(string); ok && tableName != "" {
		if ctx.LookupTable == nil {
			return nil, fmt.Errorf("no resolver for lookup table %q", tableName)
		}
		table, ok := ctx.LookupTable(tableName)
		if !ok {
			return nil, fmt.Errorf("lookup table %q not found", tableName)
		}
		if mapped, ok := table[key]; ok {
			return mapped, nil
		}
		return lookupMiss(value, params), nil
	}

	table, _ := mapParam(params["table"])
	if mapped, ok := table[key]; ok {
		return mapped, nil
	}
	return lookupMiss(value, params), nil
}

func lookupMiss(value interface{}, params Params) interface{} {
	if def, ok := params["default"]; ok {
		return def
	}
	// No default configured: pass the original value through unchanged
	return value
}

// concatHandler joins configured row fields with a separator
type concatHandler struct{}

func (concatHandler) Validate(params Params) error {
	fields, err := stringSlice(params["fields"])
	if err != nil || len(fields) == 0 {
		return fmt.Errorf("concat requires a non-empty fields list")
	}
	return nil
}

func (concatHandler) Execute(_ interface{}, params Params, ctx Context) (interface{}, error) {
	fields, err := stringSlice(params["fields"])
	if err != nil {
		return nil, err
	}
	separator, _ := params["separator"].(string)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		// Missing fields coerce to empty string
		parts = append(parts, Stringify(ctx.Row[f]))
	}
	return strings.Join(parts, separator), nil
}

// splitHandler splits the stringified input and picks one part
type splitHandler struct{}

func (splitHandler) Validate(params Params) error {
	separator, ok := params["separator"].(string)
	if !ok || separator == "" {
		return fmt.Errorf("split requires a non-empty separator")
	}
	if _, ok := numericParam(params["index"]); !ok {
		return fmt.Errorf("split requires an integer index")
	}
	return nil
}

func (splitHandler) Execute(value interface{}, params Params, _ Context) (interface{}, error) {
	separator, _ := params["separator"].(string)
	idx, _ := numericParam(params["index"])

	parts := strings.Split(Stringify(value), separator)

	// Negative indices count from the end
	if idx < 0 {
		idx += len(parts)
	}
	if idx < 0 || idx >= len(parts) {
		return "", nil
	}
	return parts[idx], nil
}

// Stringify coerces any value to its string key form; nil becomes ""
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// mapParam reads a string-keyed map parameter. Decoders hand these back
// under their own named map types (bson.M, primitive.M, Params itself),
// so plain type assertions are not enough.
func mapParam(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case map[string]interface{}:
		return v, true
	case Params:
		return v, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]interface{}, rv.Len())
	for iter := rv.MapRange(); iter.Next(); {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// stringSlice reads a list parameter, including named slice types such as
// the BSON driver's primitive.A.
func stringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf("expected string list")
	case []string:
		return v, nil
	case []interface{}:
		return interfaceStrings(v)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected string list")
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return interfaceStrings(out)
}

func interfaceStrings(items []interface{}) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected string list")
		}
		out = append(out, s)
	}
	return out, nil
}

// numericParam accepts the integer encodings JSON and BSON decoding produce
func numericParam(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
