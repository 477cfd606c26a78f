package infer

import "github.com/mqlang/mq/pkg/typesys"

// builtinScheme returns the declared type scheme for a built-in function
// name, mirroring pkg/eval's runtime registry (spec.md §4.5: "Built-ins may
// declare explicit schemes"). Grounded on the teacher's split between
// internal/builtins (signatures referenced by the semantic pass) and
// internal/interp/builtins (the runtime dispatch table) — mq keeps the
// same two-registry shape, one per phase.
func builtinScheme(name string, fresh typesys.Fresher) (*typesys.Scheme, bool) {
	switch name {
	case "len":
		a := fresh.Fresh()
		return typesys.NewScheme([]typesys.TypeVariable{a}, typesys.NewFunction(typesys.TNumber, typesys.NewArray(a))), true
	case "to_text":
		return typesys.NewScheme(nil, typesys.NewFunction(typesys.TString, typesys.TMarkdown)), true
	case "to_number":
		return typesys.NewScheme(nil, typesys.NewFunction(typesys.TNumber, typesys.TString)), true
	case "to_string":
		a := fresh.Fresh()
		return typesys.NewScheme([]typesys.TypeVariable{a}, typesys.NewFunction(typesys.TString, a)), true
	case "keys":
		a := fresh.Fresh()
		return typesys.NewScheme([]typesys.TypeVariable{a}, typesys.NewFunction(typesys.NewArray(typesys.TString), typesys.NewDict(a))), true
	case "values":
		a := fresh.Fresh()
		return typesys.NewScheme([]typesys.TypeVariable{a}, typesys.NewFunction(typesys.NewArray(a), typesys.NewDict(a))), true
	case "push":
		a := fresh.Fresh()
		return typesys.NewScheme([]typesys.TypeVariable{a}, typesys.NewFunction(typesys.NewArray(a), typesys.NewArray(a), a)), true
	case "snake_case", "camel_case", "kebab_case", "pascal_case", "upper", "lower", "trim":
		return typesys.NewScheme(nil, typesys.NewFunction(typesys.TString, typesys.TString)), true
	case "halt":
		a := fresh.Fresh()
		return typesys.NewScheme([]typesys.TypeVariable{a}, typesys.NewFunction(a, typesys.TString)), true
	}
	return nil, false
}
