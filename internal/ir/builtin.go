package ir

import "sort"

// Arity bounds the argument count of a builtin. Max < 0 means variadic.
type Arity struct {
	Min int
	Max int
}

// Accepts reports whether n arguments are allowed.
func (a Arity) Accepts(n int) bool {
	return n >= a.Min && (a.Max < 0 || n <= a.Max)
}

// Builtins lists the functions every program can call without declaring them.
var Builtins = map[string]Arity{
	"print":     {Min: 0, Max: -1},
	"println":   {Min: 0, Max: -1},
	"assert":    {Min: 1, Max: 2},
	"assert_eq": {Min: 2, Max: 3},
	"len":       {Min: 1, Max: 1},
	"str":       {Min: 1, Max: 1},
}

// BuiltinNames returns the builtin names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(Builtins))
	for name := range Builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
