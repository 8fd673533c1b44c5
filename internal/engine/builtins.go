package engine

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

type builtinFunc func(r *run, pos ir.Pos, args []ir.Value) (ir.Value, error)

// builtins implements every name in ir.Builtins. The compiler has already
// checked argument counts against ir.Builtins.
var builtins map[string]builtinFunc

func init() {
	builtins = map[string]builtinFunc{
		"print":     builtinPrint(false),
		"println":   builtinPrint(true),
		"assert":    builtinAssert,
		"assert_eq": builtinAssertEq,
		"len":       builtinLen,
		"str":       builtinStr,
	}
}

// Display renders a value the way print shows it: strings without quotes,
// everything else in its literal form.
func Display(v ir.Value) string {
	if s, ok := v.(ir.Str); ok {
		return string(s)
	}
	return v.String()
}

func builtinPrint(newline bool) builtinFunc {
	return func(r *run, pos ir.Pos, args []ir.Value) (ir.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = Display(a)
		}
		text := strings.Join(parts, " ")
		if newline {
			text += "\n"
		}
		if _, err := io.WriteString(r.engine.out, text); err != nil {
			return nil, fmt.Errorf("print at %s: %w", pos, err)
		}
		return ir.Unit{}, nil
	}
}

func builtinAssert(_ *run, pos ir.Pos, args []ir.Value) (ir.Value, error) {
	if err := checkArgs(pos, "assert", args); err != nil {
		return nil, err
	}
	b, ok := args[0].(ir.Bool)
	if !ok {
		return nil, typeMismatch(pos, "bool", args[0])
	}
	if !b {
		msg := "assertion failed"
		if len(args) == 2 {
			msg += ": " + Display(args[1])
		}
		return nil, newRuntimeError(ErrCodeAssertionFailed, pos, "%s", msg)
	}
	return ir.Unit{}, nil
}

func builtinAssertEq(_ *run, pos ir.Pos, args []ir.Value) (ir.Value, error) {
	if err := checkArgs(pos, "assert_eq", args); err != nil {
		return nil, err
	}
	if !ir.Equal(args[0], args[1]) {
		msg := fmt.Sprintf("assertion failed: %s != %s", args[0], args[1])
		if len(args) == 3 {
			msg += ": " + Display(args[2])
		}
		return nil, &RuntimeError{
			Code:    ErrCodeAssertionFailed,
			Message: msg,
			Pos:     pos,
			Details: map[string]string{"left": args[0].String(), "right": args[1].String()},
		}
	}
	return ir.Unit{}, nil
}

func builtinLen(_ *run, pos ir.Pos, args []ir.Value) (ir.Value, error) {
	if err := checkArgs(pos, "len", args); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case ir.Str:
		return ir.Int(utf8.RuneCountInString(string(v))), nil
	case ir.Tuple:
		return ir.Int(len(v)), nil
	case ir.Unit:
		return ir.Int(0), nil
	}
	return nil, typeMismatch(pos, "string or tuple", args[0])
}

func builtinStr(_ *run, pos ir.Pos, args []ir.Value) (ir.Value, error) {
	if err := checkArgs(pos, "str", args); err != nil {
		return nil, err
	}
	return ir.Str(Display(args[0])), nil
}

func checkArgs(pos ir.Pos, name string, args []ir.Value) error {
	if !ir.Builtins[name].Accepts(len(args)) {
		return newRuntimeError(ErrCodeTypeMismatch, pos, "%s does not accept %d argument(s)", name, len(args))
	}
	return nil
}
