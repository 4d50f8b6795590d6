// Package script compiles an optional user-supplied JavaScript
// predicate into an xref.SymbolFilter, the veto hook the Local Pointer
// Scanner consults before promoting a raw pointer to a symbol. It hosts
// the dop251/goja embedded JavaScript engine as the project's chosen
// scripting layer.
package script

import (
	"fmt"
	"os"

	"github.com/dop251/goja"

	"github.com/zboralski/dsdelink/internal/xref"
)

// Filter wraps a compiled goja program exposing a `shouldPromote`
// function with the signature
// (module string, pointer number, section string) -> bool.
type Filter struct {
	vm      *goja.Runtime
	shouldF goja.Callable
}

// Compile reads path and compiles its `shouldPromote` function.
func Compile(path string) (*Filter, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter script %s: %w", path, err)
	}

	vm := goja.New()
	if _, err := vm.RunScript(path, string(src)); err != nil {
		return nil, fmt.Errorf("compile filter script %s: %w", path, err)
	}

	fnVal := vm.Get("shouldPromote")
	if fnVal == nil || goja.IsUndefined(fnVal) {
		return nil, fmt.Errorf("filter script %s does not define shouldPromote", path)
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, fmt.Errorf("filter script %s: shouldPromote is not a function", path)
	}

	return &Filter{vm: vm, shouldF: fn}, nil
}

// AsSymbolFilter adapts f into the xref.SymbolFilter predicate the
// Local Pointer Scanner accepts. The scanner vetoes the promotion when
// the filter returns false; a script error is treated as "allow", so a
// broken script degrades to the scanner's default behavior rather than
// aborting the run.
func (f *Filter) AsSymbolFilter() xref.SymbolFilter {
	return func(module xref.ModuleKind, pointer xref.Address, kind xref.SectionKind) bool {
		result, err := f.shouldF(goja.Undefined(),
			f.vm.ToValue(module.String()),
			f.vm.ToValue(uint32(pointer)),
			f.vm.ToValue(kind.String()),
		)
		if err != nil {
			return true
		}
		return result.ToBoolean()
	}
}
