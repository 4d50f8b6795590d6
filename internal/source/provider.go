// Package source declares the narrow external interfaces spec.md §1 and
// §6 place the ROM container parser and instruction disassembler
// behind. The core analysis in internal/xref never imports this
// package; cmd/dsdelink turns the descriptors of the manifest-backed
// ModuleProvider (internal/source/manifest) into xref.Modules. No
// Disassembler implementation ships outside the tests.
package source

import "github.com/zboralski/dsdelink/internal/xref"

// ModuleDescriptor is what the ROM container parser yields for one
// module: its kind, base address, code bytes, and the section layout
// (with per-Code-section function listings) the disassembler already
// produced.
type ModuleDescriptor struct {
	Kind     xref.ModuleKind
	Name     string
	Base     xref.Address
	Code     []byte
	Sections []*xref.Section
}

// ModuleProvider yields the raw module set a de-linking run analyzes:
// one main executable, the overlays that share its address window, and
// the autoloads relocated to fixed TCM regions.
type ModuleProvider interface {
	Main() (ModuleDescriptor, error)
	Overlays() ([]ModuleDescriptor, error)
	Autoloads() ([]ModuleDescriptor, error)
}

// Disassembler is consumed only through this interface: the core never
// decodes raw instruction bytes itself (spec.md §1 lists disassembly as
// a deliberately out-of-scope external collaborator).
type Disassembler interface {
	// FunctionCalls returns every call site found inside the function
	// starting at addr, keyed by site address.
	FunctionCalls(code []byte, base xref.Address, addr xref.Address) (map[xref.Address]xref.CallSite, error)

	// PoolConstants returns every literal-pool word found inside the
	// function starting at addr.
	PoolConstants(code []byte, base xref.Address, addr xref.Address) ([]xref.PoolConstant, error)
}
