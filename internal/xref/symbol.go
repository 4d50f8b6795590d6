package xref

import "fmt"

// SymbolDataKind distinguishes a data symbol's provenance. "Any" marks a
// symbol promoted speculatively from a raw word value rather than known
// precisely from disassembly.
type SymbolDataKind int

const (
	DataAny SymbolDataKind = iota
	DataKnown
)

// SymbolRecord is one entry in a Symbol Map: a function, a branch target
// inside another function's body, a data symbol, or a bss symbol.
type SymbolRecord struct {
	Type SymbolRecordType

	Addr  Address
	Thumb bool // Function / ExternalLabel

	Name string // Function / Data / Bss
	Size uint32 // Function (byte length) / Bss (if known)
	HasSize bool // Bss size is optional

	DataKind SymbolDataKind // Data only
}

// SymbolRecordType discriminates the four SymbolRecord shapes a module's
// symbol map can hold.
type SymbolRecordType int

const (
	RecordFunction SymbolRecordType = iota
	RecordExternalLabel
	RecordData
	RecordBss
)

// SymbolMap is a module's mutable address -> symbol record mapping.
type SymbolMap struct {
	byAddr map[Address]*SymbolRecord
}

// NewSymbolMap creates an empty symbol map.
func NewSymbolMap() *SymbolMap {
	return &SymbolMap{byAddr: make(map[Address]*SymbolRecord)}
}

// AddFunction registers a function symbol at addr, typically called
// while building the map from initial disassembly output. It is not
// idempotence-checked the way AddData/AddBss are: the disassembler is
// the sole source of function symbols.
func (m *SymbolMap) AddFunction(addr Address, name string, thumb bool, size uint32) {
	m.byAddr[addr] = &SymbolRecord{Type: RecordFunction, Addr: addr, Name: name, Thumb: thumb, Size: size}
}

// GetFunction returns the function symbol at the exact address (Thumb
// bit already cleared by the caller), or nil.
func (m *SymbolMap) GetFunction(addr Address) *SymbolRecord {
	rec, ok := m.byAddr[addr]
	if !ok || rec.Type != RecordFunction {
		return nil
	}
	return rec
}

// GetFunctionContaining returns the function symbol whose [Addr, Addr+Size)
// range contains addr, or nil. Linear scan: symbol maps are small (one per
// module) and this is only called from the Cross-Module Resolver, not in
// a hot per-word loop.
func (m *SymbolMap) GetFunctionContaining(addr Address) *SymbolRecord {
	for _, rec := range m.byAddr {
		if rec.Type != RecordFunction {
			continue
		}
		if addr >= rec.Addr && addr < rec.Addr.Add(rec.Size) {
			return rec
		}
	}
	return nil
}

// AddData idempotently adds a data symbol. Adding at an address that
// already has a compatible data symbol is a no-op; a conflicting kind or
// an existing non-data symbol at the same address is a SymbolConflict.
func (m *SymbolMap) AddData(name string, addr Address, kind SymbolDataKind) error {
	if existing, ok := m.byAddr[addr]; ok {
		if existing.Type != RecordData {
			return fmt.Errorf("%w: data symbol at %s conflicts with existing %v", ErrSymbolConflict, addr, existing.Type)
		}
		if existing.DataKind != kind {
			return fmt.Errorf("%w: data symbol at %s conflicts in kind", ErrSymbolConflict, addr)
		}
		return nil
	}
	m.byAddr[addr] = &SymbolRecord{Type: RecordData, Addr: addr, Name: name, DataKind: kind}
	return nil
}

// AddBss idempotently adds a bss symbol, mirroring AddData's rules.
func (m *SymbolMap) AddBss(name string, addr Address, size uint32, hasSize bool) error {
	if existing, ok := m.byAddr[addr]; ok {
		if existing.Type != RecordBss {
			return fmt.Errorf("%w: bss symbol at %s conflicts with existing %v", ErrSymbolConflict, addr, existing.Type)
		}
		return nil
	}
	m.byAddr[addr] = &SymbolRecord{Type: RecordBss, Addr: addr, Name: name, Size: size, HasSize: hasSize}
	return nil
}

// AddExternalLabel records a branch target inside another function's
// body. A no-op when addr is already a known function start.
func (m *SymbolMap) AddExternalLabel(addr Address, thumb bool) error {
	if existing, ok := m.byAddr[addr]; ok {
		if existing.Type == RecordFunction {
			return nil
		}
		if existing.Type == RecordExternalLabel {
			return nil
		}
		return fmt.Errorf("%w: external label at %s conflicts with existing %v", ErrSymbolConflict, addr, existing.Type)
	}
	m.byAddr[addr] = &SymbolRecord{Type: RecordExternalLabel, Addr: addr, Thumb: thumb}
	return nil
}

// All returns every symbol record in the map, for serialization.
func (m *SymbolMap) All() []*SymbolRecord {
	out := make([]*SymbolRecord, 0, len(m.byAddr))
	for _, rec := range m.byAddr {
		out = append(out, rec)
	}
	return out
}

// SymbolMaps is the shared set of per-module-kind symbol maps the
// Cross-Module Resolver reads from when following a local call into a
// known function.
type SymbolMaps struct {
	byKind map[string]*SymbolMap
}

// NewSymbolMaps creates an empty set.
func NewSymbolMaps() *SymbolMaps {
	return &SymbolMaps{byKind: make(map[string]*SymbolMap)}
}

// Get returns the symbol map for kind, creating an empty one if absent.
func (s *SymbolMaps) Get(kind ModuleKind) *SymbolMap {
	key := kind.String()
	m, ok := s.byKind[key]
	if !ok {
		m = NewSymbolMap()
		s.byKind[key] = m
	}
	return m
}

// Set installs m as the symbol map for kind.
func (s *SymbolMaps) Set(kind ModuleKind, m *SymbolMap) {
	s.byKind[kind.String()] = m
}
