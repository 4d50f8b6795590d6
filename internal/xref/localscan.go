package xref

import "fmt"

// SymbolFilter optionally vetoes a Local Scanner symbol promotion
// before it is added to the module's symbol map. A nil filter promotes
// every candidate.
type SymbolFilter func(module ModuleKind, pointer Address, kind SectionKind) bool

// LocalScanner runs the Local Pointer Scanner against one module in
// isolation.
type LocalScanner struct {
	NamePrefix string // default "data_"
	Filter     SymbolFilter

	Warnf func(format string, args ...any) // optional, for soft diagnostics
}

// NewLocalScanner returns a scanner with the default name prefix.
func NewLocalScanner() *LocalScanner {
	return &LocalScanner{NamePrefix: "data_"}
}

func (s *LocalScanner) prefix() string {
	if s.NamePrefix == "" {
		return "data_"
	}
	return s.NamePrefix
}

func (s *LocalScanner) warnf(format string, args ...any) {
	if s.Warnf != nil {
		s.Warnf(format, args...)
	}
}

// ScanModule scans every function's pool constants and every Data
// section's raw words of m, mutating m.Symbols and returning the
// relocations discovered. Apart from the external labels the
// Cross-Module Resolver adds, this is the only mutator of a module's own
// symbol map.
func (s *LocalScanner) ScanModule(m *Module) ([]Relocation, error) {
	var relocs []Relocation

	for _, section := range m.Sections.Sections() {
		if section.Kind != SectionCode {
			continue
		}
		for _, fn := range section.OrderedFunctions() {
			r, err := s.scanFunctionPools(m, fn)
			if err != nil {
				return nil, err
			}
			relocs = append(relocs, r...)
		}
	}

	for _, section := range m.Sections.Sections() {
		if section.Kind != SectionData {
			continue
		}
		r, err := s.scanDataSection(m, section)
		if err != nil {
			return nil, err
		}
		relocs = append(relocs, r...)
	}

	return relocs, nil
}

// scanFunctionPools promotes pointer-shaped literal-pool constants
// found inside one function into symbols.
func (s *LocalScanner) scanFunctionPools(m *Module, fn *Function) ([]Relocation, error) {
	var relocs []Relocation

	for _, pool := range fn.Pools {
		pointer := Address(pool.Value)

		_, section, ok := m.Sections.GetByContainedAddress(pointer)
		if !ok {
			continue
		}

		if section.Kind == SectionCode && m.Symbols.GetFunction(pointer.Func()) != nil {
			relocs = append(relocs, NewLoadRelocation(pool.Address, pointer, 0, RelocationModule{Kind: DestCurrent}))
			continue
		}

		r, err := s.addSymbolFromPointer(m, section, pool.Address, pointer)
		if err != nil {
			return nil, err
		}
		relocs = append(relocs, r...)
	}

	return relocs, nil
}

// scanDataSection promotes pointer-shaped words found in a Data
// section into symbols.
func (s *LocalScanner) scanDataSection(m *Module, section *Section) ([]Relocation, error) {
	words, err := section.IterWords(m.Code, m.Base)
	if err != nil {
		return nil, err
	}

	var relocs []Relocation
	for _, word := range words {
		pointer := Address(word.Value)

		_, destSection, ok := m.Sections.GetByContainedAddress(pointer)
		if !ok {
			continue
		}

		r, err := s.addSymbolFromPointer(m, destSection, word.Address, pointer)
		if err != nil {
			return nil, err
		}
		relocs = append(relocs, r...)
	}
	return relocs, nil
}

// addSymbolFromPointer promotes one local pointer into a symbol,
// branching on the destination section's kind.
func (s *LocalScanner) addSymbolFromPointer(m *Module, destSection *Section, site, pointer Address) ([]Relocation, error) {
	if s.Filter != nil && !s.Filter(m.Kind, pointer, destSection.Kind) {
		return nil, nil
	}

	current := RelocationModule{Kind: DestCurrent}

	switch destSection.Kind {
	case SectionCode:
		if m.Symbols.GetFunction(pointer.Func()) == nil {
			return nil, nil
		}
		return []Relocation{NewLoadRelocation(site, pointer, 0, current)}, nil

	case SectionData:
		name := fmt.Sprintf("%s%08x", s.prefix(), uint32(pointer))
		if err := m.Symbols.AddData(name, pointer, DataAny); err != nil {
			return nil, err
		}
		return []Relocation{NewLoadRelocation(site, pointer, 0, current)}, nil

	case SectionBss:
		name := fmt.Sprintf("%s%08x", s.prefix(), uint32(pointer))
		if err := m.Symbols.AddBss(name, pointer, 0, false); err != nil {
			return nil, err
		}
		return []Relocation{NewLoadRelocation(site, pointer, 0, current)}, nil
	}

	return nil, nil
}
