package xref

import "testing"

type recordingDiagnostics struct {
	warnings []string
}

func (d *recordingDiagnostics) Warn(category, message string, addr Address) {
	d.warnings = append(d.warnings, category+": "+message)
}

// A conditional call target must not be relocated, since the historical
// linker strips the condition code when rewriting it.
func TestResolverSkipsConditionalCall(t *testing.T) {
	fn := &Function{Start: 0x02001000, End: 0x02001010, Thumb: false, Calls: []CallSite{
		{SiteAddress: 0x02001100, TargetAddress: 0x02002000, TargetThumb: false, IsConditional: true},
	}}
	code := codeSection(0x02000000, 0x02003000, fn, &Function{Start: 0x02002000, End: 0x02002010})
	m := buildModule(Main(), "main", 0x02000000, make([]byte, 0x3000), []*Section{code})

	symbolMaps := NewSymbolMaps()
	symbolMaps.Get(m.Kind).AddFunction(0x02002000, "target", false, 0x10)
	symbolMaps.Get(m.Kind).AddFunction(0x02001000, "caller", false, 0x10)

	diag := &recordingDiagnostics{}
	resolver := &Resolver{Diagnostics: diag}
	result, err := resolver.Resolve([]*Module{m}, 0, symbolMaps)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(result.Relocations) != 0 {
		t.Fatalf("expected no relocation for a conditional call, got %+v", result.Relocations)
	}
	if len(diag.warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", diag.warnings)
	}
}

// A call landing in the middle of a known function should add an
// external label at the exact target address rather than reusing the
// enclosing function's symbol.
func TestResolverMidFunctionCall(t *testing.T) {
	caller := &Function{Start: 0x02001000, End: 0x02001010, Thumb: false, Calls: []CallSite{
		{SiteAddress: 0x02001200, TargetAddress: 0x02002008, TargetThumb: false, IsConditional: false},
	}}
	target := &Function{Start: 0x02002000, End: 0x02002020, Thumb: false}
	code := codeSection(0x02000000, 0x02003000, caller, target)
	m := buildModule(Main(), "main", 0x02000000, make([]byte, 0x3000), []*Section{code})

	symbolMaps := NewSymbolMaps()
	symbolMap := symbolMaps.Get(m.Kind)
	symbolMap.AddFunction(0x02002000, "g", false, 0x20)
	symbolMap.AddFunction(0x02001000, "f", false, 0x10)
	m.Symbols = symbolMap

	diag := &recordingDiagnostics{}
	resolver := &Resolver{Diagnostics: diag}
	result, err := resolver.Resolve([]*Module{m}, 0, symbolMaps)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(result.Relocations) != 1 {
		t.Fatalf("expected 1 relocation, got %+v", result.Relocations)
	}
	r := result.Relocations[0]
	if r.Kind != RelocCall || r.SiteAddress != 0x02001200 || r.Target != 0x02002008 || !r.Destination.Equal(RelocationModule{Kind: DestCurrent}) {
		t.Fatalf("unexpected relocation: %+v", r)
	}
	if len(diag.warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", diag.warnings)
	}
	label := symbolMap.byAddr[0x02002008]
	if label == nil || label.Type != RecordExternalLabel {
		t.Fatalf("expected an external label at 0x02002008, got %+v", label)
	}
}

// Scenario 6 (first half): a non-local dangling call warns but emits a
// None relocation; contrast with a local dangling call (fatal).
func TestResolverNonLocalDanglingCallWarnsNone(t *testing.T) {
	caller := &Function{Start: 0x02001000, End: 0x02001010, Thumb: false, Calls: []CallSite{
		{SiteAddress: 0x02001000, TargetAddress: 0x02009000, TargetThumb: false, IsConditional: false},
	}}
	code := codeSection(0x02000000, 0x02002000, caller)
	m := buildModule(Main(), "main", 0x02000000, make([]byte, 0x2000), []*Section{code})

	symbolMaps := NewSymbolMaps()
	symbolMaps.Get(m.Kind).AddFunction(0x02001000, "f", false, 0x10)

	diag := &recordingDiagnostics{}
	resolver := &Resolver{Diagnostics: diag}
	result, err := resolver.Resolve([]*Module{m}, 0, symbolMaps)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(result.Relocations) != 1 || !result.Relocations[0].Destination.Equal(RelocationModule{Kind: DestNone}) {
		t.Fatalf("expected one relocation with None destination, got %+v", result.Relocations)
	}
	if len(diag.warnings) != 1 {
		t.Fatalf("expected one warning, got %v", diag.warnings)
	}
}

func TestResolverLocalDanglingCallIsFatal(t *testing.T) {
	caller := &Function{Start: 0x02001000, End: 0x02001010, Thumb: false, Calls: []CallSite{
		{SiteAddress: 0x02001000, TargetAddress: 0x02009000, TargetThumb: false, IsConditional: false},
	}}
	code := codeSection(0x02000000, 0x0200a000, caller) // 0x02009000 now falls inside the Code section
	m := buildModule(Main(), "main", 0x02000000, make([]byte, 0xa000), []*Section{code})

	symbolMaps := NewSymbolMaps()
	symbolMaps.Get(m.Kind).AddFunction(0x02001000, "f", false, 0x10)

	resolver := NewResolver()
	_, err := resolver.Resolve([]*Module{m}, 0, symbolMaps)
	if err == nil {
		t.Fatalf("expected DanglingCall error")
	}
}

// Scenario 4: ambiguous overlay pointer resolves to Any(ids).
func TestResolverAmbiguousOverlayPointer(t *testing.T) {
	mainCode := codeSection(0x02000000, 0x02002000)
	mainCodeBytes := make([]byte, 0x2000)
	main := buildModule(Main(), "main", 0x02000000, mainCodeBytes, []*Section{mainCode})

	ov3Fn := &Function{Start: 0x02100040, End: 0x02100060, Thumb: true}
	ov3Code := codeSection(0x02100000, 0x02101000, ov3Fn)
	ov3 := buildModule(Overlay(3), "ov3", 0x02100000, make([]byte, 0x1000), []*Section{ov3Code})

	ov4Fn := &Function{Start: 0x02100040, End: 0x02100060, Thumb: true}
	ov4Code := codeSection(0x02100000, 0x02101000, ov4Fn)
	ov4 := buildModule(Overlay(4), "ov4", 0x02100000, make([]byte, 0x1000), []*Section{ov4Code})

	// A pool constant in main pointing at the shared overlay address,
	// Thumb bit set (0x...41).
	mainFn := &Function{Start: 0x02001000, End: 0x02001010, Thumb: false, Pools: []PoolConstant{
		{Address: 0x02001300, Value: 0x02100041},
	}}
	mainCode.Functions[mainFn.Start] = mainFn

	symbolMaps := NewSymbolMaps()
	symbolMaps.Get(main.Kind).AddFunction(mainFn.Start, "mainfn", false, 0x10)

	resolver := NewResolver()
	result, err := resolver.Resolve([]*Module{main, ov3, ov4}, 0, symbolMaps)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(result.Relocations) != 1 {
		t.Fatalf("expected 1 relocation, got %+v", result.Relocations)
	}
	want := RelocationModule{Kind: DestAny, OverlayIDs: []int{3, 4}}
	if !result.Relocations[0].Destination.Equal(want) {
		t.Fatalf("expected destination %v, got %v", want, result.Relocations[0].Destination)
	}
	if len(result.ExternalSymbols) != 1 || len(result.ExternalSymbols[0].Candidates) != 2 {
		t.Fatalf("expected one external symbol with 2 candidates, got %+v", result.ExternalSymbols)
	}
}

// Scenario 5: Thumb mismatch drops the candidate.
func TestResolverThumbMismatchDropsCandidate(t *testing.T) {
	mainCode := codeSection(0x02000000, 0x02002000)
	main := buildModule(Main(), "main", 0x02000000, make([]byte, 0x2000), []*Section{mainCode})

	// Ov3 has an ARM (non-Thumb) function at 0x02100040.
	ov3Fn := &Function{Start: 0x02100040, End: 0x02100060, Thumb: false}
	ov3Code := codeSection(0x02100000, 0x02101000, ov3Fn)
	ov3 := buildModule(Overlay(3), "ov3", 0x02100000, make([]byte, 0x1000), []*Section{ov3Code})

	// Main's word is Thumb (0x...41).
	mainFn := &Function{Start: 0x02001000, End: 0x02001010, Thumb: false, Pools: []PoolConstant{
		{Address: 0x02001300, Value: 0x02100041},
	}}
	mainCode.Functions[mainFn.Start] = mainFn

	symbolMaps := NewSymbolMaps()
	symbolMaps.Get(main.Kind).AddFunction(mainFn.Start, "mainfn", false, 0x10)

	diag := &recordingDiagnostics{}
	resolver := &Resolver{Diagnostics: diag}
	result, err := resolver.Resolve([]*Module{main, ov3}, 0, symbolMaps)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(result.Relocations) != 0 {
		t.Fatalf("expected no relocation once the only candidate is dropped, got %+v", result.Relocations)
	}
}

func TestReduceDestinationAmbiguousMixFails(t *testing.T) {
	_, err := reduceDestination([]ModuleKind{Overlay(3), Main()})
	if err == nil {
		t.Fatalf("expected AmbiguousRelocation mixing overlay with main")
	}
}

func TestReduceDestinationSingleModule(t *testing.T) {
	dest, err := reduceDestination([]ModuleKind{Autoload(AutoloadItcm), Autoload(AutoloadItcm)})
	if err != nil {
		t.Fatalf("reduceDestination: %v", err)
	}
	if dest.Kind != DestAutoload || dest.Autoload != AutoloadItcm {
		t.Fatalf("unexpected destination: %+v", dest)
	}
}
