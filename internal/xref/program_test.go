package xref

import (
	"reflect"
	"testing"
)

func buildDeterminismFixture() (*Module, []*Module, []*Module) {
	mainFn := &Function{Start: 0x02001000, End: 0x02001010, Thumb: false, Pools: []PoolConstant{
		{Address: 0x02001004, Value: 0x02005000},
	}, Calls: []CallSite{
		{SiteAddress: 0x02001008, TargetAddress: 0x02100001, TargetThumb: true},
	}}
	mainCode := codeSection(0x02000000, 0x02002000, mainFn)
	mainData := dataSection(0x02005000, 0x02006000)
	main := buildModule(Main(), "main", 0x02000000, make([]byte, 0x6000), []*Section{mainCode, mainData})

	ovFn := &Function{Start: 0x02100000, End: 0x02100010, Thumb: true}
	ovCode := codeSection(0x02100000, 0x02101000, ovFn)
	ov := buildModule(Overlay(1), "ov1", 0x02100000, make([]byte, 0x1000), []*Section{ovCode})

	return main, []*Module{ov}, nil
}

// P6: running the full pipeline twice on byte-identical inputs yields
// byte-identical outputs.
func TestProgramAnalyzeIsDeterministic(t *testing.T) {
	runOnce := func() map[string][]Relocation {
		main, overlays, autoloads := buildDeterminismFixture()
		symbolMaps := NewSymbolMaps()
		p := NewProgram(main, overlays, autoloads, symbolMaps)
		if err := p.Analyze(); err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		out := make(map[string][]Relocation)
		for kind, result := range p.Results {
			out[kind.String()] = result.Relocations
		}
		return out
	}

	a := runOnce()
	b := runOnce()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two runs over identical input diverged:\n%+v\n%+v", a, b)
	}
}

func TestProgramEndToEnd(t *testing.T) {
	main, overlays, autoloads := buildDeterminismFixture()
	symbolMaps := NewSymbolMaps()
	p := NewProgram(main, overlays, autoloads, symbolMaps)
	if err := p.Analyze(); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	mainResult := p.Results[Main()]
	if mainResult == nil {
		t.Fatalf("expected a result for the main module")
	}

	var sawLoad, sawCall bool
	for _, r := range mainResult.Relocations {
		switch r.Kind {
		case RelocLoad:
			sawLoad = true
		case RelocCall:
			sawCall = true
			if !r.Destination.Equal(RelocationModule{Kind: DestOverlay, OverlayID: 1}) {
				t.Fatalf("expected call to resolve to overlay 1, got %v", r.Destination)
			}
		}
	}
	if !sawLoad {
		t.Fatalf("expected the local pool load relocation from the Local Scanner pass")
	}
	if !sawCall {
		t.Fatalf("expected the cross-module call relocation")
	}
}
