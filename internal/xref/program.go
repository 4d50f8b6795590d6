package xref

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Program owns the full module set for one processor's analysis run and
// drives the two-pass pipeline: Local Scanner for every module, then
// Cross-Module Resolver for every module.
//
// Grounded on original_source/src/cmd/init.rs's Init::run, which builds
// main + overlays + autoloads before calling analyze_cross_references.
type Program struct {
	Main      *Module
	Overlays  []*Module
	Autoloads []*Module

	SymbolMaps *SymbolMaps

	Scanner  *LocalScanner
	Resolver *Resolver

	Results map[ModuleKind]*RelocationResult
}

// NewProgram assembles a Program from already-analyzed modules (their
// Sections/Symbols already built by the module provider's initial
// disassembly pass).
func NewProgram(main *Module, overlays, autoloads []*Module, symbolMaps *SymbolMaps) *Program {
	return &Program{
		Main:       main,
		Overlays:   overlays,
		Autoloads:  autoloads,
		SymbolMaps: symbolMaps,
		Scanner:    NewLocalScanner(),
		Resolver:   NewResolver(),
		Results:    make(map[ModuleKind]*RelocationResult),
	}
}

// All returns every module, main first, then autoloads, then overlays.
// Order does not affect correctness (each module's Cross-Module
// Resolver only reads other modules' maps read-only) but is kept
// deterministic so output ordering is stable run to run.
func (p *Program) All() []*Module {
	all := make([]*Module, 0, 1+len(p.Overlays)+len(p.Autoloads))
	all = append(all, p.Main)
	all = append(all, p.Autoloads...)
	all = append(all, p.Overlays...)
	return all
}

// AnalyzeLocal runs the Local Pointer Scanner over every module in turn,
// populating each module's own symbol map. Must complete before
// AnalyzeCrossReferences: a resolver pass must never observe a partially
// populated symbol map.
func (p *Program) AnalyzeLocal() error {
	for _, m := range p.All() {
		p.SymbolMaps.Set(m.Kind, m.Symbols)
		localRelocs, err := p.Scanner.ScanModule(m)
		if err != nil {
			return fmt.Errorf("local scan of %s: %w", m.Kind, err)
		}
		p.Results[m.Kind] = &RelocationResult{Relocations: localRelocs}
	}
	return nil
}

// AnalyzeCrossReferences runs the Cross-Module Resolver for every
// module. These passes can run concurrently, since each only mutates
// its own module's symbol map (adding external labels) and every other
// module's maps are read-only by this point; AnalyzeLocal must have
// completed first.
func (p *Program) AnalyzeCrossReferences() error {
	modules := p.All()

	results := make([]*RelocationResult, len(modules))

	var g errgroup.Group
	for i := range modules {
		i := i
		g.Go(func() error {
			result, err := p.Resolver.Resolve(modules, i, p.SymbolMaps)
			if err != nil {
				return fmt.Errorf("cross-module resolve of %s: %w", modules[i].Kind, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, m := range modules {
		existing := p.Results[m.Kind]
		if existing == nil {
			existing = &RelocationResult{}
		}
		existing.Relocations = append(existing.Relocations, results[i].Relocations...)
		existing.ExternalSymbols = append(existing.ExternalSymbols, results[i].ExternalSymbols...)
		p.Results[m.Kind] = existing
	}
	return nil
}

// Analyze runs the full pipeline: local scan of every module, then
// cross-module resolution of every module.
func (p *Program) Analyze() error {
	if err := p.AnalyzeLocal(); err != nil {
		return err
	}
	return p.AnalyzeCrossReferences()
}
