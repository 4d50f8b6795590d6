package xref

import "fmt"

// Diagnostics receives the warn/error events the Cross-Module Resolver
// produces. A nil Diagnostics silently drops them, which tests rely on
// when they only care about the returned RelocationResult.
type Diagnostics interface {
	Warn(category, message string, addr Address)
}

type noopDiagnostics struct{}

func (noopDiagnostics) Warn(string, string, Address) {}

// Resolver runs the Cross-Module Resolver against one focus module,
// given the full module slice and the shared symbol-map set.
type Resolver struct {
	Diagnostics Diagnostics
}

// NewResolver returns a resolver that drops diagnostics.
func NewResolver() *Resolver {
	return &Resolver{Diagnostics: noopDiagnostics{}}
}

func (r *Resolver) diag() Diagnostics {
	if r.Diagnostics == nil {
		return noopDiagnostics{}
	}
	return r.Diagnostics
}

// Resolve analyzes module focusIndex's function calls and data/pool
// pointers against the full module set, returning the relocations and
// external symbols it discovered. It may also mutate the focus
// module's own symbol map (adding ExternalLabels, during Pass A).
func (r *Resolver) Resolve(modules []*Module, focusIndex int, symbolMaps *SymbolMaps) (*RelocationResult, error) {
	result := &RelocationResult{}

	focus := modules[focusIndex]

	for _, section := range focus.Sections.Sections() {
		if section.Kind != SectionCode {
			continue
		}
		for _, fn := range section.OrderedFunctions() {
			if err := r.resolveFunctionCalls(modules, focusIndex, fn, symbolMaps, result); err != nil {
				return nil, err
			}
		}
	}

	// Pass B: pool constants, in the same function-address order.
	for _, section := range focus.Sections.Sections() {
		if section.Kind != SectionCode {
			continue
		}
		for _, fn := range section.OrderedFunctions() {
			if err := r.resolvePoolConstants(modules, focusIndex, fn, result); err != nil {
				return nil, err
			}
		}
	}

	// Pass C: data-section words, in address order.
	for _, section := range focus.Sections.Sections() {
		if section.Kind != SectionData {
			continue
		}
		if err := r.resolveDataSection(modules, focusIndex, section, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// resolveFunctionCalls resolves every call site in fn against the other
// modules, classifying each as local, cross-module, or dangling.
func (r *Resolver) resolveFunctionCalls(modules []*Module, focusIndex int, fn *Function, symbolMaps *SymbolMaps, result *RelocationResult) error {
	focus := modules[focusIndex]

	for _, call := range fn.Calls {
		if call.IsConditional {
			// The historical linker strips the condition code when
			// rewriting relocated calls; leaving it un-relocated
			// preserves semantics.
			continue
		}

		isLocal := focus.ContainsAddress(call.TargetAddress)

		var dest RelocationModule
		if isLocal {
			symbolMap := symbolMaps.Get(focus.Kind)
			symbol := symbolMap.GetFunctionContaining(call.TargetAddress)
			if symbol == nil {
				r.diag().Warn("dangling-call", fmt.Sprintf("function call from %s in %s to %s leads to no function", call.SiteAddress, focus.Kind, call.TargetAddress), call.SiteAddress)
				return fmt.Errorf("%w: call from %s in %s to %s", ErrDanglingCall, call.SiteAddress, focus.Kind, call.TargetAddress)
			}
			if call.TargetAddress != symbol.Addr {
				r.diag().Warn("mid-function-call", fmt.Sprintf("call from %s in %s to %s goes to middle of function %q at %s, adding external label", call.SiteAddress, focus.Kind, call.TargetAddress, symbol.Name, symbol.Addr), call.SiteAddress)
				// TODO: a mid-function call into *another* module's
				// symbol map (cross-focus) is not handled; this only
				// ever mutates the local (focus) module's map, which
				// is always correct here since isLocal is true.
				if err := symbolMap.AddExternalLabel(call.TargetAddress, call.TargetThumb); err != nil {
					return err
				}
			}
			dest = RelocationModule{Kind: DestCurrent}
		} else {
			var candidateKinds []ModuleKind
			for i, other := range modules {
				if i == focusIndex {
					continue
				}
				if !other.ContainsAddress(call.TargetAddress) {
					continue
				}
				_, section, ok := other.Sections.GetByContainedAddress(call.TargetAddress)
				if !ok || section.Kind != SectionCode {
					continue
				}
				fn, ok := section.Functions[call.TargetAddress.Func()]
				if !ok || fn.Thumb != call.TargetThumb {
					continue
				}
				candidateKinds = append(candidateKinds, other.Kind)
			}

			var err error
			dest, err = reduceDestination(candidateKinds)
			if err != nil {
				return err
			}
		}

		if dest.Kind == DestNone {
			// Open Question (a): preserved verbatim, surfaced under its
			// own log category.
			r.diag().Warn("no-candidates", fmt.Sprintf("no functions from %s in %s to %s", call.SiteAddress, focus.Kind, call.TargetAddress), call.SiteAddress)
		}

		result.Relocations = append(result.Relocations, NewCallRelocation(call.SiteAddress, call.TargetAddress, dest, fn.Thumb, call.TargetThumb))
	}

	return nil
}

// resolvePoolConstants resolves every pool-loaded literal in fn against
// the other modules.
func (r *Resolver) resolvePoolConstants(modules []*Module, focusIndex int, fn *Function, result *RelocationResult) error {
	for _, pool := range fn.Pools {
		if err := r.findExternalData(modules, focusIndex, pool.Address, Address(pool.Value), result); err != nil {
			return err
		}
	}
	return nil
}

// resolveDataSection resolves every pointer-shaped word in section
// against the other modules.
func (r *Resolver) resolveDataSection(modules []*Module, focusIndex int, section *Section, result *RelocationResult) error {
	focus := modules[focusIndex]
	words, err := section.IterWords(focus.Code, focus.Base)
	if err != nil {
		return err
	}
	for _, word := range words {
		if err := r.findExternalData(modules, focusIndex, word.Address, Address(word.Value), result); err != nil {
			return err
		}
	}
	return nil
}

// findExternalData classifies one pointer found at site as pointing
// into zero, one, or several of the other modules.
func (r *Resolver) findExternalData(modules []*Module, focusIndex int, site, pointer Address, result *RelocationResult) error {
	focus := modules[focusIndex]
	if focus.ContainsAddress(pointer) {
		// Local pointers are the Local Scanner's job.
		return nil
	}

	candidates := findSymbolCandidates(modules, focusIndex, pointer)
	if len(candidates) == 0 {
		// Likely not a pointer.
		return nil
	}

	candidateKinds := make([]ModuleKind, len(candidates))
	for i, c := range candidates {
		candidateKinds[i] = modules[c.ModuleIndex].Kind
	}

	dest, err := reduceDestination(candidateKinds)
	if err != nil {
		return err
	}

	result.Relocations = append(result.Relocations, NewLoadRelocation(site, pointer, 0, dest))
	result.ExternalSymbols = append(result.ExternalSymbols, ExternalSymbol{Address: pointer, Candidates: candidates})
	return nil
}

// findSymbolCandidates returns every other module whose section map
// contains pointer, along with the containing section index.
func findSymbolCandidates(modules []*Module, focusIndex int, pointer Address) []SymbolCandidate {
	var out []SymbolCandidate
	for i, module := range modules {
		if i == focusIndex {
			continue
		}
		sectionIndex, section, ok := module.Sections.GetByContainedAddress(pointer)
		if !ok {
			continue
		}
		if section.Kind == SectionCode {
			fn, ok := section.Functions[pointer.Func()]
			if !ok {
				continue
			}
			if fn.Thumb != pointer.IsThumb() {
				continue
			}
		}
		out = append(out, SymbolCandidate{ModuleIndex: i, SectionIndex: sectionIndex})
	}
	return out
}
