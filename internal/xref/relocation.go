package xref

import (
	"fmt"
	"sort"
)

// RelocationKind distinguishes a call-instruction relocation from a
// data-load relocation.
type RelocationKind int

const (
	RelocCall RelocationKind = iota
	RelocLoad
)

func (k RelocationKind) String() string {
	if k == RelocCall {
		return "call"
	}
	return "load"
}

// DestinationKind is the tag of the RelocationModule union: a tagged
// variant with a dedicated Any(...) arm for overlays sharing an address.
type DestinationKind int

const (
	DestCurrent DestinationKind = iota
	DestMain
	DestAutoload
	DestOverlay
	DestAny
	DestNone
)

// RelocationModule is the destination a relocation resolves to.
type RelocationModule struct {
	Kind DestinationKind

	OverlayID  int            // DestOverlay
	Autoload   AutoloadKind   // DestAutoload
	OverlayIDs []int          // DestAny, sorted ascending
}

// String renders the destination the way logs and config output do.
func (r RelocationModule) String() string {
	switch r.Kind {
	case DestCurrent:
		return "current"
	case DestMain:
		return "main"
	case DestAutoload:
		return r.Autoload.String()
	case DestOverlay:
		return fmt.Sprintf("ov%d", r.OverlayID)
	case DestAny:
		return fmt.Sprintf("any%v", r.OverlayIDs)
	default:
		return "none"
	}
}

// Equal reports whether r and other are the same destination.
func (r RelocationModule) Equal(other RelocationModule) bool {
	if r.Kind != other.Kind {
		return false
	}
	switch r.Kind {
	case DestOverlay:
		return r.OverlayID == other.OverlayID
	case DestAutoload:
		return r.Autoload == other.Autoload
	case DestAny:
		if len(r.OverlayIDs) != len(other.OverlayIDs) {
			return false
		}
		for i := range r.OverlayIDs {
			if r.OverlayIDs[i] != other.OverlayIDs[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Relocation is one discovered cross-reference, ready to re-link an
// equivalent object.
type Relocation struct {
	SiteAddress Address
	Target      Address
	Addend      int32
	Kind        RelocationKind
	Destination RelocationModule

	FromThumb bool
	ToThumb   bool
}

// NewCallRelocation builds a Call relocation.
func NewCallRelocation(site, target Address, dest RelocationModule, fromThumb, toThumb bool) Relocation {
	return Relocation{
		SiteAddress: site,
		Target:      target,
		Kind:        RelocCall,
		Destination: dest,
		FromThumb:   fromThumb,
		ToThumb:     toThumb,
	}
}

// NewLoadRelocation builds a Load relocation with the given addend.
func NewLoadRelocation(site, target Address, addend int32, dest RelocationModule) Relocation {
	return Relocation{
		SiteAddress: site,
		Target:      target,
		Addend:      addend,
		Kind:        RelocLoad,
		Destination: dest,
	}
}

// SymbolCandidate identifies one module/section that could own a
// cross-module pointer target.
type SymbolCandidate struct {
	ModuleIndex  int
	SectionIndex int
}

// ExternalSymbol is a by-product of cross-module resolution recording
// every module/section that could own address, for later symbol
// unification.
type ExternalSymbol struct {
	Address    Address
	Candidates []SymbolCandidate
}

// RelocationResult is the append-only output of one focus module's
// Cross-Module Resolver pass.
type RelocationResult struct {
	Relocations     []Relocation
	ExternalSymbols []ExternalSymbol
}

// reduceDestination reduces the module kinds of every accepted
// candidate for one target address to the single destination a
// relocation should carry.
//
//   - no candidates            -> None
//   - all the same module      -> that module's kind
//   - only overlays, 2+ kinds  -> Any(sorted overlay ids)
//   - overlays mixed with      -> AmbiguousRelocation (fatal)
//     Main/Autoload
func reduceDestination(kinds []ModuleKind) (RelocationModule, error) {
	if len(kinds) == 0 {
		return RelocationModule{Kind: DestNone}, nil
	}

	allSame := true
	for _, k := range kinds[1:] {
		if !k.Equal(kinds[0]) {
			allSame = false
			break
		}
	}
	if allSame {
		return kinds[0].ToRelocationModule()
	}

	overlayIDs := make([]int, 0, len(kinds))
	sawNonOverlay := false
	seen := make(map[int]bool)
	for _, k := range kinds {
		if k.Tag != KindOverlay {
			sawNonOverlay = true
			continue
		}
		if !seen[k.OverlayID] {
			seen[k.OverlayID] = true
			overlayIDs = append(overlayIDs, k.OverlayID)
		}
	}
	if sawNonOverlay {
		return RelocationModule{}, fmt.Errorf("%w: candidates mix overlays with main/autoload modules", ErrAmbiguousRelocation)
	}

	sort.Ints(overlayIDs)
	return RelocationModule{Kind: DestAny, OverlayIDs: overlayIDs}, nil
}
