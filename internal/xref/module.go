package xref

import "fmt"

// AutoloadKind distinguishes the two tightly-coupled memory regions an
// autoload module can relocate to.
type AutoloadKind int

const (
	AutoloadItcm AutoloadKind = iota
	AutoloadDtcm
)

func (k AutoloadKind) String() string {
	switch k {
	case AutoloadItcm:
		return "itcm"
	case AutoloadDtcm:
		return "dtcm"
	default:
		return fmt.Sprintf("autoload(%d)", int(k))
	}
}

// ModuleKindTag discriminates the three kinds of module a linked image
// can contain.
type ModuleKindTag int

const (
	KindMain ModuleKindTag = iota
	KindOverlay
	KindAutoload
)

// ModuleKind is the kind of one module: the main executable, one overlay
// identified by id, or an autoload relocated to a fixed TCM region.
type ModuleKind struct {
	Tag       ModuleKindTag
	OverlayID int
	Autoload  AutoloadKind
}

// Main constructs the main-executable module kind.
func Main() ModuleKind { return ModuleKind{Tag: KindMain} }

// Overlay constructs an overlay module kind with the given id.
func Overlay(id int) ModuleKind { return ModuleKind{Tag: KindOverlay, OverlayID: id} }

// Autoload constructs an autoload module kind of the given TCM region.
func Autoload(kind AutoloadKind) ModuleKind { return ModuleKind{Tag: KindAutoload, Autoload: kind} }

// String renders the module kind the way it appears in logs and
// generated file names ("main", "itcm", "dtcm", "ov123").
func (k ModuleKind) String() string {
	switch k.Tag {
	case KindMain:
		return "main"
	case KindOverlay:
		return fmt.Sprintf("ov%d", k.OverlayID)
	case KindAutoload:
		return k.Autoload.String()
	default:
		return "unknown"
	}
}

// Equal reports whether k and other describe the same module kind.
func (k ModuleKind) Equal(other ModuleKind) bool {
	if k.Tag != other.Tag {
		return false
	}
	switch k.Tag {
	case KindOverlay:
		return k.OverlayID == other.OverlayID
	case KindAutoload:
		return k.Autoload == other.Autoload
	default:
		return true
	}
}

// ToRelocationModule converts a module kind to the relocation destination
// it represents when it is not the focus ("Current") module. Returns
// UnknownModuleKind if k.Tag is none of KindMain, KindOverlay and
// KindAutoload; the zero-value ModuleKind has Tag KindMain and converts
// to Main.
func (k ModuleKind) ToRelocationModule() (RelocationModule, error) {
	switch k.Tag {
	case KindMain:
		return RelocationModule{Kind: DestMain}, nil
	case KindOverlay:
		return RelocationModule{Kind: DestOverlay, OverlayID: k.OverlayID}, nil
	case KindAutoload:
		return RelocationModule{Kind: DestAutoload, Autoload: k.Autoload}, nil
	default:
		return RelocationModule{}, fmt.Errorf("%w: %v", ErrUnknownModuleKind, k)
	}
}

// Module is a named executable unit: its kind, base address, backing
// bytes, and the section/symbol maps derived from it.
type Module struct {
	Kind    ModuleKind
	Name    string
	Base    Address
	Code    []byte
	Sections *SectionMap
	Symbols  *SymbolMap
}

// ContainsAddress reports whether addr falls within any section of m.
func (m *Module) ContainsAddress(addr Address) bool {
	_, _, ok := m.Sections.GetByContainedAddress(addr)
	return ok
}
