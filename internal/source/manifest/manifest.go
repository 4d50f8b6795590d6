// Package manifest is the concrete source.ModuleProvider this project
// ships: a YAML description of a ROM's main/overlay/autoload modules,
// each naming a raw code-blob file plus the section and function
// layout an upstream disassembly step already produced. Real NDS ROM
// container parsing and ARM/Thumb disassembly stay behind the
// source.ModuleProvider/Disassembler interfaces (spec.md §1) rather
// than being implemented here.
package manifest

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zboralski/dsdelink/internal/source"
	"github.com/zboralski/dsdelink/internal/xref"
)

// Call is one call-instruction site inside a function, already
// disassembled.
type Call struct {
	Site        uint32 `yaml:"site"`
	Target      uint32 `yaml:"target"`
	TargetThumb bool   `yaml:"target_thumb"`
	Conditional bool   `yaml:"conditional"`
}

// Pool is one literal-pool constant word inside a function.
type Pool struct {
	Address uint32 `yaml:"address"`
	Value   uint32 `yaml:"value"`
}

// Function is one disassembled function within a code section.
type Function struct {
	Start uint32 `yaml:"start"`
	End   uint32 `yaml:"end"`
	Thumb bool   `yaml:"thumb"`
	Calls []Call `yaml:"calls,omitempty"`
	Pools []Pool `yaml:"pools,omitempty"`
}

// Section is one section of a module: code sections list their
// functions, data and bss sections just give the address range.
type Section struct {
	Kind      string     `yaml:"kind"` // "code", "data", or "bss"
	Start     uint32     `yaml:"start"`
	End       uint32     `yaml:"end"`
	Functions []Function `yaml:"functions,omitempty"`
}

// Module describes one main/overlay/autoload module.
type Module struct {
	Name      string    `yaml:"name"`
	OverlayID int       `yaml:"overlay_id,omitempty"`
	Autoload  string    `yaml:"autoload,omitempty"` // "itcm" or "dtcm"
	Base      uint32    `yaml:"base"`
	CodePath  string    `yaml:"code_path"`
	Sections  []Section `yaml:"sections"`
}

// Manifest is the top-level document the `init` command loads.
type Manifest struct {
	Main      Module   `yaml:"main"`
	Overlays  []Module `yaml:"overlays,omitempty"`
	Autoloads []Module `yaml:"autoloads,omitempty"`
}

// Load reads and parses a manifest YAML file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Provider adapts a Manifest into a source.ModuleProvider. Code blobs
// are resolved relative to baseDir (the manifest file's directory).
type Provider struct {
	manifest *Manifest
	baseDir  string
}

// NewProvider builds a Provider rooted at baseDir for resolving
// relative code_path entries.
func NewProvider(m *Manifest, baseDir string) *Provider {
	return &Provider{manifest: m, baseDir: baseDir}
}

func sectionKind(name string) (xref.SectionKind, error) {
	switch name {
	case "code":
		return xref.SectionCode, nil
	case "data":
		return xref.SectionData, nil
	case "bss":
		return xref.SectionBss, nil
	default:
		return 0, fmt.Errorf("unknown section kind %q", name)
	}
}

func (p *Provider) toDescriptor(mod Module, kind xref.ModuleKind) (source.ModuleDescriptor, error) {
	var code []byte
	if mod.CodePath != "" {
		path := mod.CodePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(p.baseDir, path)
		}
		var err error
		code, err = os.ReadFile(path)
		if err != nil {
			return source.ModuleDescriptor{}, fmt.Errorf("read code blob %s: %w", path, err)
		}
	}

	sections := make([]*xref.Section, 0, len(mod.Sections))
	for _, s := range mod.Sections {
		skind, err := sectionKind(s.Kind)
		if err != nil {
			return source.ModuleDescriptor{}, fmt.Errorf("module %s: %w", mod.Name, err)
		}

		section := xref.NewSection(skind, xref.Address(s.Start), xref.Address(s.End))
		for _, fn := range s.Functions {
			f := &xref.Function{
				Start: xref.Address(fn.Start),
				End:   xref.Address(fn.End),
				Thumb: fn.Thumb,
			}
			for _, c := range fn.Calls {
				f.Calls = append(f.Calls, xref.CallSite{
					SiteAddress:   xref.Address(c.Site),
					TargetAddress: xref.Address(c.Target),
					TargetThumb:   c.TargetThumb,
					IsConditional: c.Conditional,
				})
			}
			for _, pc := range fn.Pools {
				f.Pools = append(f.Pools, xref.PoolConstant{Address: xref.Address(pc.Address), Value: pc.Value})
			}
			section.AddFunction(f)
		}
		sections = append(sections, section)
	}

	return source.ModuleDescriptor{
		Kind:     kind,
		Name:     mod.Name,
		Base:     xref.Address(mod.Base),
		Code:     code,
		Sections: sections,
	}, nil
}

// Main implements source.ModuleProvider.
func (p *Provider) Main() (source.ModuleDescriptor, error) {
	return p.toDescriptor(p.manifest.Main, xref.Main())
}

// Overlays implements source.ModuleProvider.
func (p *Provider) Overlays() ([]source.ModuleDescriptor, error) {
	out := make([]source.ModuleDescriptor, 0, len(p.manifest.Overlays))
	for _, ov := range p.manifest.Overlays {
		d, err := p.toDescriptor(ov, xref.Overlay(ov.OverlayID))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Autoloads implements source.ModuleProvider.
func (p *Provider) Autoloads() ([]source.ModuleDescriptor, error) {
	out := make([]source.ModuleDescriptor, 0, len(p.manifest.Autoloads))
	for _, al := range p.manifest.Autoloads {
		var kind xref.AutoloadKind
		switch al.Autoload {
		case "itcm":
			kind = xref.AutoloadItcm
		case "dtcm":
			kind = xref.AutoloadDtcm
		default:
			return nil, fmt.Errorf("module %s: unknown autoload kind %q: %w", al.Name, al.Autoload, xref.ErrUnknownModuleKind)
		}
		d, err := p.toDescriptor(al, xref.Autoload(kind))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// CodeHash returns a stable integrity stamp for code, written into
// ConfigModule.Hash. This is a change-detection stamp, not a security
// boundary, so the stdlib's hash/fnv is used rather than reaching for a
// third-party hashing library.
func CodeHash(code []byte) string {
	h := fnv.New64a()
	h.Write(code)
	return fmt.Sprintf("%016x", h.Sum64())
}
