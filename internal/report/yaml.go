// Package report is the external writer named in spec.md §6: it
// serializes a finished analysis run (config, symbols, relocations) to
// disk. internal/xref never imports this package.
package report

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zboralski/dsdelink/internal/romconfig"
	"github.com/zboralski/dsdelink/internal/xref"
)

// SymbolEntry is one serialized symbol, named for the on-disk
// symbols.yaml file.
type SymbolEntry struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name,omitempty"`
	Kind    string `yaml:"kind"`
	Thumb   bool   `yaml:"thumb,omitempty"`
	Size    uint32 `yaml:"size,omitempty"`
}

// RelocationEntry is one serialized relocation, named for the on-disk
// relocs.yaml file.
type RelocationEntry struct {
	Site        string `yaml:"site"`
	Target      string `yaml:"target"`
	Addend      int32  `yaml:"addend,omitempty"`
	Kind        string `yaml:"kind"`
	Destination string `yaml:"destination"`
	FromThumb   bool   `yaml:"from_thumb,omitempty"`
	ToThumb     bool   `yaml:"to_thumb,omitempty"`
}

// SectionEntry is one serialized section, the delinks-equivalent
// listing spec.md §6 says the core emits section layout for.
type SectionEntry struct {
	Kind  string `yaml:"kind"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ModuleReport bundles everything WriteModule serializes for one
// module.
type ModuleReport struct {
	Name        string
	Sections    []SectionEntry
	Symbols     []SymbolEntry
	Relocations []RelocationEntry
	Config      romconfig.ConfigModule
}

func symbolKindName(rec *xref.SymbolRecord) string {
	switch rec.Type {
	case xref.RecordFunction:
		return "function"
	case xref.RecordExternalLabel:
		return "external_label"
	case xref.RecordData:
		return "data"
	default:
		return "bss"
	}
}

// BuildModuleReport converts a module's section map, symbol map, and
// RelocationResult into the serializable shape above.
func BuildModuleReport(name string, m *xref.Module, result *xref.RelocationResult) ModuleReport {
	rep := ModuleReport{Name: name}

	for _, s := range m.Sections.Sections() {
		rep.Sections = append(rep.Sections, SectionEntry{Kind: s.Kind.String(), Start: s.Start.String(), End: s.End.String()})
	}

	for _, sym := range m.Symbols.All() {
		rep.Symbols = append(rep.Symbols, SymbolEntry{
			Address: sym.Addr.String(),
			Name:    sym.Name,
			Kind:    symbolKindName(sym),
			Thumb:   sym.Thumb,
			Size:    sym.Size,
		})
	}

	if result != nil {
		for _, r := range result.Relocations {
			rep.Relocations = append(rep.Relocations, RelocationEntry{
				Site:        r.SiteAddress.String(),
				Target:      r.Target.String(),
				Addend:      r.Addend,
				Kind:        r.Kind.String(),
				Destination: r.Destination.String(),
				FromThumb:   r.FromThumb,
				ToThumb:     r.ToThumb,
			})
		}
	}

	return rep
}

// WriteModule writes config.yaml, symbols.yaml, and relocs.yaml into
// dir for one module. A no-op (spec.md §7: "in dry mode, writes
// nothing") is the caller's responsibility to skip by not calling this
// at all when --dry is set.
func WriteModule(dir string, rep ModuleReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	if err := writeYAML(dir+"/config.yaml", rep.Config); err != nil {
		return err
	}
	if err := writeYAML(dir+"/symbols.yaml", rep.Symbols); err != nil {
		return err
	}
	if err := writeYAML(dir+"/relocs.yaml", rep.Relocations); err != nil {
		return err
	}
	return nil
}

// WriteConfig writes the top-level rom config.yaml (main module plus
// every overlay's ConfigModule), the aggregate document
// original_source/src/config/config.rs's Config type serializes.
func WriteConfig(path string, cfg romconfig.Config) error {
	return writeYAML(path, cfg)
}

func writeYAML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
