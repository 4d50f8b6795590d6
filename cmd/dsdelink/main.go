// Command dsdelink discovers cross-module references inside a
// fully-linked dual-processor handheld ROM image and emits typed
// relocations plus symbol/section maps for each module, so the linked
// image can be split back into separately re-linkable objects.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	dsdlog "github.com/zboralski/dsdelink/internal/log"
	"github.com/zboralski/dsdelink/internal/report"
	"github.com/zboralski/dsdelink/internal/romconfig"
	"github.com/zboralski/dsdelink/internal/script"
	"github.com/zboralski/dsdelink/internal/source"
	"github.com/zboralski/dsdelink/internal/source/manifest"
	"github.com/zboralski/dsdelink/internal/ui/colorize"
	"github.com/zboralski/dsdelink/internal/ui/inspect"
	"github.com/zboralski/dsdelink/internal/xref"
)

func main() {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "dsdelink",
		Short: "Cross-reference analysis for linked dual-processor ROM images",
		Long: `dsdelink discovers pointer and call cross-references between a ROM's
main executable, its overlays, and its autoloads, and records them as
typed relocations so the image can be split back into re-linkable
objects.`,
		SilenceUsage: true,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Analyze a ROM manifest and write delink configs",
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlags(v, cmd)
			return runInit(v)
		},
	}
	initCmd.Flags().StringP("rom-config", "r", "", "path to the ROM module manifest")
	initCmd.Flags().StringP("output-path", "o", "", "output directory")
	initCmd.Flags().StringP("build-path", "b", "", "build directory (defaults under output-path)")
	initCmd.Flags().BoolP("dry", "d", false, "do not write files, just analyze")
	initCmd.Flags().String("filter-script", "", "optional JS symbol-filter script")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Print a module-level summary of a ROM manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlags(v, cmd)
			return runInfo(v)
		},
	}
	infoCmd.Flags().StringP("rom-config", "r", "", "path to the ROM module manifest")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Browse a finished run's relocations interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlags(v, cmd)
			return runInspect(v)
		},
	}
	inspectCmd.Flags().StringP("rom-config", "r", "", "path to the ROM module manifest")

	rootCmd.AddCommand(initCmd, infoCmd, inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	v.BindPFlags(cmd.Flags())
}

// resolverDiagnostics adapts the Cross-Module Resolver's diagnostic
// events onto the run's logger, each under its own category: the soft
// ones (spec.md §6/§7: mid-function-call, no-candidates) at warn level
// via Logger.WarnSoft, the fatal dangling-call at error level via
// Logger.ErrorChain.
type resolverDiagnostics struct {
	logger *dsdlog.Logger
}

func (d resolverDiagnostics) Warn(category, message string, addr xref.Address) {
	if category == "dangling-call" {
		d.logger.ErrorChain(category, errors.New(message), dsdlog.Addr(uint32(addr)))
		return
	}
	d.logger.WarnSoft(category, message, dsdlog.Addr(uint32(addr)))
}

// loadProgram reads the manifest named by RunOptions and runs the full
// local-scan + cross-module-resolve analysis.
func loadProgram(opts romconfig.RunOptions, logger *dsdlog.Logger) (*xref.Program, source.ModuleProvider, error) {
	dir := filepath.Dir(opts.RomConfigPath)
	m, err := manifest.Load(opts.RomConfigPath)
	if err != nil {
		return nil, nil, err
	}
	provider := manifest.NewProvider(m, dir)

	mainDesc, err := provider.Main()
	if err != nil {
		return nil, nil, fmt.Errorf("load main module: %w", err)
	}
	overlays, err := provider.Overlays()
	if err != nil {
		return nil, nil, fmt.Errorf("load overlay modules: %w", err)
	}
	autoloads, err := provider.Autoloads()
	if err != nil {
		return nil, nil, fmt.Errorf("load autoload modules: %w", err)
	}

	symbolMaps := xref.NewSymbolMaps()
	toModule := func(d source.ModuleDescriptor) *xref.Module {
		sm := symbolMaps.Get(d.Kind)
		for _, s := range d.Sections {
			for _, fn := range s.OrderedFunctions() {
				start := fn.Start.Func()
				sm.AddFunction(start, fmt.Sprintf("func_%08x", uint32(start)), fn.Thumb, uint32(fn.End-start))
			}
		}
		return &xref.Module{
			Kind:     d.Kind,
			Name:     d.Name,
			Base:     d.Base,
			Code:     d.Code,
			Sections: xref.NewSectionMap(d.Sections),
			Symbols:  sm,
		}
	}

	mainModule := toModule(mainDesc)
	overlayModules := make([]*xref.Module, len(overlays))
	for i, d := range overlays {
		overlayModules[i] = toModule(d)
	}
	autoloadModules := make([]*xref.Module, len(autoloads))
	for i, d := range autoloads {
		autoloadModules[i] = toModule(d)
	}

	scanner := xref.NewLocalScanner()
	if opts.FilterScriptPath != "" {
		f, err := script.Compile(opts.FilterScriptPath)
		if err != nil {
			return nil, nil, fmt.Errorf("compile filter script: %w", err)
		}
		scanner.Filter = f.AsSymbolFilter()
	}

	program := xref.NewProgram(mainModule, overlayModules, autoloadModules, symbolMaps)
	program.Scanner = scanner
	program.Resolver = &xref.Resolver{Diagnostics: resolverDiagnostics{logger: logger}}

	if err := program.Analyze(); err != nil {
		return nil, nil, fmt.Errorf("analyze cross-references: %w", err)
	}
	return program, provider, nil
}

func runInit(v *viper.Viper) error {
	opts, err := romconfig.LoadRunOptions(v)
	if err != nil {
		return err
	}
	if err := opts.RequireOutputPath(); err != nil {
		return err
	}

	logger := dsdlog.New(false).Run(uuid.New())

	program, _, err := loadProgram(opts, logger)
	if err != nil {
		return err
	}

	out := newOutputWriter()
	defer out.Close()

	var mainConfig romconfig.ConfigModule
	var overlayConfigs []romconfig.ConfigModule

	for _, m := range program.All() {
		result := program.Results[m.Kind]
		rep := report.BuildModuleReport(m.Name, m, result)
		rep.Config = romconfig.ConfigModule{
			Object:  filepath.Join(opts.BuildPath, m.Name+".bin"),
			Hash:    manifest.CodeHash(m.Code),
			Symbols: filepath.Join(m.Kind.String(), "symbols.yaml"),
		}

		switch m.Kind.Tag {
		case xref.KindMain:
			mainConfig = rep.Config
		case xref.KindOverlay:
			overlayConfigs = append(overlayConfigs, rep.Config)
		}

		out.Write(fmt.Sprintf("%s  %s: %d relocations, %d symbols",
			colorize.Header("analyzed"), m.Kind.String(), len(rep.Relocations), len(rep.Symbols)))

		if opts.Dry {
			continue
		}

		dir := filepath.Join(opts.OutputPath, m.Kind.String())
		if err := report.WriteModule(dir, rep); err != nil {
			logger.ErrorChain("write-report", err, dsdlog.Module(m.Kind))
			return err
		}
	}

	if !opts.Dry {
		var reports []report.ModuleReport
		for _, m := range program.All() {
			reports = append(reports, report.BuildModuleReport(m.Name, m, program.Results[m.Kind]))
		}
		summaryPath := filepath.Join(opts.OutputPath, "summary.html")
		if err := report.WriteHTMLSummary(summaryPath, reports); err != nil {
			return err
		}

		romCfg := romconfig.Config{Module: mainConfig, Overlays: overlayConfigs}
		if err := report.WriteConfig(filepath.Join(opts.OutputPath, "config.yaml"), romCfg); err != nil {
			logger.ErrorChain("write-report", err)
			return err
		}
	}

	return nil
}

func runInfo(v *viper.Viper) error {
	opts, err := romconfig.LoadRunOptions(v)
	if err != nil {
		return err
	}

	logger := dsdlog.New(false).Run(uuid.New())

	program, _, err := loadProgram(opts, logger)
	if err != nil {
		return err
	}

	out := newOutputWriter()
	defer out.Close()

	for _, m := range program.All() {
		result := program.Results[m.Kind]
		n := 0
		if result != nil {
			n = len(result.Relocations)
		}
		out.Write(fmt.Sprintf("%s  %s  base=%s  symbols=%d  relocations=%d",
			colorize.Header(m.Kind.String()), m.Name, colorize.Address(uint32(m.Base)), len(m.Symbols.All()), n))
	}
	return nil
}

func runInspect(v *viper.Viper) error {
	opts, err := romconfig.LoadRunOptions(v)
	if err != nil {
		return err
	}

	logger := dsdlog.New(false).Run(uuid.New())

	program, _, err := loadProgram(opts, logger)
	if err != nil {
		return err
	}

	var reports []report.ModuleReport
	for _, m := range program.All() {
		reports = append(reports, report.BuildModuleReport(m.Name, m, program.Results[m.Kind]))
	}

	p := tea.NewProgram(inspect.New(reports), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// outputWriter buffers CLI output on a background goroutine, flushing
// on a timer so a long analysis run doesn't stall on synchronous
// writes to stdout.
type outputWriter struct {
	ch     chan string
	done   chan struct{}
	writer *bufio.Writer
}

func newOutputWriter() *outputWriter {
	w := &outputWriter{
		ch:     make(chan string, 2048),
		done:   make(chan struct{}),
		writer: bufio.NewWriterSize(os.Stdout, 64*1024),
	}
	go w.run()
	return w
}

func (w *outputWriter) run() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case line, ok := <-w.ch:
			if !ok {
				w.writer.Flush()
				close(w.done)
				return
			}
			w.writer.WriteString(line)
			w.writer.WriteByte('\n')
		case <-ticker.C:
			w.writer.Flush()
		}
	}
}

func (w *outputWriter) Write(line string) {
	select {
	case w.ch <- line:
	default:
	}
}

func (w *outputWriter) Close() {
	close(w.ch)
	<-w.done
}
