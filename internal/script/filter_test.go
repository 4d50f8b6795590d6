package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zboralski/dsdelink/internal/xref"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filter.js")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestFilterVetoesWhenScriptReturnsFalse(t *testing.T) {
	path := writeScript(t, `function shouldPromote(module, pointer, section) { return pointer < 0x100; }`)

	f, err := Compile(path)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	filter := f.AsSymbolFilter()
	if !filter(xref.Main(), 0x50, xref.SectionData) {
		t.Fatalf("expected promotion to be allowed for pointer below threshold")
	}
	if filter(xref.Main(), 0x200, xref.SectionData) {
		t.Fatalf("expected promotion to be vetoed for pointer above threshold")
	}
}

func TestFilterMissingFunctionIsError(t *testing.T) {
	path := writeScript(t, `function notTheRightName() { return true; }`)
	if _, err := Compile(path); err == nil {
		t.Fatalf("expected an error when shouldPromote is undefined")
	}
}

func TestFilterScriptErrorDefaultsToAllow(t *testing.T) {
	path := writeScript(t, `function shouldPromote(module, pointer, section) { throw new Error("boom"); }`)

	f, err := Compile(path)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if !f.AsSymbolFilter()(xref.Main(), 0x10, xref.SectionData) {
		t.Fatalf("expected a throwing script to default to allow")
	}
}
