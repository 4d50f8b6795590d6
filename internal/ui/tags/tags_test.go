package tags

import "testing"

func TestFindingPrimaryTagAndStrings(t *testing.T) {
	f := NewFinding(0x02000010, Call, Overlay, "FUN_02000100", "")
	if f.PrimaryTag() != "#call" {
		t.Fatalf("unexpected primary tag: %s", f.PrimaryTag())
	}
	if got := f.Tags.Strings(); len(got) != 2 || got[0] != "#call" || got[1] != "#overlay" {
		t.Fatalf("unexpected tag strings: %v", got)
	}
}

func TestFindingIsDiagnostic(t *testing.T) {
	f := NewFinding(0x02000010, Call, Current, "", "dangling call target")
	f.AddTag(Dangling)
	if !f.IsDiagnostic() {
		t.Fatalf("expected a dangling-tagged finding to be a diagnostic")
	}

	resolved := NewFinding(0x02000020, Load, Main, "g_table", "")
	if resolved.IsDiagnostic() {
		t.Fatalf("expected a resolved load to not be a diagnostic")
	}
}

func TestTagsAddIsIdempotent(t *testing.T) {
	var ts Tags
	ts.Add(Call)
	ts.Add(Call)
	if len(ts) != 1 {
		t.Fatalf("expected Add to dedupe, got %v", ts)
	}
}
