package xref

import "testing"

func TestSectionMapGetByContainedAddress(t *testing.T) {
	sm := NewSectionMap([]*Section{
		dataSection(0x02000000, 0x02001000),
		codeSection(0x02001000, 0x02002000),
	})

	if _, sec, ok := sm.GetByContainedAddress(0x02000500); !ok || sec.Kind != SectionData {
		t.Fatalf("expected data section at 0x02000500, got %v %v", sec, ok)
	}
	if _, sec, ok := sm.GetByContainedAddress(0x02001500); !ok || sec.Kind != SectionCode {
		t.Fatalf("expected code section at 0x02001500, got %v %v", sec, ok)
	}
	if _, _, ok := sm.GetByContainedAddress(0x02002000); ok {
		t.Fatalf("end address should not be contained (half-open range)")
	}
	if _, _, ok := sm.GetByContainedAddress(0x01000000); ok {
		t.Fatalf("address outside all sections should not resolve")
	}
}

func TestSectionIterWordsAscendingAndRestartable(t *testing.T) {
	code := make([]byte, 16)
	for i := 0; i < 4; i++ {
		word32(code, i*4, uint32(i+1))
	}
	sec := dataSection(0x02000000, 0x02000010)

	for attempt := 0; attempt < 2; attempt++ {
		words, err := sec.IterWords(code, 0x02000000)
		if err != nil {
			t.Fatalf("IterWords: %v", err)
		}
		if len(words) != 4 {
			t.Fatalf("expected 4 words, got %d", len(words))
		}
		for i, w := range words {
			if w.Address != Address(0x02000000+i*4) {
				t.Fatalf("word %d has wrong address %v", i, w.Address)
			}
			if w.Value != uint32(i+1) {
				t.Fatalf("word %d has wrong value %v", i, w.Value)
			}
		}
	}
}

func TestSectionIterWordsBssIsEmpty(t *testing.T) {
	sec := bssSection(0x02000000, 0x02001000)
	words, err := sec.IterWords(nil, 0x02000000)
	if err != nil {
		t.Fatalf("IterWords: %v", err)
	}
	if len(words) != 0 {
		t.Fatalf("expected no words from a bss section, got %d", len(words))
	}
}

func TestSectionIterWordsOutOfRangeIsMissingBytes(t *testing.T) {
	sec := dataSection(0x02000000, 0x02001000)
	_, err := sec.IterWords(make([]byte, 4), 0x02000000)
	if err == nil {
		t.Fatalf("expected MissingSectionBytes for a too-small backing buffer")
	}
}
