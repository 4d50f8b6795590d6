package log

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRunTagsLoggerWithID(t *testing.T) {
	base := NewNop()
	id := uuid.New()
	tagged := base.Run(id)
	if tagged == nil || tagged.Logger == nil {
		t.Fatalf("expected Run to return a usable logger")
	}
}

func TestErrorChainDoesNotPanic(t *testing.T) {
	l := NewNop()
	l.ErrorChain("dangling-call", errors.New("boom"), Addr(0x02000010))
}

func TestHexFormatsLowercase(t *testing.T) {
	if got := Hex(0x20000af); got != "0x20000af" {
		t.Fatalf("unexpected hex format: %s", got)
	}
}
