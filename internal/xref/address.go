// Package xref discovers cross-references between linked ARM binary
// modules and records them as typed relocations.
package xref

import "fmt"

// Address is a location in the target's 32-bit virtual address space.
//
// ARM vs Thumb call targets are encoded with the low bit set for Thumb;
// the function itself lives at the address with the low bit cleared.
type Address uint32

// Func returns the address with the Thumb bit cleared, i.e. the address
// a function actually starts at.
func (a Address) Func() Address {
	return a &^ 1
}

// IsThumb reports whether the low bit is set, marking a is a Thumb call
// target rather than the function's own start address.
func (a Address) IsThumb() bool {
	return a&1 != 0
}

// WithThumb returns a with the Thumb bit set according to thumb.
func (a Address) WithThumb(thumb bool) Address {
	if thumb {
		return a | 1
	}
	return a &^ 1
}

// Add returns a+delta.
func (a Address) Add(delta uint32) Address {
	return a + Address(delta)
}

// String formats the address the way the rest of the toolchain logs it.
func (a Address) String() string {
	return fmt.Sprintf("0x%08x", uint32(a))
}
