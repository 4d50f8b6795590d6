package xref

import "errors"

// Fatal error sentinels. Wrap with fmt.Errorf("...: %w", ...) at the
// call site to attach the offending address/module.
var (
	// ErrDanglingCall: a local call target is not inside any known
	// function of the calling module.
	ErrDanglingCall = errors.New("dangling call")

	// ErrSymbolConflict: add_data/add_bss/add_external_label collides
	// with an existing incompatible symbol.
	ErrSymbolConflict = errors.New("symbol conflict")

	// ErrAmbiguousRelocation: a candidate module set mixes overlays with
	// non-overlay modules.
	ErrAmbiguousRelocation = errors.New("ambiguous relocation")

	// ErrUnknownModuleKind: conversion from ModuleKind to
	// RelocationModule failed.
	ErrUnknownModuleKind = errors.New("unknown module kind")

	// ErrMissingSectionBytes: a Code/Data section's backing range falls
	// outside the module's code buffer.
	ErrMissingSectionBytes = errors.New("missing section bytes")
)
