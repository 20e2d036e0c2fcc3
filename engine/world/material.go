package world

import "github.com/Carmen-Shannon/oxy-corridor/engine/style"

// material is the implementation of the Material interface.
type material struct {
	tint style.Tint
	bank style.Bank
}

// Material defines the per-object shading state of a corridor box.
//
// The tint is frozen when the object is created. Time, resolution and the noise texture are
// read through the shared style bank, so every object observes the same values on a given frame.
type Material interface {
	// Tint retrieves the object's color multiplier.
	//
	// Returns:
	//   - style.Tint: the tint sampled at creation
	Tint() style.Tint

	// Bank retrieves the shared style bank, or nil if the object was created without one.
	//
	// Returns:
	//   - style.Bank: the shared style bank
	Bank() style.Bank
}

var _ Material = &material{}

// NewMaterial creates a new Material with a fixed tint bound to the given style bank.
//
// Parameters:
//   - tint: the object's color multiplier
//   - bank: the shared style bank (may be nil)
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(tint style.Tint, bank style.Bank) Material {
	return &material{tint: tint, bank: bank}
}

func (m *material) Tint() style.Tint {
	return m.tint
}

func (m *material) Bank() style.Bank {
	return m.bank
}
