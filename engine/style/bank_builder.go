package style

// BankBuilderOption is a functional option for configuring a Bank.
type BankBuilderOption func(*bank)

// WithNoiseTexture sets the noise texture sampled by the shader.
//
// Parameters:
//   - tex: the loaded or generated noise texture
//
// Returns:
//   - BankBuilderOption: option function to apply
func WithNoiseTexture(tex *NoiseTexture) BankBuilderOption {
	return func(b *bank) {
		b.noise = tex
	}
}
