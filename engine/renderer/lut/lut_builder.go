package lut

// BuilderOption is a functional option for configuring a lutBuilder.
type BuilderOption func(*lutBuilder)

// WithMaxWorkers caps the number of goroutines used by BuildSet.
//
// Parameters:
//   - n: the worker cap, values below 1 are ignored
//
// Returns:
//   - BuilderOption: option function to apply
func WithMaxWorkers(n int) BuilderOption {
	return func(b *lutBuilder) {
		if n >= 1 {
			b.maxWorkers = n
		}
	}
}
