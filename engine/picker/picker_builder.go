package picker

// PickerBuilderOption is a functional option used to configure the prompt picker during construction.
type PickerBuilderOption func(*promptPicker)

// WithDenylist replaces the default process denylist. Names are normalized and an empty list keeps the default.
//
// Parameters:
//   - names: process names to hide
//
// Returns:
//   - PickerBuilderOption: a function that sets the denylist
func WithDenylist(names []string) PickerBuilderOption {
	return func(p *promptPicker) {
		p.denylist = Denylist(names)
	}
}
