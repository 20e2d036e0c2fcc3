package scene

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(s *Scene)

// WithName sets the scene's identifier, used in log lines.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *Scene) {
		if name != "" {
			s.name = name
		}
	}
}
