package capture

// SourceBuilderOption is a functional option for configuring a capture Source.
type SourceBuilderOption func(*sourceConfig)

type sourceConfig struct {
	device string
	width  int
	height int
	fps    int
}

func newSourceConfig(options ...SourceBuilderOption) sourceConfig {
	cfg := sourceConfig{
		device: "/dev/video0",
		width:  640,
		height: 480,
		fps:    30,
	}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

// WithDevice sets the video device path.
//
// Parameters:
//   - device: the device node, e.g. /dev/video0
//
// Returns:
//   - SourceBuilderOption: functional option to set the device
func WithDevice(device string) SourceBuilderOption {
	return func(c *sourceConfig) {
		if device != "" {
			c.device = device
		}
	}
}

// WithSize sets the frame size delivered to consumers.
//
// Parameters:
//   - width, height: frame dimensions in pixels
//
// Returns:
//   - SourceBuilderOption: functional option to set the frame size
func WithSize(width, height int) SourceBuilderOption {
	return func(c *sourceConfig) {
		if width > 0 && height > 0 {
			c.width = width
			c.height = height
		}
	}
}

// WithFPS sets the target frame rate.
//
// Parameters:
//   - fps: frames per second
//
// Returns:
//   - SourceBuilderOption: functional option to set the frame rate
func WithFPS(fps int) SourceBuilderOption {
	return func(c *sourceConfig) {
		if fps > 0 {
			c.fps = fps
		}
	}
}
