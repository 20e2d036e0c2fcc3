package window

// WindowBuilderOption is a functional option applied to a window during construction via NewWindow.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial client size in screen coordinates.
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
		w.height = height
	}
}

// WithSizeLimits bounds how far the user can resize the window.
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = minWidth
		w.minHeight = minHeight
		w.maxWidth = maxWidth
		w.maxHeight = maxHeight
	}
}
