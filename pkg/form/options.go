package form

// Options configures how the builder derives presentation details.
type Options struct {
	// Labeler converts property names into display labels. Defaults to
	// DefaultLabeler.
	Labeler Labeler
}

func defaultOptions() Options {
	return Options{Labeler: DefaultLabeler}
}
