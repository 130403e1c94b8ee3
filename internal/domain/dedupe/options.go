package dedupe

// Option applies a configuration option to the memory deduper.
type Option func(*memoryDeduper)

// WithMaxSize caps the number of session IDs kept in memory. Positive
// values enable oldest-first eviction; zero or negative disables the
// cap entirely.
func WithMaxSize(maxSize int) Option {
	return func(d *memoryDeduper) {
		d.maxSize = maxSize
	}
}
