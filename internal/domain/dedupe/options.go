package dedupe

// defaultMaxSize bounds how many snapshot ids are remembered.
const defaultMaxSize = 256

// Option applies a configuration option to the deduper.
type Option func(*ringDeduper)

// WithMaxSize sets the number of ids kept. Values <= 0 keep every id.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		d.maxSize = maxSize
	}
}
