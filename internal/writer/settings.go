package writer

// DefaultBufferThreshold is the buffered byte count above which a write
// triggers a flush when no threshold is configured.
const DefaultBufferThreshold = 1000

// Settings holds the construction-time configuration of a BufferedWriter.
type Settings struct {
	// BufferThreshold is the number of buffered bytes the writer tolerates.
	// A write that leaves more than BufferThreshold bytes buffered flushes.
	BufferThreshold int `yaml:"bufferThreshold" env:"BUFFER_THRESHOLD"`
}

// DefaultSettings returns Settings with DefaultBufferThreshold.
func DefaultSettings() Settings {
	return Settings{BufferThreshold: DefaultBufferThreshold}
}

// Validate reports whether s can be used to build a writer.
func (s Settings) Validate() error {
	if s.BufferThreshold <= 0 {
		return ErrInvalidThreshold
	}
	return nil
}
