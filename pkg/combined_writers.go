package pkg

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter tees every write to all of its writers. A failing writer
// does not stop the others: the write succeeds if at least one writer took
// the whole buffer, and the errors of the others are still returned.
type CombinedWriter struct {
	writers []io.Writer
}

// NewCombinedWriter skips nil writers, so optional outputs can be passed as is.
func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	cw := &CombinedWriter{}
	for _, w := range writers {
		if w != nil {
			cw.writers = append(cw.writers, w)
		}
	}
	return cw
}

func (cw *CombinedWriter) Len() int {
	return len(cw.writers)
}

func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var (
		errs     error
		accepted bool
	)
	for i, w := range cw.writers {
		n, err := w.Write(p)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("writer %d: %w", i, err))
			continue
		}
		if n == len(p) {
			accepted = true
		}
	}
	if !accepted {
		return 0, multierr.Append(errs, io.ErrShortWrite)
	}
	return len(p), errs
}
