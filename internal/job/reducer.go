package job

import (
	"io"

	"github.com/pkg/errors"
)

// sendReduceInput is the per-reducer sender goroutine of spec.4.F: it
// writes a grouping buffer's lines to the reducer's stdin in insertion
// order, with every line for a key contiguous, then closes stdin.
//
// It does not wait on the reducer process; see shuffleMapperOutput for
// why pipe draining and process reaping are kept in strict sequence.
func sendReduceInput(buf *groupBuffer, stdin io.WriteCloser) error {
	defer stdin.Close()

	for _, key := range buf.order {
		for _, line := range buf.lines[key] {
			if _, err := io.WriteString(stdin, line); err != nil {
				return errors.Wrap(err, "writing to reducer stdin")
			}
		}
	}
	return nil
}
