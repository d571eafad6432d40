package job

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/gimlids/mrgp/internal/gpfs"
)

// feedFromGPFS is the feeder goroutine of spec.4.C: it streams a GPFS
// file's lines, newline-terminated, into a subprocess's stdin pipe and
// closes the pipe when done.
func feedFromGPFS(fs *gpfs.FS, dir, file string, w io.WriteCloser) error {
	defer w.Close()

	lines, err := fs.Cat(dir, file)
	if err != nil {
		return errors.Wrapf(err, "reading gpfs %s/%s to feed mapper", dir, file)
	}
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return errors.Wrap(err, "writing to mapper stdin")
		}
	}
	return nil
}

// consumeToGPFS is the consumer goroutine of spec.4.C/4.F: it reads a
// subprocess's stdout pipe line by line, stripping the trailing
// newline, and appends each line to the GPFS store.
func consumeToGPFS(fs *gpfs.FS, dir, file string, r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		fs.Append(dir, file, sc.Text())
	}
}
