package job

import (
	"io"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// runMapperTask drains a started mapper's stdout (and, if present,
// feeds its stdin) before reaping it. os/exec requires every read from
// a manually-obtained StdoutPipe to finish before Wait is called, or
// Wait may close the pipe out from under an in-progress read.
func runMapperTask(cmd *exec.Cmd, stdout io.Reader, feed func() error, in *intake, numPartitions int) error {
	pipes := new(errgroup.Group)
	pipes.Go(func() error { return shuffleMapperOutput(stdout, in, numPartitions) })
	if feed != nil {
		pipes.Go(feed)
	}
	pipeErr := pipes.Wait()

	waitErr := nonExitError(cmd.Wait())
	if pipeErr != nil {
		return pipeErr
	}
	return waitErr
}

// runReducerTask mirrors runMapperTask for the reducer side: it feeds
// stdin and drains stdout (if GPFS-backed) before reaping the process.
func runReducerTask(cmd *exec.Cmd, buf *groupBuffer, stdin io.WriteCloser, consume func() error) error {
	pipes := new(errgroup.Group)
	pipes.Go(func() error { return sendReduceInput(buf, stdin) })
	if consume != nil {
		pipes.Go(consume)
	}
	pipeErr := pipes.Wait()

	waitErr := nonExitError(cmd.Wait())
	if pipeErr != nil {
		return pipeErr
	}
	return waitErr
}
