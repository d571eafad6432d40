package job

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gimlids/mrgp/internal/ioadapter"
)

// mapOnly runs spec.4.G's map-only sequence: one of four wiring
// patterns per shard depending on which sides are GPFS, spawned from
// this goroutine, then joined.
func (c *Coordinator) mapOnly(opts Options) error {
	plan, err := ioadapter.Resolve(c.FS, c.Log, opts.Input, opts.Output)
	if err != nil {
		return errors.Wrap(err, "resolving job inputs")
	}

	tasks := new(errgroup.Group)

	for _, fi := range plan.Infiles {
		fi := fi
		cmd := shellCommand(opts.Mapper)

		var feed, consume func() error
		var openFiles []*os.File

		switch {
		case plan.Side.Input && !plan.Side.Output:
			stdin, err := cmd.StdinPipe()
			if err != nil {
				return errors.Wrap(err, "creating mapper stdin pipe")
			}
			f, err := os.Create(filepath.Join(opts.Output, fi))
			if err != nil {
				return errors.Wrapf(err, "creating output file %q", fi)
			}
			cmd.Stdout = f
			openFiles = append(openFiles, f)
			feed = func() error { return feedFromGPFS(c.FS, opts.Input, fi, stdin) }

		case !plan.Side.Input && plan.Side.Output:
			f, err := os.Open(filepath.Join(opts.Input, fi))
			if err != nil {
				return errors.Wrapf(err, "opening input shard %q", fi)
			}
			cmd.Stdin = f
			openFiles = append(openFiles, f)
			stdout, err := cmd.StdoutPipe()
			if err != nil {
				return errors.Wrap(err, "creating mapper stdout pipe")
			}
			consume = func() error { consumeToGPFS(c.FS, opts.Output, fi, stdout); return nil }

		case plan.Side.Input && plan.Side.Output:
			stdin, err := cmd.StdinPipe()
			if err != nil {
				return errors.Wrap(err, "creating mapper stdin pipe")
			}
			stdout, err := cmd.StdoutPipe()
			if err != nil {
				return errors.Wrap(err, "creating mapper stdout pipe")
			}
			feed = func() error { return feedFromGPFS(c.FS, opts.Input, fi, stdin) }
			consume = func() error { consumeToGPFS(c.FS, opts.Output, fi, stdout); return nil }

		default: // host -> host
			f, err := os.Open(filepath.Join(opts.Input, fi))
			if err != nil {
				return errors.Wrapf(err, "opening input shard %q", fi)
			}
			cmd.Stdin = f
			out, err := os.Create(filepath.Join(opts.Output, fi))
			if err != nil {
				return errors.Wrapf(err, "creating output file %q", fi)
			}
			cmd.Stdout = out
			openFiles = append(openFiles, f, out)
		}

		if err := cmd.Start(); err != nil {
			return errors.Wrapf(err, "starting mapper for shard %q", fi)
		}
		c.Log.WithFields(logrus.Fields{"shard": fi, "pid": cmd.Process.Pid}).Info("spawned map-only mapper")
		// The child has its own duplicated fds after Start, so the parent's
		// handles can close immediately instead of staying open for the
		// whole job.
		for _, f := range openFiles {
			f.Close()
		}

		tasks.Go(func() error { return runMapOnlyTask(cmd, feed, consume) })
	}

	if err := tasks.Wait(); err != nil {
		return errors.Wrap(err, "running map-only mappers")
	}
	return nil
}

// runMapOnlyTask drains/feeds whichever pipes a shard's wiring created
// before reaping the process, for the same reason runMapperTask does.
func runMapOnlyTask(cmd *exec.Cmd, feed, consume func() error) error {
	pipes := new(errgroup.Group)
	if feed != nil {
		pipes.Go(feed)
	}
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
