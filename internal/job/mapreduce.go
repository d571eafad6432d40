package job

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gimlids/mrgp/internal/ioadapter"
)

func shellCommand(command string) *exec.Cmd {
	return exec.Command("sh", "-c", command)
}

// mapReduce runs the strictly-ordered sequence of spec.4.G: resolve
// adapters, build intake, spawn every mapper (and its feeder/shuffler)
// from this goroutine, join all mapper work, drain intake, spawn every
// reducer (and its sender/consumer) from this goroutine, join all
// reducer work.
func (c *Coordinator) mapReduce(opts Options) error {
	plan, err := ioadapter.Resolve(c.FS, c.Log, opts.Input, opts.Output)
	if err != nil {
		return errors.Wrap(err, "resolving job inputs")
	}

	numPartitions := opts.numReduceTasks()
	in := newIntake(numPartitions, c.Log)

	mapTasks := new(errgroup.Group)

	for _, fi := range plan.Infiles {
		fi := fi

		cmd := shellCommand(opts.Mapper)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return errors.Wrap(err, "creating mapper stdout pipe")
		}

		var feed func() error
		var inputFile *os.File
		if plan.Side.Input {
			stdin, err := cmd.StdinPipe()
			if err != nil {
				return errors.Wrap(err, "creating mapper stdin pipe")
			}
			feed = func() error { return feedFromGPFS(c.FS, opts.Input, fi, stdin) }
		} else {
			f, err := os.Open(filepath.Join(opts.Input, fi))
			if err != nil {
				return errors.Wrapf(err, "opening input shard %q", fi)
			}
			cmd.Stdin = f
			inputFile = f
		}

		// Subprocess creation happens here, on the coordinator goroutine,
		// never inside a feeder/shuffler goroutine -- see spec.4.C.
		if err := cmd.Start(); err != nil {
			return errors.Wrapf(err, "starting mapper for shard %q", fi)
		}
		c.Log.WithFields(logrus.Fields{"shard": fi, "pid": cmd.Process.Pid}).Info("spawned mapper")
		// The child has its own duplicated fd after Start, so the parent's
		// handle can close immediately instead of staying open for the
		// whole job.
		if inputFile != nil {
			inputFile.Close()
		}

		mapTasks.Go(func() error { return runMapperTask(cmd, stdout, feed, in, numPartitions) })
	}

	if err := mapTasks.Wait(); err != nil {
		return errors.Wrap(err, "running mappers")
	}

	in.drain()

	reducerTasks := new(errgroup.Group)

	for j := 0; j < numPartitions; j++ {
		j := j
		partName := fmt.Sprintf("part%05d", j)

		cmd := shellCommand(opts.Reducer)
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return errors.Wrap(err, "creating reducer stdin pipe")
		}

		var consume func() error
		var outputFile *os.File
		if plan.Side.Output {
			stdout, err := cmd.StdoutPipe()
			if err != nil {
				return errors.Wrap(err, "creating reducer stdout pipe")
			}
			consume = func() error {
				consumeToGPFS(c.FS, opts.Output, partName, stdout)
				return nil
			}
		} else {
			f, err := os.Create(filepath.Join(opts.Output, partName))
			if err != nil {
				return errors.Wrapf(err, "creating output file %q", partName)
			}
			cmd.Stdout = f
			outputFile = f
		}

		if err := cmd.Start(); err != nil {
			return errors.Wrapf(err, "starting reducer for partition %d", j)
		}
		c.Log.WithFields(logrus.Fields{"partition": j, "pid": cmd.Process.Pid}).Info("spawned reducer")
		if outputFile != nil {
			outputFile.Close()
		}

		buf := in.buffers[j]
		reducerTasks.Go(func() error { return runReducerTask(cmd, buf, stdin, consume) })
	}

	if err := reducerTasks.Wait(); err != nil {
		return errors.Wrap(err, "running reducers")
	}

	return nil
}
