// Package job implements the concurrent map-reduce pipeline: mapper
// subprocesses, shuffler goroutines, per-partition intake workers and
// grouping buffers, and reducer subprocesses, wired together by a
// coordinator that enforces the mapper-before-reducer join order.
package job

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gimlids/mrgp/internal/gpfs"
)

// Options is a job descriptor: the inputs to a single map-reduce (or
// map-only, when Reducer is empty) run.
type Options struct {
	Input          string
	Output         string
	Mapper         string
	Reducer        string
	NumReduceTasks int
}

func (o Options) numReduceTasks() int {
	if o.NumReduceTasks <= 0 {
		return 1
	}
	return o.NumReduceTasks
}

// Coordinator assembles the GPFS store and a logger into something that
// can run jobs. One Coordinator serializes task execution with a mutex
// so that concurrent HTTP `task` requests never interleave mapper and
// reducer phases.
type Coordinator struct {
	FS  *gpfs.FS
	Log *logrus.Logger

	mu sync.Mutex
}

// Run executes a job end to end: map-reduce when a reducer command is
// given, map-only otherwise.
func (c *Coordinator) Run(opts Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if opts.Reducer != "" {
		return c.mapReduce(opts)
	}
	return c.mapOnly(opts)
}
