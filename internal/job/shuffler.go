package job

import (
	"bufio"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// partitionOf returns hash(key) mod k, the reducer bucket a key belongs
// to. xxhash gives a hash that is deterministic within a process run,
// which is all the contract in spec.4.D requires.
func partitionOf(key string, k int) int {
	return int(xxhash.Sum64String(key) % uint64(k))
}

func keyOf(line string) string {
	if idx := strings.IndexByte(line, '\t'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// shuffleMapperOutput is the per-mapper goroutine of spec.4.D: it reads
// every line of a mapper's stdout, buckets it by hash(key) mod K into
// an in-goroutine buffer, and on EOF bulk-delivers each populated
// bucket to the corresponding intake worker.
//
// It does not wait on the mapper process itself -- per the os/exec
// StdoutPipe contract, the process must not be reaped until this read
// loop has fully drained the pipe, so the caller waits on the process
// only after this (and any stdin feeder) has returned.
func shuffleMapperOutput(stdout io.Reader, in *intake, numPartitions int) error {
	shufbuf := make([]partitionGroup, numPartitions)

	sc := bufio.NewScanner(stdout)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text() + "\n"
		key := keyOf(line)
		h := partitionOf(key, numPartitions)
		if shufbuf[h] == nil {
			shufbuf[h] = make(partitionGroup)
		}
		shufbuf[h][key] = append(shufbuf[h][key], line)
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "reading mapper stdout")
	}

	for h, group := range shufbuf {
		if len(group) == 0 {
			continue
		}
		in.deliver(h, group)
	}
	return nil
}
