package job

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// partitionGroup is a key->lines mapping produced by one shuffler for
// one partition. It is delivered as a single item so that channel
// traffic is O(partitions x mappers), not O(records).
type partitionGroup map[string][]string

// groupBuffer is a per-partition accumulator: key->lines, in the
// insertion order keys first appeared. It is written only during the
// mapping phase and read only during the reducing phase, so it needs
// no lock of its own -- the phase fence in the coordinator separates
// writers from readers in time.
type groupBuffer struct {
	order []string
	lines map[string][]string
}

func newGroupBuffer() *groupBuffer {
	return &groupBuffer{lines: make(map[string][]string)}
}

func (g *groupBuffer) extend(key string, newLines []string) {
	if _, ok := g.lines[key]; !ok {
		g.order = append(g.order, key)
	}
	g.lines[key] = append(g.lines[key], newLines...)
}

// intake is the set of K partition channels, grouping buffers, and
// daemon workers described in spec.4.E. Workers are never stopped;
// drain is observed via a per-partition in-flight counter rather than
// channel closure.
type intake struct {
	buffers  []*groupBuffer
	channels []chan partitionGroup
	inFlight []*sync.WaitGroup
}

func newIntake(k int, log *logrus.Logger) *intake {
	it := &intake{
		buffers:  make([]*groupBuffer, k),
		channels: make([]chan partitionGroup, k),
		inFlight: make([]*sync.WaitGroup, k),
	}
	for j := 0; j < k; j++ {
		it.buffers[j] = newGroupBuffer()
		it.channels[j] = make(chan partitionGroup, 16)
		it.inFlight[j] = &sync.WaitGroup{}
		go it.worker(j, log)
	}
	return it
}

// deliver hands a shuffler's group for partition j to that partition's
// intake worker. Callers must call this before joining the shufflers,
// so that drain() -- called only after that join -- never races Add.
func (it *intake) deliver(j int, group partitionGroup) {
	it.inFlight[j].Add(1)
	it.channels[j] <- group
}

// drain blocks until every delivered group has been merged into its
// grouping buffer.
func (it *intake) drain() {
	for _, wg := range it.inFlight {
		wg.Wait()
	}
}

func (it *intake) worker(j int, log *logrus.Logger) {
	for group := range it.channels[j] {
		nLines, nKeys := 0, 0
		for key, lines := range group {
			it.buffers[j].extend(key, lines)
			nLines += len(lines)
			nKeys++
		}
		log.WithFields(logrus.Fields{"partition": j, "keys": nKeys, "lines": nLines}).Debug("accepted reduce input group")
		it.inFlight[j].Done()
	}
}
