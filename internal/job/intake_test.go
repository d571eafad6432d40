package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupBufferExtendPreservesInsertionOrder(t *testing.T) {
	buf := newGroupBuffer()
	buf.extend("b", []string{"b1\n"})
	buf.extend("a", []string{"a1\n"})
	buf.extend("b", []string{"b2\n"})

	require.Equal(t, []string{"b", "a"}, buf.order)
	assert.Equal(t, []string{"b1\n", "b2\n"}, buf.lines["b"])
	assert.Equal(t, []string{"a1\n"}, buf.lines["a"])
}

func TestIntakeDeliverAndDrainMergesGroups(t *testing.T) {
	log := newTestLogger()
	in := newIntake(2, log)
	defer closeIntake(in)

	in.deliver(0, partitionGroup{"k1": {"v1\n"}})
	in.deliver(0, partitionGroup{"k1": {"v2\n"}, "k2": {"v3\n"}})
	in.deliver(1, partitionGroup{"k3": {"v4\n"}})

	in.drain()

	assert.Equal(t, []string{"v1\n", "v2\n"}, in.buffers[0].lines["k1"])
	assert.Equal(t, []string{"v3\n"}, in.buffers[0].lines["k2"])
	assert.Equal(t, []string{"v4\n"}, in.buffers[1].lines["k3"])
}
