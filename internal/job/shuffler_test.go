package job

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionOfIsDeterministic(t *testing.T) {
	a := partitionOf("banana", 8)
	b := partitionOf("banana", 8)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, 8)
}

func TestKeyOfSplitsOnFirstTab(t *testing.T) {
	assert.Equal(t, "apple", keyOf("apple\t3\n"))
	assert.Equal(t, "no-tab-line\n", keyOf("no-tab-line\n"))
}

func TestShuffleMapperOutputGroupsByPartition(t *testing.T) {
	stdout := strings.NewReader("apple\t1\nbanana\t2\napple\t3\n")

	log := newTestLogger()
	in := newIntake(4, log)
	defer closeIntake(in)

	err := shuffleMapperOutput(stdout, in, 4)
	require.NoError(t, err)
	in.drain()

	total := 0
	for _, buf := range in.buffers {
		for _, lines := range buf.lines {
			total += len(lines)
		}
	}
	assert.Equal(t, 3, total)

	h := partitionOf("apple", 4)
	assert.Equal(t, []string{"apple\t1\n", "apple\t3\n"}, in.buffers[h].lines["apple"])
}
