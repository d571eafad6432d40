package job

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gimlids/mrgp/internal/gpfs"
)

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

func TestFeedFromGPFSWritesNewlineTerminatedLines(t *testing.T) {
	fs := gpfs.New()
	fs.Append("gpfs:in", "f", "one")
	fs.Append("gpfs:in", "f", "two")

	var buf bytes.Buffer
	err := feedFromGPFS(fs, "gpfs:in", "f", nopWriteCloser{&buf})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", buf.String())
}

func TestFeedFromGPFSWrapsMissingFile(t *testing.T) {
	fs := gpfs.New()
	var buf bytes.Buffer
	err := feedFromGPFS(fs, "gpfs:in", "missing", nopWriteCloser{&buf})
	assert.Error(t, err)
}

func TestConsumeToGPFSAppendsEachLine(t *testing.T) {
	fs := gpfs.New()
	r := io.NopCloser(bytes.NewBufferString("a\nb\nc\n"))
	consumeToGPFS(fs, "gpfs:out", "f", r)

	lines, err := fs.Cat("gpfs:out", "f")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, lines)
}

func TestSendReduceInputWritesKeysInOrder(t *testing.T) {
	buf := newGroupBuffer()
	buf.extend("b", []string{"b1\n"})
	buf.extend("a", []string{"a1\n", "a2\n"})

	var out bytes.Buffer
	err := sendReduceInput(buf, nopWriteCloser{&out})
	require.NoError(t, err)
	assert.Equal(t, "b1\na1\na2\n", out.String())
}
