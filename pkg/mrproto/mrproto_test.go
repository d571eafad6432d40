package mrproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONProtocolRoundTrip(t *testing.T) {
	kv := JSONProtocol{}.Marshal("widgets", 42)
	assert.Equal(t, `"widgets"`, kv.Key)
	assert.Equal(t, "42", kv.Value)

	var key string
	var vals []int
	JSONProtocol{}.UnmarshalKVs(kv.Key, []string{kv.Value, "7"}, &key, &vals)
	assert.Equal(t, "widgets", key)
	assert.Equal(t, []int{42, 7}, vals)
}

func TestTSVProtocolMarshalsStruct(t *testing.T) {
	type record struct {
		Count int
		Name  string
	}
	kv := TSVProtocol{}.Marshal("widgets", record{Count: 3, Name: "foo"})
	assert.Equal(t, "widgets", kv.Key)
	assert.Equal(t, "3\tfoo", kv.Value)
}

func TestTSVProtocolUnmarshalsStructSlice(t *testing.T) {
	type record struct {
		Count int
		Name  string
	}

	var key string
	var records []record
	TSVProtocol{}.UnmarshalKVs("widgets", []string{"3\tfoo", "5\tbar"}, &key, &records)

	require.Len(t, records, 2)
	assert.Equal(t, "widgets", key)
	assert.Equal(t, record{3, "foo"}, records[0])
	assert.Equal(t, record{5, "bar"}, records[1])
}

func TestTSVProtocolMarshalsPrimitiveValue(t *testing.T) {
	kv := TSVProtocol{}.Marshal(7, "hello")
	assert.Equal(t, "7", kv.Key)
	assert.Equal(t, "hello", kv.Value)
}

func TestPrimitiveToStringHandlesBoolAndFloat(t *testing.T) {
	kv := TSVProtocol{}.Marshal("k", true)
	assert.Equal(t, "1", kv.Value)

	kv = TSVProtocol{}.Marshal("k", 2.5)
	assert.Equal(t, "2.5", kv.Value)
}
