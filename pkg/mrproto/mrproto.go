// Package mrproto provides optional typed-record helpers for mapper and
// reducer subprocesses that want structured values instead of raw
// tab-separated lines. It adapts the stream protocols of the teacher's
// proto.go to GuineaPig's single-key KeyValue record (no secondary sort
// key, since the engine never sorts within a partition beyond the
// grouping done by the shuffler).
package mrproto

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// KeyValue is one record of a mapper's stdout, or of a reducer's
// grouped stdin, before it is joined into a tab-separated line.
type KeyValue struct {
	Key   string
	Value string
}

// Protocol marshals and unmarshals the key/values a mapper emits and a
// reducer receives. Jobs that don't need typed records can skip this
// package entirely and read/write raw lines.
type Protocol interface {
	// Marshal turns a key and a value into a KeyValue ready to be
	// written as a tab-separated line.
	Marshal(key interface{}, value interface{}) KeyValue

	// UnmarshalKVs turns a grouped key and its values back into Go
	// values. k must be a pointer to the key's destination type; vs
	// must be a pointer to a slice of the values' destination type.
	UnmarshalKVs(key string, values []string, k interface{}, vs interface{})
}

// JSONProtocol marshals keys and values as JSON.
type JSONProtocol struct{}

// Marshal implements Protocol.
func (JSONProtocol) Marshal(key, value interface{}) KeyValue {
	k, _ := json.Marshal(key)
	v, _ := json.Marshal(value)
	return KeyValue{string(k), string(v)}
}

// UnmarshalKVs implements Protocol.
func (JSONProtocol) UnmarshalKVs(key string, values []string, k interface{}, vs interface{}) {
	json.Unmarshal([]byte(key), k)

	vsPtrValue := reflect.ValueOf(vs)
	vsType := reflect.TypeOf(vs).Elem()
	v := reflect.MakeSlice(vsType, len(values), len(values))

	for i, js := range values {
		_ = json.Unmarshal([]byte(js), v.Index(i).Addr().Interface())
	}

	vsPtrValue.Elem().Set(v)
}

// TSVProtocol marshals values as tab-separated fields. Keys and fields
// are formatted with primitiveToString and parsed back with fmt.Sscan.
type TSVProtocol struct{}

// Marshal implements Protocol.
func (TSVProtocol) Marshal(key, value interface{}) KeyValue {
	var fields []string

	vVal := reflect.ValueOf(value)
	vType := vVal.Type()

	switch {
	case vType.Kind() == reflect.Struct:
		fields = make([]string, vType.NumField())
		for i := 0; i < vType.NumField(); i++ {
			fields[i] = primitiveToString(vVal.Field(i))
		}
	case isPrimitive(vType.Kind()):
		fields = []string{primitiveToString(vVal)}
	case vType.Kind() == reflect.Array || vType.Kind() == reflect.Slice:
		fields = make([]string, vVal.Len())
		for i := 0; i < vVal.Len(); i++ {
			fields[i] = primitiveToString(vVal.Index(i))
		}
	}

	return KeyValue{
		Key:   primitiveToString(reflect.ValueOf(key)),
		Value: strings.Join(fields, "\t"),
	}
}

// UnmarshalKVs implements Protocol.
func (TSVProtocol) UnmarshalKVs(key string, values []string, k interface{}, vs interface{}) {
	fmt.Sscan(key, k)

	vsPtrValue := reflect.ValueOf(vs)
	vsType := reflect.TypeOf(vs).Elem()
	vType := vsType.Elem()
	v := reflect.MakeSlice(vsType, len(values), len(values))

	for i, line := range values {
		fields := strings.Split(line, "\t")
		e := v.Index(i)

		switch {
		case vType.Kind() == reflect.Struct:
			for j := 0; j < vType.NumField() && j < len(fields); j++ {
				fmt.Sscan(fields[j], e.Field(j).Addr().Interface())
			}
		case vType.Kind() == reflect.Array:
			for j := 0; j < vType.Len() && j < len(fields); j++ {
				fmt.Sscan(fields[j], e.Index(j).Addr().Interface())
			}
		case isPrimitive(vType.Kind()):
			fmt.Sscan(fields[0], e.Addr().Interface())
		}
	}

	vsPtrValue.Elem().Set(v)
}

func isPrimitive(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	}
	return false
}

func primitiveToString(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return "1"
		}
		return "0"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', 5, 64)
	case reflect.String:
		return v.String()
	}
	return fmt.Sprintf("(unsupported type %s)", v.Kind())
}
