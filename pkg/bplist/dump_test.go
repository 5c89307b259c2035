package bplist

import (
	"bytes"
	"strings"
	"testing"
)

func TestValueStringScalarKinds(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"bool", Value{Tag: TagBool, Bool: true}, "true"},
		{"int", Value{Tag: TagInt, Int: 42}, "42"},
		{"string", Value{Tag: TagAsciiString, Str: "hi"}, "hi"},
		{"data", Value{Tag: TagData, Data: []byte{1, 2, 3}}, "<3 bytes>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueDumpRecursesIntoDict(t *testing.T) {
	d := NewDict()
	d.Set("name", Value{Tag: TagAsciiString, Str: "world"})
	v := Value{Tag: TagDict, Dict: d}

	var buf bytes.Buffer
	v.Dump(&buf)

	out := buf.String()
	if !strings.Contains(out, "name:") || !strings.Contains(out, "world") {
		t.Errorf("Dump() output missing expected content: %q", out)
	}
}
