package rediserr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want interface{}
	}{
		{"wrongtype", "WRONGTYPE Operation against a key holding the wrong kind of value", &WrongType{}},
		{"busygroup", "BUSYGROUP Consumer Group name already exists", &BusyGroup{}},
		{"nogroup", "NOGROUP No such key or consumer group", &NoGroup{}},
		{"noscript", "NOSCRIPT No matching script", &NoScript{}},
		{"busy", "BUSY Redis is busy running a script", &Busy{}},
		{"notbusy", "NOTBUSY No scripts in execution right now", &NotBusy{}},
		{"fallback", "unrecognized lowercase message", &ServerError{}},
		{"plain ERR", "ERR unknown command", &ServerError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestClassifyMoved(t *testing.T) {
	err := Classify("MOVED 12182 127.0.0.1:7001")
	require.IsType(t, &Moved{}, err)
	moved := err.(*Moved)
	assert.Equal(t, 12182, moved.Slot)
	assert.Equal(t, "127.0.0.1:7001", moved.Address)
}

func TestClassifyAsk(t *testing.T) {
	err := Classify("ASK 5474 127.0.0.1:7001")
	require.IsType(t, &Ask{}, err)
	ask := err.(*Ask)
	assert.Equal(t, 5474, ask.Slot)
	assert.Equal(t, "127.0.0.1:7001", ask.Address)
}
