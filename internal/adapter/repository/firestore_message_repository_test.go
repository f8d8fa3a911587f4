package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCreatedAt(t *testing.T) {
	ref := time.Date(2024, 11, 2, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
		want time.Time
	}{
		{"native timestamp", ref, ref},
		{"iso string", "2024-11-02T09:30:00.000Z", ref},
		{"epoch millis int", ref.UnixMilli(), time.UnixMilli(ref.UnixMilli())},
		{"epoch millis float", float64(ref.UnixMilli()), time.UnixMilli(ref.UnixMilli())},
		{"epoch millis string", "1730539800000", time.UnixMilli(1730539800000)},
		{"garbage", "yesterday", time.Time{}},
		{"missing", nil, time.Time{}},
		{"negative", int64(-5), time.Time{}},
		{"native timestamp before epoch", time.Date(1969, 7, 20, 20, 17, 0, 0, time.UTC), time.Time{}},
		{"native unix epoch", time.Unix(0, 0), time.Time{}},
		{"iso string before epoch", "1960-01-01T00:00:00Z", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeCreatedAt(tt.in)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	msg := decodeMessage("R1", "M1", map[string]interface{}{
		"text":      "Is the room still free?",
		"senderId":  "B1",
		"createdAt": "2024-11-02T09:30:00Z",
		"extra":     true,
	})

	assert.Equal(t, "M1", msg.ID)
	assert.Equal(t, "R1", msg.RoomID)
	assert.Equal(t, "Is the room still free?", msg.Text)
	assert.Equal(t, "B1", msg.SenderID)
	assert.Empty(t, msg.SenderName)
	assert.Equal(t, int64(1730539800000), msg.Epoch())
}
