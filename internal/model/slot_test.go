package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSlot(t *testing.T) {
	cases := []struct {
		text string
		want Slot
		ok   bool
	}{
		{"7:00PM", Slot{19, 0}, true},
		{"07:00PM", Slot{19, 0}, true},
		{"12:15 pm", Slot{12, 15}, true},
		{"11:45AM", Slot{11, 45}, true},
		{"12:00AM", Slot{0, 0}, true},
		{"  8:30PM ", Slot{20, 30}, true},
		{"Dining Room", Slot{}, false},
		{"", Slot{}, false},
		{"25:00PM", Slot{}, false},
	}

	for _, tc := range cases {
		got, ok := ParseSlot(tc.text)
		assert.Equal(t, tc.ok, ok, "ParseSlot(%q)", tc.text)
		if tc.ok {
			assert.Equal(t, tc.want, got, "ParseSlot(%q)", tc.text)
		}
	}
}

func TestSlotString(t *testing.T) {
	assert.Equal(t, "07:00PM", Slot{19, 0}.String())
	assert.Equal(t, "08:30PM", Slot{20, 30}.String())
	assert.Equal(t, "12:00AM", Slot{0, 0}.String())
	assert.Equal(t, "12:15PM", Slot{12, 15}.String())
}

func TestSlotWindowHalfOpen(t *testing.T) {
	// min_hour:00 in, max_hour:00 out
	assert.True(t, Slot{18, 0}.InWindow(18, 22))
	assert.True(t, Slot{21, 59}.InWindow(18, 22))
	assert.False(t, Slot{22, 0}.InWindow(18, 22))
	assert.False(t, Slot{22, 30}.InWindow(18, 22))
	assert.False(t, Slot{17, 59}.InWindow(18, 22))
}

func TestEarliestSlot(t *testing.T) {
	slots := []Slot{{20, 30}, {19, 0}, {19, 15}}
	assert.Equal(t, Slot{19, 0}, EarliestSlot(slots))
}
