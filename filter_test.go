package ggbench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcceptSample(t *testing.T) {
	tests := []struct {
		name     string
		previous time.Duration
		current  time.Duration
		minimum  time.Duration
		want     bool
	}{
		{"one refresh", 0, 16 * time.Millisecond, CallbackMinimumFrameDuration, true},
		{"double fire", 16 * time.Millisecond, 24 * time.Millisecond, CallbackMinimumFrameDuration, false},
		{"just short", 0, 15 * time.Millisecond, CallbackMinimumFrameDuration, false},
		{"long frame", 0, 100 * time.Millisecond, CallbackMinimumFrameDuration, true},
		{"manual zero", 5, 5, ManualMinimumFrameDuration, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, ok := AcceptSample(tt.previous, tt.current, tt.minimum)
			assert.Equal(t, tt.current-tt.previous, delta)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestAcceptSampleSequence(t *testing.T) {
	var accepted []time.Duration
	var prev time.Duration
	for _, d := range []int{16, 8, 17, 15, 16} {
		ts := prev + time.Duration(d)*time.Millisecond
		if delta, ok := AcceptSample(prev, ts, CallbackMinimumFrameDuration); ok {
			accepted = append(accepted, delta)
		}
		prev = ts
	}
	assert.Equal(t, ms(16, 17, 16), accepted)
}

func TestMinimumFrameDuration(t *testing.T) {
	assert.Equal(t, 16*time.Millisecond, MinimumFrameDuration(CallbackClock))
	assert.Equal(t, time.Duration(0), MinimumFrameDuration(ManualClock))
}

func BenchmarkAcceptSample(b *testing.B) {
	var prev, ts time.Duration
	b.ReportAllocs()
	for b.Loop() {
		ts += 17 * time.Millisecond
		_, _ = AcceptSample(prev, ts, CallbackMinimumFrameDuration)
		prev = ts
	}
}
