package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOffscreenResizeRunsOnPoll(t *testing.T) {
	o := NewOffscreen(32, 16)
	assert.Equal(t, 32, o.Info().Width)
	assert.Equal(t, 16, o.Info().Height)

	var got [2]int
	o.SetResizeCallback(func(w, h int) { got = [2]int{w, h} })
	o.Resize(64, 48)
	assert.Equal(t, [2]int{}, got, "callback waits for the main thread poll")

	o.PollEvents(0)
	assert.Equal(t, [2]int{64, 48}, got)
	assert.Equal(t, 64, o.Info().Width)
}

func TestOffscreenCloseWakesPoll(t *testing.T) {
	o := NewOffscreen(1, 1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		o.SetShouldClose(true)
	}()
	start := time.Now()
	o.PollEvents(5 * time.Second)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, o.ShouldClose())
}
