package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFPSLimiterUnlimitedDoesNotBlock(t *testing.T) {
	f := &FPSLimiter{limit: func() int { return 0 }}
	start := time.Now()
	for range 100 {
		f.Wait()
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.True(t, f.next.IsZero())
}

func TestFPSLimiterPaces(t *testing.T) {
	f := &FPSLimiter{limit: func() int { return 100 }}
	start := time.Now()
	for range 5 {
		f.Wait()
	}
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestFPSLimiterResyncsWhenLate(t *testing.T) {
	f := &FPSLimiter{limit: func() int { return 1000 }}
	f.Wait()
	time.Sleep(20 * time.Millisecond)
	f.Wait()
	assert.True(t, f.next.After(time.Now().Add(-time.Millisecond)), "late frame schedules from now")
}
