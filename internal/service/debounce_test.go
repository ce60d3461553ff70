package service_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortano/docsync/internal/service"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	d := service.NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { fired.Add(1) })
	}

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestDebouncer_LatestRequestWins(t *testing.T) {
	d := service.NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var got atomic.Int32
	d.Trigger(func() { got.Store(1) })
	d.Trigger(func() { got.Store(2) })

	require.Eventually(t, func() bool {
		return got.Load() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := service.NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int32
	d.Trigger(func() { fired.Add(1) })
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestDebouncer_TriggerAfterOverridesDelay(t *testing.T) {
	d := service.NewDebouncer(time.Hour)
	defer d.Stop()

	var fired atomic.Int32
	d.TriggerAfter(time.Millisecond, func() { fired.Add(1) })

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, time.Millisecond)
}
