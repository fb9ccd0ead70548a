package protect

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemaining_MonotonicAndNonNegative(t *testing.T) {
	expiresAt := int64(3_600_000)
	prev := time.Duration(1<<62 - 1)
	for ms := int64(-1000); ms <= 4_000_000; ms += 7_919 {
		got := Remaining(expiresAt, time.UnixMilli(ms))
		assert.GreaterOrEqual(t, got, time.Duration(0))
		assert.LessOrEqual(t, got, prev)
		prev = got
	}
	assert.Equal(t, time.Duration(0), Remaining(expiresAt, time.UnixMilli(expiresAt)))

	// A hand-edited exp far beyond the Duration range must not wrap
	now := time.UnixMilli(1_700_000_000_000)
	for _, exp := range []int64{11_000_000_000_000, 1e16, math.MaxInt64} {
		assert.Equal(t, time.Duration(math.MaxInt64), Remaining(exp, now), "exp=%d", exp)
		assert.Equal(t, exp-now.UnixMilli(), RemainingMillis(exp, now), "exp=%d", exp)
		assert.Equal(t, (exp-now.UnixMilli())/60_000, MinutesLeft(exp, now), "exp=%d", exp)
	}
	assert.Equal(t, int64(math.MaxInt64), RemainingMillis(math.MaxInt64, time.UnixMilli(-1_000)))
}

func TestMinutesLeft(t *testing.T) {
	assert.Equal(t, int64(1), MinutesLeft(120_000, time.UnixMilli(1)))
	assert.Equal(t, int64(2), MinutesLeft(120_000, time.UnixMilli(0)))
	assert.Equal(t, int64(0), MinutesLeft(0, time.UnixMilli(999_999)))
}

func TestWatermark_TileCountIsConstant(t *testing.T) {
	now := time.Unix(0, 0)
	short := NewWatermark(now)
	long := short
	long.Label = strings.Repeat("very long label ", 100)

	assert.Equal(t, 400, short.Tiles())
	assert.Equal(t, short.Tiles(), long.Tiles())

	grid := long.Grid()
	assert.Len(t, grid, WatermarkRows)
	for _, row := range grid {
		assert.Len(t, row, WatermarkCols)
	}
}

func TestKeyVerdict(t *testing.T) {
	tests := []struct {
		key  KeyEvent
		want Verdict
	}{
		{KeyEvent{Key: "P", Ctrl: true}, Verdict{Cancel: true, Notice: NoticePrint}},
		{KeyEvent{Key: "s", Ctrl: true}, Verdict{Cancel: true, Notice: NoticeSave}},
		{KeyEvent{Key: "C", Meta: true}, Verdict{Cancel: true}},
		{KeyEvent{Key: "a", Ctrl: true}, Verdict{}},
		{KeyEvent{Key: "PrintScreen"}, Verdict{}},
		{KeyEvent{Key: "s"}, Verdict{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KeyVerdict(tt.key), tt.key)
	}
}

func TestLayout_PageWidth(t *testing.T) {
	assert.Equal(t, 800, DefaultLayout.PageWidth(832))
	assert.Equal(t, 799, DefaultLayout.PageWidth(831))
	assert.Equal(t, 0, DefaultLayout.PageWidth(0))
	assert.Equal(t, 76, Layout{Padding: 4, MaxWidth: 100}.PageWidth(80))
}

func TestDispatcher_MergesVerdicts(t *testing.T) {
	d := NewDispatcher()
	release := d.Subscribe(EventKeyDown, func(Event) Verdict { return Verdict{Notice: "first"} })
	d.Subscribe(EventKeyDown, func(Event) Verdict { return Verdict{Cancel: true} })

	v := d.Dispatch(Event{Kind: EventKeyDown})
	assert.True(t, v.Cancel)
	assert.Equal(t, "first", v.Notice)

	release()
	assert.Equal(t, 1, d.Listeners(EventKeyDown))
	assert.Equal(t, Verdict{}, d.Dispatch(Event{Kind: EventResize}))
}
