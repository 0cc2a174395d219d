package nds

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelolagemann/dsrtc/internal/types"
)

func TestNewDefaultsToHostTime(t *testing.T) {
	n := New()

	year, _, _, _, _, _ := n.RTC.GetDateTime()
	assert.Equal(t, time.Now().Year(), year)
}

func TestNewNoSync(t *testing.T) {
	n := New(NoSync())

	year, month, day, hour, minute, second := n.RTC.GetDateTime()
	assert.Equal(t, []int{2000, 1, 1, 0, 0, 0}, []int{year, month, day, hour, minute, second})
}

func TestAsModel(t *testing.T) {
	assert.Equal(t, types.DS, New(NoSync()).Model())
	assert.Equal(t, types.DSi, New(NoSync(), AsModel(types.DSi)).Model())
	assert.Equal(t, types.DSi, New(NoSync(), AsModel(types.DSi)).RTC.Model())
}

func TestRunAdvancesClock(t *testing.T) {
	n := New(NoSync())

	n.Run(ClockSpeed * 61)
	_, _, _, _, minute, second := n.RTC.GetDateTime()
	assert.Equal(t, 1, minute)
	assert.Equal(t, 1, second)
}

func TestStateRoundTrip(t *testing.T) {
	n1 := New(NoSync(), AsModel(types.DSi))
	n1.RTC.SetDateTime(2023, 6, 15, 13, 37, 42)
	n1.Run(ClockSpeed * 5)

	s := types.NewState()
	n1.Save(s)

	n2 := New(NoSync(), WithState(s.Bytes()))
	assert.Equal(t, types.DSi, n2.Model())

	y1, mo1, d1, h1, mi1, s1 := n1.RTC.GetDateTime()
	y2, mo2, d2, h2, mi2, s2 := n2.RTC.GetDateTime()
	assert.Equal(t, []int{y1, mo1, d1, h1, mi1, s1}, []int{y2, mo2, d2, h2, mi2, s2})
}

func TestStateFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.dst")

	n1 := New(NoSync())
	n1.RTC.SetDateTime(2024, 2, 29, 6, 7, 8)
	require.NoError(t, n1.SaveStateFile(path))

	n2 := New(NoSync())
	require.NoError(t, n2.LoadStateFile(path))

	y, mo, d, h, mi, s := n2.RTC.GetDateTime()
	assert.Equal(t, []int{2024, 2, 29, 6, 7, 8}, []int{y, mo, d, h, mi, s})
}
