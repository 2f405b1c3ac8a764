// internal/fields/build_test.go
package fields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/cnc-poller/internal/device/devicetest"
)

func TestBuild_DefaultProfileIsFullCatalog(t *testing.T) {
	set, err := Build(Selection{})
	require.NoError(t, err)
	assert.Equal(t, Catalog(), set.Names())
	assert.Len(t, set.Names(), 13)
}

func TestBuild_Profiles(t *testing.T) {
	basic, err := Build(Selection{Profile: ProfileBasic})
	require.NoError(t, err)
	assert.Equal(t, []string{ID, Speed, Speeds, FeedRate}, basic.Names())

	lite, err := Build(Selection{Profile: ProfileLite})
	require.NoError(t, err)
	assert.NotContains(t, lite.Names(), AxisData)
	assert.NotContains(t, lite.Names(), OtherData)
	assert.Contains(t, lite.Names(), ModalGCode)

	_, err = Build(Selection{Profile: "turbo"})
	assert.Error(t, err)
}

func TestBuild_IncludeWinsAndKeepsOrder(t *testing.T) {
	set, err := Build(Selection{
		Profile: ProfileBasic,
		Include: []string{ModalGCode, ID, FeedRateAndSpeed},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{ModalGCode, ID, FeedRateAndSpeed}, set.Names())
}

func TestBuild_Exclude(t *testing.T) {
	set, err := Build(Selection{Exclude: []string{AxisData, OtherData}})
	require.NoError(t, err)

	lite, err := Build(Selection{Profile: ProfileLite})
	require.NoError(t, err)
	assert.Equal(t, lite.Names(), set.Names())
}

func TestBuild_Rejects(t *testing.T) {
	_, err := Build(Selection{Include: []string{"bogus"}})
	assert.Error(t, err)

	_, err = Build(Selection{Include: []string{ID, ID}})
	assert.Error(t, err)

	_, err = Build(Selection{Exclude: []string{"bogus"}})
	assert.Error(t, err)

	_, err = Build(Selection{Include: []string{ID}, Exclude: []string{ID}})
	assert.Error(t, err)
}

func TestCatalogReadsHitTheirDeviceOps(t *testing.T) {
	h := devicetest.New()
	set, err := Build(Selection{Profile: ProfileFull})
	require.NoError(t, err)

	for i := 0; i < set.Len(); i++ {
		_, err := set.At(i).Read(h)
		require.NoError(t, err, set.At(i).Name)
	}

	assert.Equal(t, 1, h.Calls(devicetest.OpID))
	assert.Equal(t, 1, h.Calls(devicetest.OpSpindleSpeed))
	assert.Equal(t, 1, h.Calls(devicetest.OpSpindleSpeeds))
	assert.Equal(t, 1, h.Calls(devicetest.OpFeedRate))
	assert.Equal(t, 1, h.Calls(devicetest.OpFeedRateAndSpeed))
	// modal, one-shot, previous, next
	assert.Equal(t, 4, h.Calls(devicetest.OpGCode))
	// modal, one-shot, axis, other
	assert.Equal(t, 4, h.Calls(devicetest.OpModal))
}

func TestReadPassesDeviceErrorThrough(t *testing.T) {
	h := devicetest.New()
	boom := errors.New("boom")
	h.Fail(devicetest.OpFeedRate, boom)

	set, err := Build(Selection{Include: []string{FeedRate}})
	require.NoError(t, err)

	_, err = set.At(0).Read(h)
	assert.ErrorIs(t, err, boom)
}

func TestProfileReturnsCopy(t *testing.T) {
	names, ok := Profile(ProfileBasic)
	require.True(t, ok)
	names[0] = "mutated"

	again, _ := Profile(ProfileBasic)
	assert.Equal(t, ID, again[0])
}
