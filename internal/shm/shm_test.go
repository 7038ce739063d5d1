package shm

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func TestMapRegionSharesBytes(t *testing.T) {
	name := testName("shm_share")
	const size = 1 << 16

	creator, err := MapRegion(MapOptions{Name: name, Size: size, Create: true})
	require.NoError(t, err)
	defer creator.Close()
	require.Len(t, creator.Bytes, size)

	// Fresh segments come up zeroed.
	for _, i := range []int{0, size / 2, size - 1} {
		assert.Equal(t, byte(0), creator.Bytes[i])
	}

	opener, err := MapRegion(MapOptions{Name: name, Size: size})
	require.NoError(t, err)
	defer opener.Close()

	creator.Bytes[100] = 0xAB
	assert.Equal(t, byte(0xAB), opener.Bytes[100], "views share the same pages")
	opener.Bytes[size-1] = 0xCD
	assert.Equal(t, byte(0xCD), creator.Bytes[size-1])
}

func TestMapRegionMissingSegment(t *testing.T) {
	_, err := MapRegion(MapOptions{Name: testName("shm_missing"), Size: 4096})
	assert.Error(t, err, "without Create a missing segment must fail")
}

func TestMapRegionInvalidSize(t *testing.T) {
	_, err := MapRegion(MapOptions{Name: testName("shm_badsize"), Size: 0, Create: true})
	assert.Error(t, err)
	_, err = MapRegion(MapOptions{Name: testName("shm_badsize"), Size: -1, Create: true})
	assert.Error(t, err)
}

func TestCloseRemovesCreatedSegment(t *testing.T) {
	name := testName("shm_cleanup")
	creator, err := MapRegion(MapOptions{Name: name, Size: 4096, Create: true})
	require.NoError(t, err)
	require.NoError(t, creator.Close())

	_, err = MapRegion(MapOptions{Name: name, Size: 4096})
	assert.Error(t, err, "creator close removes the backing segment")

	assert.NoError(t, creator.Close(), "double close is safe")
	var nilRegion *MappedRegion
	assert.NoError(t, nilRegion.Close())
}
