package boundary

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/visorlink/visorlink/internal/hsync"
	"github.com/visorlink/visorlink/internal/layout"
	"github.com/visorlink/visorlink/internal/shm"
	"github.com/visorlink/visorlink/link"
)

// openTestStore stands up an in-process driver segment and opens a channel
// against it, returning a boundary store plus the driver-side mapping.
func openTestStore(t *testing.T) (*link.BoundaryStore, *shm.MappedRegion) {
	t.Helper()
	cfg := link.DefaultConfig()
	cfg.SegmentName = fmt.Sprintf("vl_boundary_%d", time.Now().UnixNano())
	reg := hsync.NewRegistry()
	cfg.Opener = reg
	cfg.Registerer = prometheus.NewRegistry()

	driver, err := shm.MapRegion(shm.MapOptions{Name: cfg.SegmentName, Size: cfg.SegmentSize, Create: true})
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close() })

	reg.CreateEvent(cfg.ImageEventName)
	reg.CreateMutex(cfg.ImageMutexName)
	reg.CreateEvent(cfg.CalibEventName)
	reg.CreateMutex(cfg.CalibMutexName)
	reg.CreateEvent(cfg.PlayAreaEventName)
	reg.CreateMutex(cfg.PlayAreaMutexName)
	reg.CreateEvent(cfg.WorkerEventName)
	reg.CreateMutex(cfg.WorkerMutexName)

	ch, err := link.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { ch.Close() })
	return link.NewBoundaryStore(ch), driver
}

func TestSaveAndLoadThroughSharedMemory(t *testing.T) {
	store, driver := openTestStore(t)

	e := NewEditor(store)
	// Yaw zero keeps the fitted rectangle aligned with the square outline.
	e.SetReferenceFrame(r3.Vec{X: 0.5, Y: 1.7, Z: -0.25}, 0, -1.6)
	for _, p := range []r3.Vec{
		{X: -1, Y: -1.6, Z: -1},
		{X: 1, Y: -1.6, Z: -1},
		{X: 1, Y: -1.6, Z: 1},
		{X: -1, Y: -1.6, Z: 1},
	} {
		e.AddPoint(p)
	}
	require.NoError(t, e.SaveToSharedMemory())

	// The record landed in the driver's mapping, rectangle fitted.
	rec, err := layout.DecodePlayAreaRecord(driver.Bytes, layout.PlayAreaOffset)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), rec.Version)
	assert.Equal(t, uint32(4), rec.PointCount)
	assert.InDelta(t, 2.0, float64(rec.RectWidth), 0.05)
	assert.InDelta(t, 2.0, float64(rec.RectDepth), 0.05)

	// A second editor loads the same outline back.
	loaded := NewEditor(store)
	require.NoError(t, loaded.Load())
	pts := loaded.Points()
	require.Len(t, pts, 4)
	for i, p := range e.Points() {
		assert.InDelta(t, p.X, pts[i].X, 1e-4, "point %d", i)
		assert.InDelta(t, p.Z, pts[i].Z, 1e-4, "point %d", i)
		assert.InDelta(t, -1.6, pts[i].Y, 1e-6, "floor height pins world Y")
	}

	// Saving again bumps the persisted version.
	require.NoError(t, loaded.SaveToSharedMemory())
	rec, err = layout.DecodePlayAreaRecord(driver.Bytes, layout.PlayAreaOffset)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), rec.Version)
}

func TestSaveRejectsDegeneratePolygon(t *testing.T) {
	store, _ := openTestStore(t)
	e := NewEditor(store)
	e.AddPoint(r3.Vec{})
	e.AddPoint(r3.Vec{X: 1})
	assert.Error(t, e.SaveToSharedMemory())
}

func TestRequestClearMapWritesWorkerFlag(t *testing.T) {
	store, driver := openTestStore(t)
	e := NewEditor(store)
	require.True(t, e.RequestClearMap())

	cur := layout.NewCursor(driver.Bytes, layout.WorkerFlagsOffset)
	assert.Equal(t, uint64(layout.WorkerFlagClearMap), cur.ReadU64())
}

func TestEditorWithoutStore(t *testing.T) {
	e := NewEditor(nil)
	assert.ErrorIs(t, e.Load(), ErrNoStore)
	e.SetPolygon(squarePolygon(1))
	assert.ErrorIs(t, e.SaveToSharedMemory(), ErrNoStore)
	assert.False(t, e.RequestClearMap())
}
