/*
 * Copyright 2026 VisorLink Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package link

import (
	"context"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/visorlink/visorlink/internal/layout"
)

// Pose is the head pose associated with a captured frame.
type Pose struct {
	Position    r3.Vec
	Orientation quat.Number
	Valid       bool
	// Timestamp is the driver's monotonic capture stamp for the slot the
	// pose came from.
	Timestamp uint64
}

// FrameAcquisition polls the ring for the newest stereo frame.
type FrameAcquisition struct {
	ch *Channel

	lastFrameUnixNano atomic.Int64
}

// NewFrameAcquisition returns an acquirer reading through ch.
func NewFrameAcquisition(ch *Channel) *FrameAcquisition {
	return &FrameAcquisition{ch: ch}
}

// LastFrameAt reports when GetLatestFrame last succeeded (zero time if
// never). Used by readiness checks.
func (f *FrameAcquisition) LastFrameAt() time.Time {
	n := f.lastFrameUnixNano.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// GetLatestFrame blocks for the next image-ready signal, then copies the
// newest slot's eye blocks into left and right (each at least
// layout.ImageBlockSize bytes) and returns the slot's pose.
//
// The wait on the image event and mutex is infinite by design: a hung
// driver wedges this call. ok=false means the wait or a buffer check
// failed and the caller should skip the frame.
func (f *FrameAcquisition) GetLatestFrame(left, right []byte) (pose Pose, ok bool) {
	c := f.ch
	if !c.IsOpen() {
		return Pose{}, false
	}
	if len(left) < layout.ImageBlockSize || len(right) < layout.ImageBlockSize {
		internalLogger.errorf("frame buffers too small: %d/%d, need %d",
			len(left), len(right), layout.ImageBlockSize)
		return Pose{}, false
	}

	f.keepAlive()

	if err := c.imageEvent.Wait(); err != nil {
		internalLogger.warnf("image event wait failed: %v", err)
		return Pose{}, false
	}
	if err := c.imageMutex.Lock(); err != nil {
		internalLogger.warnf("image mutex wait failed: %v", err)
		return Pose{}, false
	}
	defer func() {
		if err := c.imageMutex.Unlock(); err != nil {
			internalLogger.warnf("image mutex release failed: %v", err)
		}
	}()

	slot, ts := f.newestSlot()
	if debugMode {
		internalLogger.tracef("frame slot %d timestamp %d", slot, ts)
	}
	pose, err := f.readPose(slot)
	if err != nil {
		internalLogger.errorf("pose block slot %d: %v", slot, err)
		return Pose{}, false
	}
	pose.Timestamp = ts

	off := layout.SlotImageOffset(slot)
	if err := c.ReadAt(off, left[:layout.ImageBlockSize]); err != nil {
		return Pose{}, false
	}
	if err := c.ReadAt(off+layout.ImageBlockSize, right[:layout.ImageBlockSize]); err != nil {
		return Pose{}, false
	}

	c.metrics.framesAcquired.Inc()
	if c.frameCounter != nil {
		c.frameCounter.Add(context.Background(), 1)
	}
	f.lastFrameUnixNano.Store(time.Now().UnixNano())
	return pose, true
}

// newestSlot scans the ring timestamps. Replacement requires a strictly
// greater stamp, so timestamp ties resolve to the lowest slot index: a tie
// means a torn observation of the driver's round-robin writes and the
// earlier slot is the conservative pick.
func (f *FrameAcquisition) newestSlot() (int, uint64) {
	best := 0
	bestTS := f.ch.cursor(layout.SlotTimestampOffset(0)).ReadU64()
	for i := 1; i < layout.FrameSlots; i++ {
		ts := f.ch.cursor(layout.SlotTimestampOffset(i)).ReadU64()
		if ts > bestTS {
			best, bestTS = i, ts
		}
	}
	return best, bestTS
}

// readPose composes the slot's pose block. The driver stores two
// quaternions and composes them as qA*qB; the position is posA plus the
// composed rotation applied to localOffsetB, with the depth axis negated
// for handedness conversion.
func (f *FrameAcquisition) readPose(slot int) (Pose, error) {
	b, err := layout.DecodePoseBlock(f.ch.mem, slot)
	if err != nil {
		return Pose{}, err
	}
	qA := quatAt(&b, layout.PoseQuatAIndex)
	qB := quatAt(&b, layout.PoseQuatBIndex)
	qFinal := quat.Mul(qA, qB)

	posA := vecAt(&b, layout.PosePositionAIndex)
	localB := vecAt(&b, layout.PoseLocalOffsetBIndex)
	pos := r3.Add(posA, r3.Rotation(qFinal).Rotate(localB))
	pos.Z = -pos.Z

	return Pose{
		Position:    pos,
		Orientation: qFinal,
		Valid:       b[layout.PoseValidFlagIndex] != 0,
	}, nil
}

func quatAt(b *[layout.PoseBlockFloats]float32, i int) quat.Number {
	// Stored x,y,z,w.
	return quat.Number{
		Real: float64(b[i+3]),
		Imag: float64(b[i]),
		Jmag: float64(b[i+1]),
		Kmag: float64(b[i+2]),
	}
}

func vecAt(b *[layout.PoseBlockFloats]float32, i int) r3.Vec {
	return r3.Vec{X: float64(b[i]), Y: float64(b[i+1]), Z: float64(b[i+2])}
}

// keepAlive increments the liveness byte and signals the common event.
// Best effort: a driver without the common pair still serves frames.
func (f *FrameAcquisition) keepAlive() {
	c := f.ch
	ev, mu := c.commonPair()
	if ev == nil || mu == nil {
		return
	}
	if err := mu.Lock(); err != nil {
		internalLogger.warnf("common mutex wait failed: %v", err)
		return
	}
	cur := c.cursor(layout.KeepAliveOffset)
	v := cur.ReadU8()
	cur.Seek(layout.KeepAliveOffset)
	cur.WriteU8(v + 1) // wraps on overflow
	if err := mu.Unlock(); err != nil {
		internalLogger.warnf("common mutex release failed: %v", err)
	}
	if err := ev.Signal(); err != nil {
		internalLogger.warnf("common event signal failed: %v", err)
		return
	}
	c.metrics.keepAlives.Inc()
}
