// Package layout is the single source of truth for the byte layout of the
// driver's shared-memory segment. Every fixed offset, stride and record size
// lives here; components never do their own offset math.
package layout

// Segment geometry. The driver maps exactly one 32 MiB region.
const (
	SegmentSize = 32 << 20
)

// Frame ring. Eight fixed-stride slots, each holding a monotonic capture
// timestamp, a 64-float pose block and the two compressed eye images.
const (
	FrameSlots = 8

	// Stereo camera geometry. Images are block-compressed at 4 bits per
	// texel, so one eye occupies width*height/2 bytes.
	ImageWidth     = 1280
	ImageHeight    = 960
	ImageBlockSize = ImageWidth * ImageHeight / 2

	FrameRingOffset = 0x1000
	SlotHeaderSize  = 0x200
	// Slot stride is rounded up past header + both eyes so the driver can
	// grow the header without moving image data.
	FrameSlotStride = 0x130000

	slotTimestampOffset = 0
	slotPoseOffset      = 8
	slotImageOffset     = SlotHeaderSize
)

// Pose block sub-layout, as float32 indices into the 64-float block.
// The final orientation is quatA*quatB (in that order) and the position is
// posA + qFinal rotating localOffsetB, with the depth axis negated for
// handedness conversion. The composition order is a driver contract.
const (
	PoseBlockFloats = 64

	PoseQuatAIndex        = 0 // x,y,z,w
	PosePositionAIndex    = 4
	PoseQuatBIndex        = 8 // x,y,z,w
	PoseLocalOffsetBIndex = 12
	PoseValidFlagIndex    = 60
)

// Calibration table. Up to four fixed-size records at a fixed offset.
const (
	CalibTableOffset = 0x01900000
	CalibMaxRecords  = 4
	CalibRecordSize  = 256

	calibCameraIDOffset = 0
	calibWidthOffset    = 4
	calibHeightOffset   = 8
	calibMatrixOffset   = 12 // 3x3 float32, row major
	calibCoeffsOffset   = 48 // 20 float32
)

// DistortionCoeffCount is the number of scalar distortion coefficients in a
// calibration record.
const DistortionCoeffCount = 20

// Play-area record. Guarded by the boundary mutex.
const (
	PlayAreaOffset     = 0x01A00000
	PlayAreaRecordSize = 2084

	MaxBoundaryPoints = 256

	playAreaVersionOffset    = 0
	playAreaFloorOffset      = 4
	playAreaRectWidthOffset  = 8
	playAreaRectDepthOffset  = 12
	playAreaPointCountOffset = 16
	playAreaPointsOffset     = 20   // 256 * (x,z) float32 pairs
	playAreaCenterOffset     = 2068 // standing center, 3 float32
	playAreaYawOffset        = 2080 // standing yaw, radians
)

// Liveness and worker command fields.
const (
	KeepAliveOffset   = 0x01FFFF00 // single wrapping byte
	WorkerFlagsOffset = 0x01FFFF08 // 8-byte flags field
)

// Worker flag values delivered to the EVF worker.
const (
	WorkerFlagGeometryUpdated = 0x40
	WorkerFlagClearMap        = 0x20
)

// SlotTimestampOffset returns the byte offset of slot i's capture timestamp.
func SlotTimestampOffset(i int) int {
	return FrameRingOffset + i*FrameSlotStride + slotTimestampOffset
}

// SlotPoseOffset returns the byte offset of slot i's 64-float pose block.
func SlotPoseOffset(i int) int {
	return FrameRingOffset + i*FrameSlotStride + slotPoseOffset
}

// SlotImageOffset returns the byte offset of slot i's image data. The left
// eye block starts here; the right eye follows contiguously.
func SlotImageOffset(i int) int {
	return FrameRingOffset + i*FrameSlotStride + slotImageOffset
}

// CalibRecordOffset returns the byte offset of calibration table entry i.
func CalibRecordOffset(i int) int {
	return CalibTableOffset + i*CalibRecordSize
}
