package layout

// CalibrationRecord is one entry of the fixed calibration table: camera id,
// sensor dimensions, the 3x3 pixel matrix and the distortion coefficients.
// The tail of each 256-byte entry is reserved padding.
type CalibrationRecord struct {
	CameraID int32
	Width    int32
	Height   int32
	Matrix   [9]float32 // row major; fx=Matrix[0], fy=Matrix[4], cx=Matrix[2], cy=Matrix[5]
	Coeffs   [DistortionCoeffCount]float32
}

// DecodeCalibrationRecord reads calibration table entry i from the segment.
func DecodeCalibrationRecord(seg []byte, i int) (CalibrationRecord, error) {
	var r CalibrationRecord
	c := NewCursor(seg, CalibRecordOffset(i))
	r.CameraID = int32(c.ReadU32())
	r.Width = int32(c.ReadU32())
	r.Height = int32(c.ReadU32())
	for j := range r.Matrix {
		r.Matrix[j] = c.ReadF32()
	}
	for j := range r.Coeffs {
		r.Coeffs[j] = c.ReadF32()
	}
	return r, c.Err()
}

// EncodeCalibrationRecord writes calibration table entry i. Only the driver
// (or a simulator) writes the table; the client treats it as read-only.
func EncodeCalibrationRecord(seg []byte, i int, r *CalibrationRecord) error {
	c := NewCursor(seg, CalibRecordOffset(i))
	c.WriteU32(uint32(r.CameraID))
	c.WriteU32(uint32(r.Width))
	c.WriteU32(uint32(r.Height))
	for j := range r.Matrix {
		c.WriteF32(r.Matrix[j])
	}
	for j := range r.Coeffs {
		c.WriteF32(r.Coeffs[j])
	}
	return c.Err()
}

// PlayAreaRecord is the persisted floor boundary: up to MaxBoundaryPoints
// driver-space (x,z) points sharing one floor height, the fitted rectangle
// dimensions, and the standing center/yaw that anchor driver space.
type PlayAreaRecord struct {
	Version        uint32
	FloorHeight    float32
	RectWidth      float32
	RectDepth      float32
	PointCount     uint32
	Points         [MaxBoundaryPoints][2]float32
	StandingCenter [3]float32
	StandingYaw    float32
}

// DecodePlayAreaRecord reads a play-area record starting at off: the fixed
// PlayAreaOffset when reading the live segment, 0 when decoding a snapshot
// copied out under the boundary mutex.
func DecodePlayAreaRecord(buf []byte, off int) (PlayAreaRecord, error) {
	var r PlayAreaRecord
	c := NewCursor(buf, off)
	r.Version = c.ReadU32()
	r.FloorHeight = c.ReadF32()
	r.RectWidth = c.ReadF32()
	r.RectDepth = c.ReadF32()
	r.PointCount = c.ReadU32()
	if r.PointCount > MaxBoundaryPoints {
		r.PointCount = MaxBoundaryPoints
	}
	for j := range r.Points {
		r.Points[j][0] = c.ReadF32()
		r.Points[j][1] = c.ReadF32()
	}
	for j := range r.StandingCenter {
		r.StandingCenter[j] = c.ReadF32()
	}
	r.StandingYaw = c.ReadF32()
	return r, c.Err()
}

// EncodePlayAreaRecord writes a play-area record at off, zero-filling point
// slots past PointCount. Writers into the live segment hold the boundary
// mutex and pass PlayAreaOffset; staging buffers pass 0.
func EncodePlayAreaRecord(buf []byte, off int, r *PlayAreaRecord) error {
	n := r.PointCount
	if n > MaxBoundaryPoints {
		n = MaxBoundaryPoints
	}
	c := NewCursor(buf, off)
	c.WriteU32(r.Version)
	c.WriteF32(r.FloorHeight)
	c.WriteF32(r.RectWidth)
	c.WriteF32(r.RectDepth)
	c.WriteU32(n)
	for j := 0; j < MaxBoundaryPoints; j++ {
		if uint32(j) < n {
			c.WriteF32(r.Points[j][0])
			c.WriteF32(r.Points[j][1])
		} else {
			c.WriteF32(0)
			c.WriteF32(0)
		}
	}
	for j := range r.StandingCenter {
		c.WriteF32(r.StandingCenter[j])
	}
	c.WriteF32(r.StandingYaw)
	return c.Err()
}

// DecodePoseBlock reads slot i's 64-float pose block.
func DecodePoseBlock(seg []byte, i int) ([PoseBlockFloats]float32, error) {
	var b [PoseBlockFloats]float32
	c := NewCursor(seg, SlotPoseOffset(i))
	for j := range b {
		b[j] = c.ReadF32()
	}
	return b, c.Err()
}

// EncodePoseBlock writes slot i's pose block (simulator/test side).
func EncodePoseBlock(seg []byte, i int, b *[PoseBlockFloats]float32) error {
	c := NewCursor(seg, SlotPoseOffset(i))
	for j := range b {
		c.WriteF32(b[j])
	}
	return c.Err()
}
