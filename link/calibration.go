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
	"github.com/visorlink/visorlink/distortion"
	"github.com/visorlink/visorlink/internal/layout"
)

// CalibrationStore reads per-camera calibration records from the fixed
// table in the segment.
type CalibrationStore struct {
	ch *Channel
}

// NewCalibrationStore returns a store reading through ch.
func NewCalibrationStore(ch *Channel) *CalibrationStore {
	return &CalibrationStore{ch: ch}
}

// WaitCalibrationUpdate blocks until the driver signals that the
// calibration table changed; callers then re-read their camera's record.
func (s *CalibrationStore) WaitCalibrationUpdate() error {
	if !s.ch.IsOpen() {
		return ErrNotOpen
	}
	return s.ch.calibEvent.Wait()
}

// GetDistortionConfig scans the calibration table for cameraID and returns
// its distortion coefficients and intrinsics. found=false is the normal
// outcome for an unconfigured camera, not an error; the outputs stay zero.
func (s *CalibrationStore) GetDistortionConfig(cameraID int32) (coeffs distortion.Coefficients, intr distortion.Intrinsics, found bool) {
	if !s.ch.IsOpen() {
		return coeffs, intr, false
	}
	if err := s.ch.calibMutex.Lock(); err != nil {
		internalLogger.warnf("calibration mutex wait failed: %v", err)
		return coeffs, intr, false
	}
	defer func() {
		if err := s.ch.calibMutex.Unlock(); err != nil {
			internalLogger.warnf("calibration mutex release failed: %v", err)
		}
	}()

	for i := 0; i < layout.CalibMaxRecords; i++ {
		rec, err := layout.DecodeCalibrationRecord(s.ch.mem, i)
		if err != nil {
			internalLogger.errorf("calibration record %d: %v", i, err)
			return distortion.Coefficients{}, distortion.Intrinsics{}, false
		}
		if rec.CameraID != cameraID {
			continue
		}
		for j := range rec.Coeffs {
			coeffs[j] = float64(rec.Coeffs[j])
		}
		intr = distortion.Intrinsics{
			FX:     float64(rec.Matrix[0]),
			FY:     float64(rec.Matrix[4]),
			CX:     float64(rec.Matrix[2]),
			CY:     float64(rec.Matrix[5]),
			Width:  int(rec.Width),
			Height: int(rec.Height),
		}
		return coeffs, intr, true
	}
	return distortion.Coefficients{}, distortion.Intrinsics{}, false
}
