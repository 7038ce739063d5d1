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
	"fmt"

	"github.com/valyala/bytebufferpool"

	"github.com/visorlink/visorlink/internal/layout"
)

// BoundaryStore reads and writes the persisted play-area record and signals
// the driver's EVF worker about geometry changes.
type BoundaryStore struct {
	ch *Channel
}

// NewBoundaryStore returns a store reading through ch.
func NewBoundaryStore(ch *Channel) *BoundaryStore {
	return &BoundaryStore{ch: ch}
}

// GetPlayArea copies the play-area record out of the segment. The record
// bytes are snapshotted under the boundary mutex and decoded outside it.
func (s *BoundaryStore) GetPlayArea() (layout.PlayAreaRecord, error) {
	if !s.ch.IsOpen() {
		return layout.PlayAreaRecord{}, ErrNotOpen
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	snap := buf.B
	if cap(snap) < layout.PlayAreaRecordSize {
		snap = make([]byte, layout.PlayAreaRecordSize)
	}
	snap = snap[:cap(snap)][:layout.PlayAreaRecordSize]

	if err := s.ch.playAreaMutex.Lock(); err != nil {
		return layout.PlayAreaRecord{}, fmt.Errorf("link: boundary mutex wait: %w", err)
	}
	err := s.ch.ReadAt(layout.PlayAreaOffset, snap)
	if uerr := s.ch.playAreaMutex.Unlock(); uerr != nil {
		internalLogger.warnf("boundary mutex release failed: %v", uerr)
	}
	buf.B = snap
	if err != nil {
		return layout.PlayAreaRecord{}, err
	}

	rec, err := layout.DecodePlayAreaRecord(snap, 0)
	if err != nil {
		return layout.PlayAreaRecord{}, err
	}
	s.ch.metrics.playAreaReads.Inc()
	return rec, nil
}

// SetPlayArea stages the encoded record in a pooled buffer, writes it under
// the boundary mutex, then notifies the EVF worker that geometry changed.
func (s *BoundaryStore) SetPlayArea(rec *layout.PlayAreaRecord) error {
	if !s.ch.IsOpen() {
		return ErrNotOpen
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	staged := buf.B
	if cap(staged) < layout.PlayAreaRecordSize {
		staged = make([]byte, layout.PlayAreaRecordSize)
	}
	staged = staged[:cap(staged)][:layout.PlayAreaRecordSize]
	if err := layout.EncodePlayAreaRecord(staged, 0, rec); err != nil {
		buf.B = staged
		return err
	}

	if err := s.ch.playAreaMutex.Lock(); err != nil {
		buf.B = staged
		return fmt.Errorf("link: boundary mutex wait: %w", err)
	}
	err := s.ch.WriteAt(layout.PlayAreaOffset, staged)
	if uerr := s.ch.playAreaMutex.Unlock(); uerr != nil {
		internalLogger.warnf("boundary mutex release failed: %v", uerr)
	}
	buf.B = staged
	if err != nil {
		return err
	}
	s.ch.metrics.playAreaWrites.Inc()
	if !s.TriggerWorker(layout.WorkerFlagGeometryUpdated) {
		internalLogger.infof("geometry-updated signal not delivered")
	}
	return nil
}

// ClearMap asks the driver to discard its tracking map. Best effort.
func (s *BoundaryStore) ClearMap() bool {
	return s.TriggerWorker(layout.WorkerFlagClearMap)
}

// WaitPlayAreaResult blocks until the driver signals the play-area result
// event, e.g. after a ClearMap request has been processed.
func (s *BoundaryStore) WaitPlayAreaResult() error {
	if !s.ch.IsOpen() {
		return ErrNotOpen
	}
	return s.ch.playAreaEvent.Wait()
}

// TriggerWorker writes the 8-byte flags field under the worker mutex and
// signals the worker event. Returns false, non-fatally, when the worker
// pair is unavailable or the write fails.
func (s *BoundaryStore) TriggerWorker(flags uint64) bool {
	if !s.ch.IsOpen() {
		return false
	}
	ev, mu := s.ch.workerPair()
	if ev == nil || mu == nil {
		return false
	}
	if err := mu.Lock(); err != nil {
		internalLogger.warnf("worker mutex wait failed: %v", err)
		return false
	}
	cur := s.ch.cursor(layout.WorkerFlagsOffset)
	cur.WriteU64(flags)
	err := cur.Err()
	if uerr := mu.Unlock(); uerr != nil {
		internalLogger.warnf("worker mutex release failed: %v", uerr)
	}
	if err != nil {
		internalLogger.errorf("worker flags write: %v", err)
		return false
	}
	if err := ev.Signal(); err != nil {
		internalLogger.warnf("worker event signal failed: %v", err)
		return false
	}
	s.ch.metrics.workerSignals.Inc()
	return true
}
