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

// Package link is the shared-memory client for the tracking accessory's
// vendor driver: it maps the driver's segment, opens its named
// synchronization objects and exposes the calibration, frame and play-area
// records stored inside.
package link

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/visorlink/visorlink/internal/hsync"
	"github.com/visorlink/visorlink/internal/layout"
	"github.com/visorlink/visorlink/internal/shm"
)

var (
	// ErrConnection wraps every failure to reach the driver's shared
	// objects, typically because the driver process is not running.
	// Callers must disable their feature rather than retry silently.
	ErrConnection = errors.New("link: driver shared memory unavailable")

	// ErrNotOpen is returned by operations on a closed channel.
	ErrNotOpen = errors.New("link: channel not open")
)

// Channel owns the mapped segment and all named handles. It is the explicit
// context object passed to every component constructor; nothing here is a
// process-wide singleton.
//
// Read/write helpers operate at caller-supplied offsets. Callers are
// responsible for holding the correct named mutex around any access that
// must be atomic with respect to the driver. Mutex waits are infinite.
type Channel struct {
	cfg    *Config
	opener hsync.Opener

	region *shm.MappedRegion
	mem    []byte

	imageEvent    hsync.Event
	imageMutex    hsync.Mutex
	calibEvent    hsync.Event
	calibMutex    hsync.Mutex
	playAreaEvent hsync.Event
	playAreaMutex hsync.Mutex

	// Best-effort pairs, opened lazily on first use.
	lazyMu      sync.Mutex
	commonEvent hsync.Event
	commonMutex hsync.Mutex
	commonTried bool
	workerEvent hsync.Event
	workerMutex hsync.Mutex
	workerTried bool

	metrics      *channelMetrics
	tracer       trace.Tracer
	frameCounter metric.Int64Counter

	mu   sync.Mutex
	open bool
}

// Open maps the named segment and opens the handles required by the stores.
// With Config.ConnectTimeout set it retries with exponential backoff while
// the driver is still starting; otherwise a single attempt is made. All
// failures wrap ErrConnection.
func Open(ctx context.Context, cfg *Config) (*Channel, error) {
	if err := VerifyConfig(cfg); err != nil {
		return nil, err
	}
	c := &Channel{cfg: cfg, opener: cfg.Opener, tracer: cfg.Tracer}
	if c.opener == nil {
		c.opener = hsync.System()
	}
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "link.Open")
		defer span.End()
	}

	attempt := func() error {
		if err := c.connect(); err != nil {
			c.teardown()
			return err
		}
		return nil
	}

	var err error
	if cfg.ConnectTimeout > 0 {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = cfg.ConnectTimeout
		err = backoff.Retry(attempt, backoff.WithContext(b, ctx))
	} else {
		err = attempt()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	c.metrics, err = newChannelMetrics(cfg.Registerer)
	if err != nil {
		c.teardown()
		return nil, err
	}
	if cfg.Meter != nil {
		c.frameCounter, err = cfg.Meter.Int64Counter("visorlink.frames.acquired")
		if err != nil {
			internalLogger.warnf("meter counter unavailable: %v", err)
		}
	}
	c.open = true
	internalLogger.infof("channel open: segment %s (%d bytes)", cfg.SegmentName, cfg.SegmentSize)
	return c, nil
}

func (c *Channel) connect() error {
	region, err := shm.MapRegion(shm.MapOptions{Name: c.cfg.SegmentName, Size: c.cfg.SegmentSize})
	if err != nil {
		return err
	}
	c.region = region
	c.mem = region.Bytes

	if c.imageEvent, err = c.opener.OpenEvent(c.cfg.ImageEventName); err != nil {
		return err
	}
	if c.imageMutex, err = c.opener.OpenMutex(c.cfg.ImageMutexName); err != nil {
		return err
	}
	if c.calibEvent, err = c.opener.OpenEvent(c.cfg.CalibEventName); err != nil {
		return err
	}
	if c.calibMutex, err = c.opener.OpenMutex(c.cfg.CalibMutexName); err != nil {
		return err
	}
	if c.playAreaEvent, err = c.opener.OpenEvent(c.cfg.PlayAreaEventName); err != nil {
		return err
	}
	if c.playAreaMutex, err = c.opener.OpenMutex(c.cfg.PlayAreaMutexName); err != nil {
		return err
	}
	return nil
}

func (c *Channel) teardown() {
	for _, h := range []interface{ Close() error }{
		c.imageEvent, c.imageMutex, c.calibEvent, c.calibMutex,
		c.playAreaEvent, c.playAreaMutex,
		c.commonEvent, c.commonMutex, c.workerEvent, c.workerMutex,
	} {
		if h != nil {
			if err := h.Close(); err != nil {
				internalLogger.warnf("handle close error: %v", err)
			}
		}
	}
	c.imageEvent, c.imageMutex, c.calibEvent, c.calibMutex = nil, nil, nil, nil
	c.playAreaEvent, c.playAreaMutex = nil, nil
	c.commonEvent, c.commonMutex, c.workerEvent, c.workerMutex = nil, nil, nil, nil
	c.commonTried, c.workerTried = false, false
	if c.region != nil {
		if err := c.region.Close(); err != nil {
			internalLogger.warnf("segment close error: %v", err)
		}
		c.region = nil
	}
	c.mem = nil
}

// Close releases the mapped region and every opened handle. Idempotent.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil
	}
	c.open = false
	c.teardown()
	return nil
}

// IsOpen reports whether the channel currently holds the segment.
func (c *Channel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// ReadAt copies len(dst) bytes from the segment at off. The caller holds
// whichever named mutex makes the read atomic.
func (c *Channel) ReadAt(off int, dst []byte) error {
	if c.mem == nil {
		return ErrNotOpen
	}
	cur := layout.NewCursor(c.mem, off)
	cur.ReadBytes(dst)
	return cur.Err()
}

// WriteAt copies src into the segment at off under the caller's mutex.
func (c *Channel) WriteAt(off int, src []byte) error {
	if c.mem == nil {
		return ErrNotOpen
	}
	cur := layout.NewCursor(c.mem, off)
	cur.WriteBytes(src)
	return cur.Err()
}

func (c *Channel) cursor(off int) *layout.Cursor {
	return layout.NewCursor(c.mem, off)
}

// commonPair lazily opens the keep-alive event/mutex. Absence is normal on
// driver builds without the liveness channel.
func (c *Channel) commonPair() (hsync.Event, hsync.Mutex) {
	c.lazyMu.Lock()
	defer c.lazyMu.Unlock()
	if !c.commonTried {
		c.commonTried = true
		ev, err := c.opener.OpenEvent(c.cfg.CommonEventName)
		if err != nil {
			internalLogger.debugf("common event unavailable: %v", err)
			return nil, nil
		}
		mu, err := c.opener.OpenMutex(c.cfg.CommonMutexName)
		if err != nil {
			internalLogger.debugf("common mutex unavailable: %v", err)
			_ = ev.Close()
			return nil, nil
		}
		c.commonEvent, c.commonMutex = ev, mu
	}
	return c.commonEvent, c.commonMutex
}

// workerPair lazily opens the EVF worker event/mutex.
func (c *Channel) workerPair() (hsync.Event, hsync.Mutex) {
	c.lazyMu.Lock()
	defer c.lazyMu.Unlock()
	if !c.workerTried {
		c.workerTried = true
		ev, err := c.opener.OpenEvent(c.cfg.WorkerEventName)
		if err != nil {
			internalLogger.debugf("worker event unavailable: %v", err)
			return nil, nil
		}
		mu, err := c.opener.OpenMutex(c.cfg.WorkerMutexName)
		if err != nil {
			internalLogger.debugf("worker mutex unavailable: %v", err)
			_ = ev.Close()
			return nil, nil
		}
		c.workerEvent, c.workerMutex = ev, mu
	}
	return c.workerEvent, c.workerMutex
}
