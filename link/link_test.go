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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/visorlink/visorlink/internal/hsync"
	"github.com/visorlink/visorlink/internal/layout"
)

// testRig is an in-process stand-in for the driver: a heap-backed segment
// plus a registry holding the driver-side named objects. Channels built on
// it exercise the real store code paths without a kernel namespace.
type testRig struct {
	reg *hsync.Registry
	cfg *Config
	ch  *Channel
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	reg := hsync.NewRegistry()
	cfg := DefaultConfig()
	cfg.Opener = reg
	cfg.Registerer = prometheus.NewRegistry()

	reg.CreateEvent(cfg.ImageEventName)
	reg.CreateMutex(cfg.ImageMutexName)
	reg.CreateEvent(cfg.CalibEventName)
	reg.CreateMutex(cfg.CalibMutexName)
	reg.CreateEvent(cfg.PlayAreaEventName)
	reg.CreateMutex(cfg.PlayAreaMutexName)

	c := &Channel{cfg: cfg, opener: reg, mem: make([]byte, layout.SegmentSize), open: true}
	var err error
	c.imageEvent, err = reg.OpenEvent(cfg.ImageEventName)
	require.NoError(t, err)
	c.imageMutex, err = reg.OpenMutex(cfg.ImageMutexName)
	require.NoError(t, err)
	c.calibEvent, err = reg.OpenEvent(cfg.CalibEventName)
	require.NoError(t, err)
	c.calibMutex, err = reg.OpenMutex(cfg.CalibMutexName)
	require.NoError(t, err)
	c.playAreaEvent, err = reg.OpenEvent(cfg.PlayAreaEventName)
	require.NoError(t, err)
	c.playAreaMutex, err = reg.OpenMutex(cfg.PlayAreaMutexName)
	require.NoError(t, err)
	c.metrics, err = newChannelMetrics(cfg.Registerer)
	require.NoError(t, err)

	return &testRig{reg: reg, cfg: cfg, ch: c}
}

// withCommonPair registers the driver's keep-alive objects. Must run before
// anything touches the lazy pair, which latches its first lookup.
func (r *testRig) withCommonPair() {
	r.reg.CreateEvent(r.cfg.CommonEventName)
	r.reg.CreateMutex(r.cfg.CommonMutexName)
}

// withWorkerPair registers the driver's EVF worker objects.
func (r *testRig) withWorkerPair() {
	r.reg.CreateEvent(r.cfg.WorkerEventName)
	r.reg.CreateMutex(r.cfg.WorkerMutexName)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}
