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

import "github.com/prometheus/client_golang/prometheus"

type channelMetrics struct {
	framesAcquired prometheus.Counter
	keepAlives     prometheus.Counter
	workerSignals  prometheus.Counter
	playAreaReads  prometheus.Counter
	playAreaWrites prometheus.Counter
}

func newChannelMetrics(reg prometheus.Registerer) (*channelMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &channelMetrics{}
	for _, c := range []struct {
		dst  *prometheus.Counter
		name string
		help string
	}{
		{&m.framesAcquired, "visorlink_frames_acquired_total", "Stereo frames copied out of the ring."},
		{&m.keepAlives, "visorlink_keepalives_total", "Keep-alive increments delivered to the driver."},
		{&m.workerSignals, "visorlink_worker_signals_total", "EVF worker flag writes signaled."},
		{&m.playAreaReads, "visorlink_playarea_reads_total", "Play-area record reads."},
		{&m.playAreaWrites, "visorlink_playarea_writes_total", "Play-area record writes."},
	} {
		counter := prometheus.NewCounter(prometheus.CounterOpts{Name: c.name, Help: c.help})
		if err := reg.Register(counter); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				counter = are.ExistingCollector.(prometheus.Counter)
			} else {
				return nil, err
			}
		}
		*c.dst = counter
	}
	return m, nil
}
