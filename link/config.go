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
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/visorlink/visorlink/internal/hsync"
	"github.com/visorlink/visorlink/internal/layout"
)

// Config carries the names of the driver's shared objects plus client-side
// tunables. The object names are a driver protocol constant; the env
// overrides exist for driver builds that suffix their namespace.
type Config struct {
	SegmentName string `env:"VISORLINK_SEGMENT_NAME"`
	SegmentSize int    `env:"VISORLINK_SEGMENT_SIZE"`

	ImageEventName string `env:"VISORLINK_IMAGE_EVENT"`
	ImageMutexName string `env:"VISORLINK_IMAGE_MUTEX"`

	CalibEventName string `env:"VISORLINK_CALIB_EVENT"`
	CalibMutexName string `env:"VISORLINK_CALIB_MUTEX"`

	CommonEventName string `env:"VISORLINK_COMMON_EVENT"`
	CommonMutexName string `env:"VISORLINK_COMMON_MUTEX"`

	WorkerEventName string `env:"VISORLINK_WORKER_EVENT"`
	WorkerMutexName string `env:"VISORLINK_WORKER_MUTEX"`

	PlayAreaEventName string `env:"VISORLINK_PLAYAREA_EVENT"`
	PlayAreaMutexName string `env:"VISORLINK_PLAYAREA_MUTEX"`

	// ConnectTimeout, when nonzero, retries Open with exponential backoff
	// for up to this long. Zero means a single attempt.
	ConnectTimeout time.Duration `env:"VISORLINK_CONNECT_TIMEOUT"`

	// Opener resolves named events and mutexes. Nil selects the platform
	// default (kernel namespace on Windows, in-process registry elsewhere).
	Opener hsync.Opener `env:"-"`

	// Registerer receives the channel's prometheus collectors. Nil selects
	// the default registerer.
	Registerer prometheus.Registerer `env:"-"`

	// Meter and Tracer, when set, instrument channel operations.
	Meter  metric.Meter `env:"-"`
	Tracer trace.Tracer `env:"-"`
}

// DefaultConfig returns the stock driver object names.
func DefaultConfig() *Config {
	return &Config{
		SegmentName: "VL_TrackerSharedMemory",
		SegmentSize: layout.SegmentSize,

		ImageEventName: "VL_ImageReadyEvent",
		ImageMutexName: "VL_ImageMutex",

		CalibEventName: "VL_CalibEvent",
		CalibMutexName: "VL_CalibMutex",

		CommonEventName: "VL_CommonEvent",
		CommonMutexName: "VL_CommonMutex",

		WorkerEventName: "VL_WorkerEvent",
		WorkerMutexName: "VL_WorkerMutex",

		PlayAreaEventName: "VL_PlayAreaResultEvent",
		PlayAreaMutexName: "VL_PlayAreaMutex",
	}
}

// ConfigFromEnv returns DefaultConfig with env overrides applied.
func ConfigFromEnv() (*Config, error) {
	c := DefaultConfig()
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

// VerifyConfig checks a Config before Open.
func VerifyConfig(c *Config) error {
	if c == nil {
		return errors.New("link: nil config")
	}
	if c.SegmentSize < layout.SegmentSize {
		return errors.New("link: segment size smaller than driver layout")
	}
	names := []string{
		c.SegmentName,
		c.ImageEventName, c.ImageMutexName,
		c.CalibEventName, c.CalibMutexName,
		c.CommonEventName, c.CommonMutexName,
		c.WorkerEventName, c.WorkerMutexName,
		c.PlayAreaEventName, c.PlayAreaMutexName,
	}
	for _, n := range names {
		if n == "" {
			return errors.New("link: empty object name in config")
		}
	}
	if c.ConnectTimeout < 0 {
		return errors.New("link: negative connect timeout")
	}
	return nil
}
