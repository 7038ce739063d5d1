/*
 * Copyright 2026 VisorLink Authors
 * Copyright 2023 CloudWeGo Authors
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
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/visorlink/visorlink/internal/layout"
)

type logger struct {
	name      string
	out       io.Writer
	callDepth int
}

var (
	internalLogger = &logger{"", os.Stdout, 3}
	level          int
	debugMode      = false

	magenta = string([]byte{27, 91, 57, 53, 109}) // Trace
	green   = string([]byte{27, 91, 57, 50, 109}) // Debug
	blue    = string([]byte{27, 91, 57, 52, 109}) // Info
	yellow  = string([]byte{27, 91, 57, 51, 109}) // Warn
	red     = string([]byte{27, 91, 57, 49, 109}) // Error
	reset   = string([]byte{27, 91, 48, 109})

	colors = []string{
		magenta,
		green,
		blue,
		yellow,
		red,
	}

	levelName = []string{
		"Trace",
		"Debug",
		"Info",
		"Warn",
		"Error",
	}
)

const (
	levelTrace = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
	levelNoPrint
)

func init() {
	level = levelWarn
	if os.Getenv("VISORLINK_LOG_LEVEL") != "" {
		if n, err := strconv.Atoi(os.Getenv("VISORLINK_LOG_LEVEL")); err == nil {
			if n <= levelNoPrint {
				level = n
			}
		}
	}
	if os.Getenv("VISORLINK_DEBUG_MODE") != "" {
		debugMode = true
		level = levelTrace
	}
}

// SetLogLevel changes the internal logger's level. The default is Warning;
// the process env `VISORLINK_LOG_LEVEL` can also set it.
func SetLogLevel(l int) {
	if l <= levelNoPrint {
		level = l
	}
}

func (l *logger) printf(lv int, format string, a ...interface{}) {
	if level > lv {
		return
	}
	if _, err := fmt.Fprintf(l.out, l.prefix(lv)+format+reset+"\n", a...); err != nil {
		fmt.Fprintf(os.Stderr, "logger write failed: %v\n", err)
	}
}

func (l *logger) errorf(format string, a ...interface{}) { l.printf(levelError, format, a...) }
func (l *logger) warnf(format string, a ...interface{})  { l.printf(levelWarn, format, a...) }
func (l *logger) infof(format string, a ...interface{})  { l.printf(levelInfo, format, a...) }
func (l *logger) debugf(format string, a ...interface{}) { l.printf(levelDebug, format, a...) }
func (l *logger) tracef(format string, a ...interface{}) { l.printf(levelTrace, format, a...) }

func (l *logger) prefix(lv int) string {
	var buffer [64]byte
	buf := bytes.NewBuffer(buffer[:0])
	_, _ = buf.WriteString(colors[lv])
	_, _ = buf.WriteString(levelName[lv])
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(time.Now().Format("2006-01-02 15:04:05.999999"))
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.location())
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.name)
	_ = buf.WriteByte(' ')
	return buf.String()
}

func (l *logger) location() string {
	_, file, line, ok := runtime.Caller(l.callDepth)
	if !ok {
		file = "???"
		line = 0
	}
	file = filepath.Base(file)
	return file + ":" + strconv.Itoa(line)
}

// DebugSegmentDetail prints the frame ring timestamps, keep-alive counter
// and play-area summary of a segment snapshot stored in `path`.
func DebugSegmentDetail(path string) {
	seg, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
		return
	}
	if len(seg) < layout.SegmentSize {
		fmt.Printf("path:%s snapshot too small: %d bytes\n", path, len(seg))
		return
	}
	for i := 0; i < layout.FrameSlots; i++ {
		ts := layout.NewCursor(seg, layout.SlotTimestampOffset(i)).ReadU64()
		fmt.Printf("slot:%d timestamp:%d\n", i, ts)
	}
	keepAlive := layout.NewCursor(seg, layout.KeepAliveOffset).ReadU8()
	flags := layout.NewCursor(seg, layout.WorkerFlagsOffset).ReadU64()
	fmt.Printf("keepAlive:%d workerFlags:%#x\n", keepAlive, flags)
	if rec, err := layout.DecodePlayAreaRecord(seg, layout.PlayAreaOffset); err == nil {
		fmt.Printf("playArea version:%d points:%d floor:%.3f yaw:%.3f\n",
			rec.Version, rec.PointCount, rec.FloorHeight, rec.StandingYaw)
	}
}
