// Copyright 2019 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package historianlog is a small structured logger in the call style used
// throughout the teacher's core/state/snapshot package: log.Info(msg, "key",
// value, "key2", value2, ...). The teacher's own log package was not part of
// this retrieval, so this one is authored fresh in the same idiom, built on
// github.com/go-stack/stack for caller capture (a real teacher dependency).
package historianlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

// Level is a log severity, ordered from most severe (LvlCrit) to least
// severe (LvlDebug).
type Level int

const (
	LvlCrit Level = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
)

func (l Level) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DBUG"
	default:
		return "????"
	}
}

// Logger writes leveled, key-value structured log lines.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	min    Level
	ctx    []interface{}
}

// Root is the package-level default logger, matching the teacher's
// package-level log.Info/log.Warn/log.Crit call convention.
var Root = New(os.Stderr, LvlInfo)

// New builds a Logger writing to out, filtering out anything below min.
func New(out io.Writer, min Level) *Logger {
	return &Logger{out: out, min: min}
}

// New returns a child logger that always includes ctx ahead of any
// per-call key-values, mirroring log15's log.New(ctx...).
func (l *Logger) New(ctx ...interface{}) *Logger {
	merged := make([]interface{}, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &Logger{out: l.out, min: l.min, ctx: merged}
}

func (l *Logger) log(level Level, msg string, kv []interface{}) {
	if level > l.min {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("%s[%s] %s", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"), level, msg)
	all := append(append([]interface{}{}, l.ctx...), kv...)
	for i := 0; i+1 < len(all); i += 2 {
		line += fmt.Sprintf(" %v=%v", all[i], all[i+1])
	}
	fmt.Fprintln(l.out, line)
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LvlDebug, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(LvlInfo, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(LvlWarn, msg, kv) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LvlError, msg, kv) }

// Crit logs at the highest severity and includes the immediate caller frame
// (via go-stack/stack), then exits the process — matching the teacher's
// log.Crit, which is reserved for unrecoverable historian states.
func (l *Logger) Crit(msg string, kv ...interface{}) {
	caller := stack.Caller(1)
	kv = append(kv, "at", fmt.Sprintf("%+v", caller))
	l.log(LvlCrit, msg, kv)
	os.Exit(1)
}

func Debug(msg string, kv ...interface{}) { Root.Debug(msg, kv...) }
func Info(msg string, kv ...interface{})  { Root.Info(msg, kv...) }
func Warn(msg string, kv ...interface{})  { Root.Warn(msg, kv...) }
func Error(msg string, kv ...interface{}) { Root.Error(msg, kv...) }
func Crit(msg string, kv ...interface{})  { Root.Crit(msg, kv...) }
