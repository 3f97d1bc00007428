/*
 * Copyright (c) 2026, NVIDIA CORPORATION.  All rights reserved.
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

package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
)

// ErrLoadingFailed is the sentinel cause passed to a Loading cancel function
// to indicate the operation failed (displays red X instead of green checkmark).
var ErrLoadingFailed = errors.New("loading failed")

// fdWriter is the subset of os.File that implements io.Writer and Fd()
type fdWriter interface {
	io.Writer
	Fd() uintptr
}

// Verbosity represents the logging verbosity level.
type Verbosity int

const (
	// VerbosityQuiet suppresses all output except warnings and errors.
	VerbosityQuiet Verbosity = iota
	// VerbosityNormal is the default verbosity level.
	VerbosityNormal
	// VerbosityVerbose enables debug output.
	VerbosityVerbose
	// VerbosityDebug enables trace output.
	VerbosityDebug
)

const (
	reset       = "\033[0m"
	green       = "\033[32m"
	yellowText  = "\033[33m"
	redText     = "\033[31m"
	checkmark   = "✔"
	redXEmoji   = "❌"
	warningSign = "⚠"
	// radio tower, shown while a step is in flight
	loadingEmoji = "\U0001f4e1"
)

// NewLogger creates a new FunLogger writing to stderr.
func NewLogger() *FunLogger {
	l := &FunLogger{
		Out:      os.Stderr,
		Wg:       &sync.WaitGroup{},
		ExitFunc: os.Exit,
	}
	l.verbosity.Store(int32(VerbosityNormal))
	return l
}

// Logger is the operator-facing output stream used across radiodeck.
type Logger interface {
	Info(format string, a ...any)
	Check(format string, a ...any)
	Warning(format string, a ...any)
	Error(err error)
	Loading(format string, a ...any) context.CancelCauseFunc
	Debug(format string, a ...any)
	Trace(format string, a ...any)
	SetVerbosity(v Verbosity)
}

var _ Logger = (*FunLogger)(nil)

// FunLogger implements Logger using emojis for status lines.
type FunLogger struct {
	// Out receives every line the logger produces. Defaults to os.Stderr.
	Out io.Writer
	// ExitFunc terminates the program, defaults to os.Exit.
	ExitFunc exitFunc
	// Wg tracks running Loading animations.
	Wg *sync.WaitGroup
	// IsCI disables the spinner animation.
	IsCI bool

	verbosity atomic.Int32

	// outMu serializes writes to Out.
	outMu sync.Mutex

	// mu protects activeCancels and exited.
	mu            sync.Mutex
	activeCancels []context.CancelCauseFunc
	exited        bool
}

// SetVerbosity sets the verbosity level for the logger.
func (l *FunLogger) SetVerbosity(v Verbosity) {
	l.verbosity.Store(int32(v)) //nolint:gosec // Verbosity is an iota (0-3), cannot overflow int32
}

// Verbosity returns the current verbosity level.
func (l *FunLogger) Verbosity() Verbosity {
	return Verbosity(l.verbosity.Load())
}

// Info prints an information message with no emoji.
func (l *FunLogger) Info(format string, a ...any) {
	if l.Verbosity() < VerbosityNormal {
		return
	}
	l.writef(withNewline(format), a...)
}

// Check prints a message prefixed with a green checkmark.
func (l *FunLogger) Check(format string, a ...any) {
	if l.Verbosity() < VerbosityNormal {
		return
	}
	l.printMessage(green, checkmark, fmt.Sprintf(format, a...))
}

// Warning prints a warning line. Always printed, regardless of verbosity.
func (l *FunLogger) Warning(format string, a ...any) {
	l.printMessage(yellowText, warningSign, fmt.Sprintf(format, a...))
}

// Error prints an error line. Always printed, regardless of verbosity.
func (l *FunLogger) Error(err error) {
	l.printMessage(redText, redXEmoji, err.Error())
}

// Debug prints a debug message when verbosity >= VerbosityVerbose.
func (l *FunLogger) Debug(format string, a ...any) {
	if l.Verbosity() < VerbosityVerbose {
		return
	}
	l.writef("[DEBUG] "+withNewline(format), a...)
}

// Trace prints a trace message when verbosity >= VerbosityDebug.
func (l *FunLogger) Trace(format string, a ...any) {
	if l.Verbosity() < VerbosityDebug {
		return
	}
	l.writef("[TRACE] "+withNewline(format), a...)
}

// Loading starts a loading animation in a background goroutine and returns a
// CancelCauseFunc. The caller MUST invoke the returned function to stop:
//   - cancel(nil)                       → success (green checkmark)
//   - cancel(logger.ErrLoadingFailed)   → failure (red X)
func (l *FunLogger) Loading(format string, a ...any) context.CancelCauseFunc {
	ctx, cancel := context.WithCancelCause(context.Background())

	l.mu.Lock()
	if l.exited {
		l.mu.Unlock()
		cancel(nil)
		return cancel
	}
	l.Wg.Add(1)
	l.activeCancels = append(l.activeCancels, cancel)
	l.mu.Unlock()

	done := make(chan struct{})
	go l.runLoading(ctx, done, fmt.Sprintf(format, a...))

	// Block the caller until the final status line is written so that output
	// from the next step never interleaves with this one.
	return func(cause error) {
		cancel(cause)
		<-done
	}
}

func (l *FunLogger) runLoading(ctx context.Context, done chan<- struct{}, message string) {
	defer l.Wg.Done()
	defer close(done)

	if len(message) > 0 && message[len(message)-1] == '\n' {
		message = message[:len(message)-1]
	}

	finish := func() {
		if errors.Is(context.Cause(ctx), ErrLoadingFailed) {
			l.printMessage(redText, redXEmoji, message)
			return
		}
		if l.Verbosity() >= VerbosityNormal {
			l.printMessage(green, checkmark, message)
		}
	}

	if !l.isInteractiveTerminal() {
		if l.Verbosity() >= VerbosityNormal {
			l.printMessage(yellowText, loadingEmoji, message)
		}
		<-ctx.Done()
		finish()
		return
	}

	ticker := time.NewTicker(330 * time.Millisecond)
	defer ticker.Stop()
	spinners := []string{"|", "/", "-", "\\"}

	for i := 0; ; i = (i + 1) % len(spinners) {
		select {
		case <-ctx.Done():
			l.writef("\r\033[2K")
			finish()
			return
		case <-ticker.C:
			l.writef("\r%s\t%s", spinners[i], message)
		}
	}
}

// Exit stops every active Loading animation and terminates with code.
func (l *FunLogger) Exit(code int) {
	l.mu.Lock()
	l.exited = true
	cancels := l.activeCancels
	l.activeCancels = nil
	l.mu.Unlock()

	for _, cancel := range cancels {
		cancel(nil)
	}
	l.Wg.Wait()

	l.ExitFunc(code)
}

func (l *FunLogger) printMessage(color, emoji, message string) {
	if l.colorize() {
		l.writef("%s%s%s\t%s\n", color, emoji, reset, message)
		return
	}
	l.writef("%s\t%s\n", emoji, message)
}

func (l *FunLogger) writef(format string, a ...any) {
	l.outMu.Lock()
	defer l.outMu.Unlock()
	fmt.Fprintf(l.Out, format, a...) // nolint: errcheck
}

func (l *FunLogger) colorize() bool {
	w, ok := l.Out.(fdWriter)
	return ok && isTerminal(w)
}

func (l *FunLogger) isInteractiveTerminal() bool {
	return l.colorize() && !l.isCILogs()
}

func (l *FunLogger) isCILogs() bool {
	if os.Getenv("CI") == "true" {
		return true
	}
	return l.IsCI
}

func withNewline(format string) string {
	if len(format) == 0 || format[len(format)-1] != '\n' {
		return format + "\n"
	}
	return format
}

// isTerminal returns whether we have a terminal or not
func isTerminal(w fdWriter) bool {
	return isatty.IsTerminal(w.Fd())
}

type exitFunc func(int)
