package core

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// FatalHandler receives the fully formatted fatal message. It must not return
// normally; the default handler exits the process.
type FatalHandler func(msg string)

var (
	fatalMu      sync.Mutex
	fatalLogger  = zap.NewNop()
	fatalHandler FatalHandler
)

// SetFatalLogger installs the logger that records fatal messages before the
// handler runs. A nil logger restores the no-op logger.
func SetFatalLogger(l *zap.Logger) {
	fatalMu.Lock()
	defer fatalMu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	fatalLogger = l
}

// SetFatalHandler replaces the fatal handler and returns the previous one.
// Passing nil restores the exiting default.
func SetFatalHandler(h FatalHandler) FatalHandler {
	fatalMu.Lock()
	defer fatalMu.Unlock()
	prev := fatalHandler
	fatalHandler = h
	return prev
}

// Fatalf reports an unrecoverable configuration error. The message names the
// calling function, line and file and the handler then aborts.
func Fatalf(format string, args ...any) {
	fatalAt(2, fmt.Sprintf(format, args...))
}

// Assert calls Fatalf with the failed condition description when cond is false.
func Assert(cond bool, what string) {
	if cond {
		return
	}
	fatalAt(2, "assertion failed: "+what)
}

func fatalAt(skip int, msg string) {
	function, file, line := "?", "?", 0
	if pc, f, l, ok := runtime.Caller(skip); ok {
		file = filepath.Base(f)
		line = l
		if fn := runtime.FuncForPC(pc); fn != nil {
			function = fn.Name()
			if i := strings.LastIndex(function, "/"); i >= 0 {
				function = function[i+1:]
			}
		}
	}
	full := fmt.Sprintf("FATAL ERROR: Function/Line/File/Message: %s/%d/%s/%s", function, line, file, msg)

	fatalMu.Lock()
	logger := fatalLogger
	handler := fatalHandler
	fatalMu.Unlock()

	logger.Error(full, zap.String("function", function), zap.Int("line", line), zap.String("file", file))
	_ = logger.Sync()
	if handler != nil {
		handler(full)
		// A handler that returns still aborts the caller.
		panic(full)
	}
	fmt.Fprintln(os.Stderr, full)
	os.Exit(1)
}
