package utils

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/logging"
)

// WrapIfNotNil prefixes err with the calling function's name and any extra
// context, keeping err reachable through errors.Is / errors.As.
func WrapIfNotNil(err error, context ...string) error {
	if err == nil {
		return nil
	}

	parts := make([]string, 0, 1+len(context))
	parts = append(parts, callerName(2))
	for _, c := range context {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}

	return fmt.Errorf("%s: %w", strings.Join(parts, " - "), err)
}

func callerName(skip int) string {
	if pc, _, _, ok := runtime.Caller(skip); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			return fn.Name()
		}
	}
	return "unknown"
}

// PrintStack logs the current goroutine's call stack, used when recovering
// from a panic in a long-running loop.
func PrintStack(title string, log logging.Logger) {
	log.Errorf(" %s Stack trace:", title)
	// skip = 2 to ignore PrintStack and its caller (defer wrapper)
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		log.Errorf("     *** %s (%s:%d)", fn.Name(), file, line)
	}
}
