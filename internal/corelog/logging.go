// Package corelog provides the render core's logging, clock, metrics and
// error taxonomy. It mirrors the teacher engine's package-level logger
// singleton rather than threading a logger through every constructor.
package corelog

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "rendercore ",
			})
			l.SetLevel(log.InfoLevel)
			singleton = &logger{l}
		})
	}
	return singleton
}

// SetOutput redirects the singleton logger, mainly so tests can capture or
// silence it without touching package-level state directly.
func SetOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

// SetLevel changes the minimum level the singleton logger emits.
func SetLevel(level log.Level) {
	getLogger().SetLevel(level)
}

// WithFields returns a derived logger carrying the given key/value pairs,
// used for per-view and per-fence structured lines (e.g. view=shadow0).
func WithFields(kv ...interface{}) *log.Logger {
	return getLogger().With(kv...)
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
