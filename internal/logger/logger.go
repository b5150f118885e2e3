package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the global logger instance
var Log *slog.Logger

type Options struct {
	Dev       bool
	AppName   string
	AppEnv    string
	SentryDSN string
}

// Init configures the global logger.
// Development: text, debug level. Production: JSON, info level.
// With a Sentry DSN, error records are also sent to Sentry.
func Init(opts Options) {
	var handlers []slog.Handler

	if opts.Dev {
		handlers = append(handlers, slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.AppEnv,
			ServerName:  opts.AppName,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		} else {
			slog.Warn("sentry init failed, errors stay local", "error", err)
		}
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	Log = slog.New(handler).With("app", opts.AppName)
	slog.SetDefault(Log)
}

// Flush waits for buffered Sentry events. Safe to call without Sentry.
func Flush() {
	sentry.Flush(2 * time.Second)
}
