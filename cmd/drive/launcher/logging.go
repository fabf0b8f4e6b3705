package launcher

import (
	"io"
	"time"

	"github.com/evalphobia/logrus_sentry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var sentryLevels = []logrus.Level{
	logrus.PanicLevel,
	logrus.FatalLevel,
	logrus.ErrorLevel,
}

// makeLogger builds the node logger. Errors are also reported to sentry
// when a DSN is configured.
func makeLogger(cfg LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Verbosity)
	if err != nil {
		return nil, errors.Wrap(err, "verbosity")
	}
	log := logrus.New()
	log.Out = out
	log.SetLevel(level)

	switch cfg.Format {
	case "text", "":
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	case "json":
		log.Formatter = &logrus.JSONFormatter{}
	default:
		return nil, errors.Errorf("unknown log format %q (valid: text, json)", cfg.Format)
	}

	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, sentryLevels)
		if err != nil {
			return nil, errors.Wrap(err, "create sentry hook")
		}
		hook.Timeout = 5 * time.Second
		hook.StacktraceConfiguration.Enable = true
		log.AddHook(hook)
	}
	return log, nil
}
