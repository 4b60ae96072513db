// Run status logging.
// Adapted from reporter.go's Statusln/IncrCounter, which wrote
// "reporter:status:"/"reporter:counter:" lines to stderr for Hadoop to
// scrape. There is no Hadoop framework on the other end here, so status
// becomes structured zap log lines on a logger scoped to the run, and
// counters become the Prometheus metrics in metrics.go.
// Copyright (c) 2011 Damian Gryski <damian@gryski.com>
// License: GPLv3 or, at your option, any later version

package mapreduce

import (
	"sync"

	"go.uber.org/zap"
)

var (
	baseLoggerOnce sync.Once
	baseLogger     *zap.Logger
)

// logger returns the process-wide base logger, built once on first use. A
// production binary may call zap.ReplaceGlobals beforehand; this engine
// only ever reads zap.L(), so swapping the global logger before the first
// Run call changes what every subsequent run logs through.
func logger() *zap.Logger {
	baseLoggerOnce.Do(func() {
		baseLogger = zap.L()
	})
	return baseLogger
}
