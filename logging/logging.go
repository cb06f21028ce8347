// Package logging provides the process loggers of netsim and the hook that
// writes the per-node activity logs.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Log is the root logger. The category entries below write through it.
var (
	Log        *logrus.Logger
	SimLog     *logrus.Entry
	CLILog     *logrus.Entry
	MonitorLog *logrus.Entry
	RecordLog  *logrus.Entry
)

// FieldCategory is the field that tells which part of netsim logged an entry.
const FieldCategory = "category"

func init() {
	Log = logrus.New()
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	SimLog = Log.WithField(FieldCategory, "Sim")
	CLILog = Log.WithField(FieldCategory, "CLI")
	MonitorLog = Log.WithField(FieldCategory, "Monitor")
	RecordLog = Log.WithField(FieldCategory, "Record")
}

// SetLevel changes the level of the root logger, given a level name such as
// "debug" or "warning".
func SetLevel(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	Log.SetLevel(l)

	return nil
}
