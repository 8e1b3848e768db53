package config

import "github.com/sirupsen/logrus"

// SetVerbosity maps the -v flag of every command onto a logrus level:
// 0=warnings only, 1=normal, 2=debug, 3 and above=trace.
func SetVerbosity(level int) {
	switch {
	case level <= 0:
		logrus.SetLevel(logrus.WarnLevel)
	case level == 1:
		logrus.SetLevel(logrus.InfoLevel)
	case level == 2:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.TraceLevel)
	}
}
