package log

import (
	"github.com/sirupsen/logrus"
)

// Logger Base logger shared by every node in this module.  Callers
// may replace the formatter or output before starting any node.
var Logger = logrus.New()

func init() {
	Logger.SetLevel(logrus.InfoLevel)
}

// NewLogger Create a logger entry tagged with the given node name
func NewLogger(tag string) *logrus.Entry {
	return Logger.WithField("node", tag)
}

// SetLevel Adjust verbosity for all nodes at once
func SetLevel(level logrus.Level) {
	Logger.SetLevel(level)
}
