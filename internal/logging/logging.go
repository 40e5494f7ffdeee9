package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process-wide JSON logger. The instance is passed to
// services at construction instead of living in a package global.
func New() *logrus.Logger {
	logg := logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logrus.InfoLevel)
	logg.SetOutput(os.Stdout)
	return logg
}
