package logging

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the application logger: JSON output on stdout at Info
// level. The logger is passed explicitly to every component that needs
// it so tests can substitute their own sink.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	return log
}
