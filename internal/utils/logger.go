package utils

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// InitLogger configures the global logrus logger. JSON output with ISO
// 8601 timestamps; debug level outside prod.
func InitLogger(env string) {
	log.SetFormatter(&log.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	log.SetOutput(os.Stdout)
	if env == "prod" {
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.DebugLevel)
	}
}
