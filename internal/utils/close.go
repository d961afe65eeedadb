package utils

import (
	"io"

	"github.com/MrSnakeDoc/hookstudio/internal/logger"
)

// Close closes c and ignores any error. For read-side bodies and files where
// a close failure changes nothing.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs a failure, naming what was being closed.
func CloseLogged(c io.Closer, what string, log logger.Logger) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", what), logger.Error(err))
	}
}
