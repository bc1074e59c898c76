package cli

import (
	"github.com/Ajay03299/DevForge/internal/app"
)

// InitializeLoggers routes the lower layers' diagnostics through logger
func InitializeLoggers(logger *Logger) {
	app.SetLogger(logger)
}
