// Package logging construye el logger zap a partir de la configuración.
package logging

import (
	"fmt"

	"github.com/dmendozad/tableros-vpo/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New crea el logger según nivel y formato configurados; el override de línea
// de comandos tiene prioridad sobre el fichero.
func New(conf config.Logging, levelOverride string) (*zap.Logger, error) {
	level := conf.Level
	if levelOverride != "" {
		level = levelOverride
	}
	var zapLevel zapcore.Level
	switch level {
	case "", "info":
		zapLevel = zapcore.InfoLevel
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("nivel de log inválido: %s", level)
	}

	var cfg zap.Config
	switch conf.Format {
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("formato de log inválido: %s", conf.Format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return cfg.Build()
}
