package logger

import (
	"fmt"

	"github.com/pageza/mealplanner/backend/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger: JSON in production, console output with
// debug level everywhere else.
func New(env config.Environment) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if env.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		log, err = cfg.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log.With(zap.String("env", string(env))), nil
}
