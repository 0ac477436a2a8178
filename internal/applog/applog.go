// Package applog builds the process-wide zap logger, switched between a
// production JSON encoder and a development console encoder by the
// configured Env.
package applog

import (
	"go.uber.org/zap"
)

// New builds a *zap.SugaredLogger for env ("development" or anything
// else, treated as production).
func New(env string) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error
	if env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
