package main

import (
	"fluggy/internal/back"
	"fluggy/internal/config"
	"fluggy/resources"

	"go.uber.org/zap"
)

// migrateUp applies every pending migration using the same TLS policy as
// the server pool.
func migrateUp(conf *config.Config, log *zap.Logger) error {
	dsn, err := back.NormalizeDSN(conf.DatabaseURL, conf.DatabaseInsecureSkipVerify)
	if err != nil {
		return err
	}

	log.Info("applying migrations")
	if err := resources.MigrateUp(dsn); err != nil {
		return err
	}
	log.Info("database is up to date")

	return nil
}
