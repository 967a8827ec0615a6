package main

import (
	"context"
	"fluggy/internal/back"
	"fluggy/internal/config"
	"fluggy/internal/web"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func serve(conf *config.Config, log *zap.Logger) error {
	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := back.New(ctx, back.Options{
		DSN:                conf.DatabaseURL,
		InsecureSkipVerify: conf.DatabaseInsecureSkipVerify,
	}, log)
	if err != nil {
		return err
	}
	defer b.Close() // nolint:errcheck

	server, err := web.NewServer(b, web.ServerOptions{Address: conf.HTTPAddress}, log)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	served := make(chan error, 1)
	go func() {
		served <- server.Serve(done)
	}()

	select {
	case sig := <-signaled:
		log.Info("received signal", zap.Stringer("signal", sig))
		close(done)
		err = <-served
	case err = <-served:
	}

	if err != nil {
		return err
	}

	log.Info("shutdown complete")

	return nil
}
