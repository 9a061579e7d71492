package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
)

// CreateContextWithShutdown returns a context that will report done when SIGINT or SIGTERM is
// received. A second signal exits the process immediately.
func CreateContextWithShutdown() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-c:
			log.Infof("Received %s, shutting down", sig)
			cancel()
		case <-ctx.Done():
			return
		}
		<-c
		log.Warn("Received second signal, exiting")
		os.Exit(jobbencherrors.ExitInterrupted)
	}()
	return ctx
}
