package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/cmd/jobbench/cmd"
	"github.com/G-Research/jobbench/internal/common"
	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/internal/common/logging"
)

func main() {
	common.ConfigureCommandLineLogging()
	if err := cmd.RootCmd().Execute(); err != nil {
		logging.WithStacktrace(log.NewEntry(log.StandardLogger()), err).Error("jobbench failed")
		os.Exit(jobbencherrors.ExitCodeFromError(err))
	}
}
