package main

import (
	"os"

	"github.com/lintang-b-s/gridnav/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := newRootCmd(log).Execute(); err != nil {
		log.Error("gridpath failed", zap.Error(err))
		os.Exit(1)
	}
}
