package main

import (
	"github.com/clausewise/backend/internal/server"
	"github.com/clausewise/backend/internal/util"
	"github.com/clausewise/backend/pkg/logger"
	"github.com/clausewise/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
