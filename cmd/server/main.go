package main

import (
	"github.com/OFFIS-RIT/kgraph/backend/internal/server"
	"github.com/OFFIS-RIT/kgraph/backend/internal/setup"
	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	setup.InitLogger(setup.ConfigFromEnv())
	defer logger.Close()

	server.Init()
}
