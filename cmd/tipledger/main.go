package main

import (
	"log"

	"github.com/anoideaopen/tipledger/core"
	"github.com/anoideaopen/tipledger/core/logger"
	"github.com/anoideaopen/tipledger/tipbot"
)

func main() {
	l := logger.Logger()
	l.Warning("start tipledger")

	cc, err := core.NewCC(tipbot.NewContract())
	if err != nil {
		log.Fatal(err)
	}

	if err = cc.Start(); err != nil {
		log.Fatal(err)
	}
}
