package main

import (
	"context"
	"log"
	"os"

	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	cli := commandLine{
		conf:     conf,
		validate: core.NewValidator(core.NewTranslator()),
		out:      os.Stdout,
	}

	// set up DB
	if conf.Database.Driver == database.DriverInMem {
		repo, _, err := database.OpenContentRepository(context.Background(), conf)
		errAndDie(err)
		cli.repo = repo
	} else {
		errAndDie(database.CreateIfNotExist(context.Background(), conf))
		db, err := database.Open(conf)
		errAndDie(err)
		defer func() { _ = db.Close() }()
		cli.db, cli.repo = db, database.NewContentRepository(db, conf.Database.Driver)
	}

	// start CLI
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
