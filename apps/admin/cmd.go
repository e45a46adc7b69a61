package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/core/content"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf     *core.Config
	db       *sql.DB // nil with the inmem driver
	repo     content.Repository
	validate *validator.Validate
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  seed [-dir DIR] [-force] [-dry-run] - create the pages from the seed files")
	fmt.Fprintln(cli.out, "  list - list the stored pages")
	fmt.Fprintln(cli.out, "  token -email EMAIL [-subject ID] - issue a back office token (development)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedCmd.SetOutput(cli.out)
	seedDir := seedCmd.String("dir", "", "Directory holding the seed files (.yaml, .yml, .json). Defaults to the embedded seeds.")
	seedForce := seedCmd.Bool("force", false, "Overwrite the content of pages that already exist.")
	seedDryRun := seedCmd.Bool("dry-run", false, "Print what would change without writing anything.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenEmail := tokenCmd.String("email", "", "The admin's email.")
	tokenSubject := tokenCmd.String("subject", "admin", "The admin's ID.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			fmt.Fprintln(cli.out, "Usage: migrate up|up-by-one|up-to|down|down-to|redo|reset|status|version|create|fix [ARGS]")
			return errHelp
		}
		return cli.migrate(args[2:])

	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		fsys, pattern := seedSource(cli.conf, *seedDir)
		return cli.seed(fsys, pattern, *seedForce, *seedDryRun)

	case "list":
		return cli.list()

	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenEmail == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenSubject, core.CleanString(*tokenEmail, true /* lower */))

	default:
		cli.printUsage()
		return errHelp
	}
}
