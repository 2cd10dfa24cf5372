package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"

	"github.com/EliasObeid9-02/library-system/pkg/config"
	"github.com/EliasObeid9-02/library-system/pkg/database"
	"github.com/EliasObeid9-02/library-system/pkg/version"
)

func main() {
	log := logger.New()

	env := &environment{}

	app := &cli.App{
		Name:    "manage",
		Usage:   "administrative commands for the library backend",
		Version: version.Version,
		Before: func(_ *cli.Context) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			db, err := database.New(cfg)
			if err != nil {
				return err
			}
			env.cfg = cfg
			env.db = db
			return nil
		},
		After: func(_ *cli.Context) error {
			if env.db == nil {
				return nil
			}
			return errors.WithStack(env.db.Close())
		},
		Commands: []*cli.Command{
			createSuperuserCommand(env),
			promoteCommand(env),
			demoteCommand(env),
			overdueCommand(env),
			purgeTokensCommand(env),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("command failed")
	}
}

// environment is filled in by the app's Before hook, after flag parsing.
type environment struct {
	cfg *config.Config
	db  *bun.DB
}
