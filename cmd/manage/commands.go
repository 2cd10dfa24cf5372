package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
	"github.com/EliasObeid9-02/library-system/pkg/lending"
	"github.com/EliasObeid9-02/library-system/pkg/mail"
	"github.com/EliasObeid9-02/library-system/pkg/passwordreset"
	"github.com/EliasObeid9-02/library-system/pkg/users"
)

func createSuperuserCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "create-superuser",
		Usage: "create an active user with staff and superuser rights",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"SUPERUSER_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			password := c.String("password")
			user, err := users.NewService(env.db).CreateSuperuser(c.Context, users.RegisterOptions{
				Username:        c.String("username"),
				Email:           c.String("email"),
				Password:        password,
				ConfirmPassword: password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Superuser %q created (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
}

func promoteCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:      "promote",
		Usage:     "give a user staff rights",
		ArgsUsage: "<username>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one username", 1)
			}
			msg, err := users.NewService(env.db).Promote(c.Context, users.ManagementActor(), c.Args().First())
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}
}

func demoteCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:      "demote",
		Usage:     "remove a user's staff rights",
		ArgsUsage: "<username>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one username", 1)
			}
			msg, err := users.NewService(env.db).Demote(c.Context, users.ManagementActor(), c.Args().First())
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}
}

func overdueCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "overdue",
		Usage: "list copies that are out past their due date",
		Action: func(c *cli.Context) error {
			instances, err := lending.NewService(env.db, env.cfg.LoanPeriod).ListOverdue(c.Context)
			if err != nil {
				return err
			}
			if len(instances) == 0 {
				fmt.Println("No overdue copies")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COPY\tBOOK\tBORROWER\tDUE")
			for _, bi := range instances {
				title, borrower, due := "", "", ""
				if bi.Book != nil {
					title = bi.Book.Title
				}
				if bi.Borrower != nil {
					borrower = bi.Borrower.Username
				}
				if bi.DueDate != nil {
					due = bi.DueDate.Format(time.DateOnly)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", bi.ID, title, borrower, due)
			}
			return w.Flush()
		},
	}
}

func purgeTokensCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "purge-tokens",
		Usage: "delete expired login and password reset tokens",
		Action: func(c *cli.Context) error {
			logins, err := auth.NewService(env.db, env.cfg.TokenTTL).PurgeExpiredTokens(c.Context)
			if err != nil {
				return err
			}

			// The reset service needs a mailer to be built, but purging never
			// sends anything.
			resets, err := passwordreset.NewService(
				env.db,
				users.NewService(env.db),
				mail.NewLogMailer(env.cfg.MailFrom),
				env.cfg.ResetTokenTTL,
				env.cfg.PasswordResetURL,
			).PurgeExpired(c.Context)
			if err != nil {
				return err
			}

			fmt.Printf("Deleted %d login tokens and %d reset tokens\n", logins, resets)
			return nil
		},
	}
}
