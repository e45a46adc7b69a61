package main

import (
	"fmt"

	echoapi "github.com/ecole-ece/vitrine/apps/api/echo"
	"github.com/ecole-ece/vitrine/core"
)

// token prints a signed back office token for the admin identified by subject and email.
func (cli *commandLine) token(subject, email string) error {
	if err := cli.validate.Var(email, "required,email"); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "email", Error: "invalid email"})
	}

	ss, err := echoapi.GenerateToken(echoapi.NewAdminClaims(cli.conf, subject, email), cli.conf.SecretKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, ss)
	return nil
}
