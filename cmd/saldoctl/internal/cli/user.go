package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/MrJamesThe3rd/saldo/internal/identity"
	identityStore "github.com/MrJamesThe3rd/saldo/internal/identity/store"
	"github.com/MrJamesThe3rd/saldo/internal/user"
	userStore "github.com/MrJamesThe3rd/saldo/internal/user/store"
)

func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(newUserAddCommand())

	return cmd
}

type userAddOptions struct {
	email    string
	username string
	password string
}

func newUserAddCommand() *cobra.Command {
	opts := &userAddOptions{}

	cmd := &cobra.Command{
		Use:   "add [--email <email>] [--username <name>]",
		Short: "Register a user, prompting for whatever the flags leave out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.complete(cmd.InOrStdin()); err != nil {
				return err
			}

			e, err := connect()
			if err != nil {
				return err
			}
			defer e.db.Close()

			accounts := identity.NewLocal(identityStore.New(e.db, e.dialect), e.cfg.Auth.Secret, e.cfg.Auth.TokenTTL)
			svc := user.NewService(userStore.New(e.db, e.dialect), accounts)

			u, err := svc.Register(cmd.Context(), user.RegisterParams{
				Email:    opts.email,
				Password: opts.password,
				Username: opts.username,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.ID, u.Email)

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "login email")
	cmd.Flags().StringVar(&opts.username, "username", "", "display name")
	cmd.Flags().StringVar(&opts.password, "password", "", "password (prompted when omitted)")

	return cmd
}

// complete fills in missing fields: through a form on a terminal, otherwise
// by reading the password as one line of stdin.
// isTerminal reports whether r is an interactive terminal.
var isTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (o *userAddOptions) complete(stdin io.Reader) error {
	if isTerminal(stdin) {
		if f := o.form(); f != nil {
			if err := f.Run(); err != nil {
				return err
			}
		}
	} else {
		if o.email == "" || o.username == "" {
			return errors.New("--email and --username are required when stdin is not a terminal")
		}

		if o.password == "" {
			p, err := readLine(stdin)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			o.password = p
		}
	}

	if strings.TrimSpace(o.password) == "" {
		return errors.New("password cannot be empty")
	}

	return nil
}

// form prompts for the fields not given as flags. It is nil when every field
// is already set.
func (o *userAddOptions) form() *huh.Form {
	notEmpty := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s cannot be empty", field)
			}

			return nil
		}
	}

	var fields []huh.Field

	if o.email == "" {
		fields = append(fields, huh.NewInput().
			Key("email").
			Title("Email").
			Value(&o.email).
			Validate(notEmpty("email")))
	}

	if o.username == "" {
		fields = append(fields, huh.NewInput().
			Key("username").
			Title("Username").
			Value(&o.username).
			Validate(notEmpty("username")))
	}

	if o.password == "" {
		fields = append(fields, huh.NewInput().
			Key("password").
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&o.password).
			Validate(notEmpty("password")))
	}

	if len(fields) == 0 {
		return nil
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(50).WithShowHelp(false)
}

func readLine(stdin io.Reader) (string, error) {
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}
