package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/siiapp/phasetrack/internal/app/login"
	"github.com/siiapp/phasetrack/internal/audit"
	"github.com/siiapp/phasetrack/internal/config"
	"github.com/siiapp/phasetrack/internal/directory"
	"github.com/siiapp/phasetrack/internal/model"
	"github.com/siiapp/phasetrack/internal/vault"
)

type LoginCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	username string
	password string
	remember bool
}

// NewLoginCommand returns the login command.
func NewLoginCommand(rootCmd *RootCommand, app *kingpin.Application) *LoginCommand {
	c := &LoginCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("login", "Authenticate against the directory service.")
	c.Cmd.Flag("username", "Directory username (saved credentials are offered when omitted).").Short('u').StringVar(&c.username)
	c.Cmd.Flag("password", "Directory password (read from stdin when omitted).").StringVar(&c.password)
	c.Cmd.Flag("remember", "Store the credentials encrypted after a successful login.").BoolVar(&c.remember)

	return c
}

func (c LoginCommand) Name() string { return c.Cmd.FullCommand() }

func (c LoginCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := config.Load(c.rootCmd.ConfigPath)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	auth, err := directory.NewLDAPAuthenticator(directory.LDAPAuthenticatorConfig{
		Directory: cfg.Directory,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("could not create authenticator: %w", err)
	}

	v, err := vault.New(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("could not create vault: %w", err)
	}

	slot, err := vault.NewFileSlot(c.rootCmd.CredentialsPath)
	if err != nil {
		return fmt.Errorf("could not create credential slot: %w", err)
	}

	trail, err := audit.NewFileTrail(c.rootCmd.AuditLogPath)
	if err != nil {
		return fmt.Errorf("could not create audit trail: %w", err)
	}

	svc, err := login.NewService(login.ServiceConfig{
		Authenticator: auth,
		Vault:         v,
		Slot:          slot,
		Trail:         trail,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	username, password := c.username, c.password

	// Saved credentials pre-fill the prompt but never submit on their own.
	if username == "" || password == "" {
		saved, err := svc.SavedCredentials(ctx)
		if err != nil {
			return fmt.Errorf("could not load saved credentials: %w", err)
		}
		if saved != nil {
			if username == "" {
				username = saved.Username
			}
			if password == "" {
				password = saved.Password
			}
		}
	}

	reader := bufio.NewReader(c.rootCmd.Stdin)
	if username == "" {
		fmt.Fprint(c.rootCmd.Stdout, "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("could not read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Fprint(c.rootCmd.Stdout, "Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("could not read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	err = svc.Login(ctx, login.Request{
		Username: username,
		Password: password,
		Remember: c.remember,
	})
	if err != nil {
		if errors.Is(err, model.ErrDenied) {
			fmt.Fprintln(c.rootCmd.Stdout, "Login failed: invalid credentials or access denied.")
			return err
		}
		return fmt.Errorf("could not login: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Welcome %s!\n", username)

	return nil
}
