// Command createuser adds an account directly to the database, typically the
// first staff or superuser account of a fresh deployment.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mmynk/homebase/internal/auth"
	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/storage"
	"github.com/mmynk/homebase/internal/storage/sqlstore"
)

const defaultDSN = "./data/homebase.db"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email address (login name)")
	first := fs.String("first", "", "First name")
	last := fs.String("last", "", "Last name")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	staff := fs.Bool("staff", false, "Mark the account as staff")
	superuser := fs.Bool("superuser", false, "Mark the account as superuser (implies -staff)")
	driver := fs.String("db-driver", sqlstore.DriverSQLite, "Database driver: sqlite or postgres")
	dsn := fs.String("db", defaultDSN, "Database file or connection string")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(stdout, "Usage: createuser -email <email> [-first <name>] [-last <name>] [-password <password>] [-staff] [-superuser] [-db-driver <driver>] [-db <dsn>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}
	if !strings.Contains(*email, "@") {
		return fmt.Errorf("invalid email address %q", *email)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	// Fall back to the server's settings when the flags were left at their defaults.
	if v := os.Getenv("DB_DRIVER"); v != "" && *driver == sqlstore.DriverSQLite {
		*driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" && *dsn == defaultDSN {
		*dsn = v
	}

	store, err := sqlstore.Open(*driver, *dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	authn := auth.NewPasswordAuthenticator(store)
	if err := authn.ValidateCredential(password); err != nil {
		return err
	}

	normalized := models.NormalizeEmail(*email)
	if _, err := store.GetUserByEmail(ctx, normalized); err == nil {
		return fmt.Errorf("user %s already exists", normalized)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := authn.HashPassword(password)
	if err != nil {
		return err
	}

	user := models.NewUser(normalized, *first, *last, hash)
	user.IsSuperuser = *superuser
	user.IsStaff = *staff || *superuser
	if err := store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// Pipes and tests.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
