package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"terrasite_backend/internal/adapters/storage"
	"terrasite_backend/internal/archive"
	"terrasite_backend/internal/auth/password"
	authservice "terrasite_backend/internal/auth/service"
	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/internal/leads/repository"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/logger"

	"github.com/urfave/cli/v2"
)

// configLoader defers config loading until a command needs it, so
// hash-password and --help work without a valid environment.
type configLoader func() (*config.Config, error)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(load configLoader) *cli.App {
	app := &cli.App{
		Name:  "leadctl",
		Usage: "Operate the Terrasite lead store",
		Commands: []*cli.Command{
			listCmd(load),
			importCmd(load),
			archiveCmd(load),
			hashPasswordCmd(),
			tokenCmd(load),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// listCmd prints every stored lead.
func listCmd(load configLoader) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print stored leads as JSON",
		Action: func(c *cli.Context) error {
			store, _, err := openStore(c, load)
			if err != nil {
				return outputError(err)
			}
			defer store.Close()

			leads, err := store.GetAll(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, leads)
		},
	}
}

// importCmd appends a legacy leads.json into the configured store.
func importCmd(load configLoader) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Append leads from a JSON file, keeping their timestamps",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Parse the file without writing"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(fmt.Errorf("import needs exactly one file argument"))
			}

			entries, err := readLeadFile(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			if c.Bool("dry-run") {
				return outputJSON(c.App.Writer, map[string]int{"parsed": len(entries)})
			}

			store, _, err := openStore(c, load)
			if err != nil {
				return outputError(err)
			}
			defer store.Close()

			imported := 0
			for _, entry := range entries {
				if _, err := store.Add(c.Context, entry.sub, entry.acceptedAt); err != nil {
					return outputError(fmt.Errorf("import stopped after %d leads: %w", imported, err))
				}
				imported++
			}
			return outputJSON(c.App.Writer, map[string]int{"imported": imported})
		},
	}
}

// archiveCmd copies stored leads that are missing from the MinIO archive.
func archiveCmd(load configLoader) *cli.Command {
	return &cli.Command{
		Name:  "archive-backfill",
		Usage: "Archive stored leads that are not in object storage yet",
		Action: func(c *cli.Context) error {
			store, cfg, err := openStore(c, load)
			if err != nil {
				return outputError(err)
			}
			defer store.Close()

			if !cfg.IsMinIOEnabled() {
				return outputError(fmt.Errorf("APP_MINIO_ENDPOINT is not configured"))
			}
			storageSvc, err := storage.NewMinIOService(cfg)
			if err != nil {
				return outputError(err)
			}

			archiver := archive.New(storageSvc, cfg.GetMinioBucketLeads(), cliLogger(cfg))
			if err := archiver.Init(c.Context); err != nil {
				return outputError(err)
			}

			leads, err := store.GetAll(c.Context)
			if err != nil {
				return outputError(err)
			}
			written, err := archiver.Backfill(c.Context, leads)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, map[string]int{"archived": written, "total": len(leads)})
		},
	}
}

// hashPasswordCmd prints a bcrypt hash for APP_ADMIN_PASSWORD_HASH.
func hashPasswordCmd() *cli.Command {
	return &cli.Command{
		Name:  "hash-password",
		Usage: "Hash an admin password (reads stdin when --password is omitted)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Plain password"},
		},
		Action: func(c *cli.Context) error {
			plain := c.String("password")
			if plain == "" {
				line, err := readLine(c.App.Reader)
				if err != nil {
					return outputError(err)
				}
				plain = line
			}
			if plain == "" {
				return outputError(fmt.Errorf("password is required"))
			}

			hash, err := password.Hash(plain)
			if err != nil {
				return outputError(err)
			}
			_, err = fmt.Fprintln(c.App.Writer, hash)
			return err
		},
	}
}

// tokenCmd mints an admin access token without a password.
func tokenCmd(load configLoader) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint an admin access token",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime (defaults to APP_ADMIN_TOKEN_TTL)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := load()
			if err != nil {
				return outputError(err)
			}

			ttl := c.Duration("ttl")
			if ttl <= 0 {
				ttl = cfg.GetAdminTokenTTL()
			}

			svc := authservice.New(cfg)
			token, expiresAt, err := svc.IssueToken(authservice.AdminSubject, []string{authservice.RoleAdmin}, ttl)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, map[string]string{
				"token":     token,
				"expiresAt": expiresAt.UTC().Format(time.RFC3339),
			})
		},
	}
}

type importEntry struct {
	sub        domain.Submission
	acceptedAt time.Time
}

// readLeadFile parses a JSON array of stored leads. Ids in the file are
// ignored; the store assigns new ones.
func readLeadFile(path string) ([]importEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var leads []domain.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	entries := make([]importEntry, 0, len(leads))
	for i, lead := range leads {
		at, err := lead.AcceptedAt()
		if err != nil {
			return nil, fmt.Errorf("lead #%d has timestamp %q: %w", i+1, lead.Timestamp, err)
		}
		if !lead.ContactMethod.Valid() {
			return nil, fmt.Errorf("lead #%d has unknown contact method %q", i+1, lead.ContactMethod)
		}
		if lead.Services == nil {
			lead.Services = []string{}
		}
		entries = append(entries, importEntry{sub: lead.Submission, acceptedAt: at})
	}
	return entries, nil
}

func openStore(c *cli.Context, load configLoader) (*repository.Store, *config.Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, nil, err
	}
	store, err := repository.Open(c.Context, cfg, cliLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// cliLogger keeps stdout clean for JSON output.
func cliLogger(cfg *config.Config) *logger.Logger {
	return logger.NewWithWriter(cfg.Env, os.Stderr)
}

func readLine(r io.Reader) (string, error) {
	if r == nil {
		r = os.Stdin
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	return cli.Exit(err.Error(), 1)
}
