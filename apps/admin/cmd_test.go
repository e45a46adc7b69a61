package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/ecole-ece/vitrine/apps/api/echo"
	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/storage/database/inmem"
	"github.com/ecole-ece/vitrine/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	conf := testutil.NewConfig()

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}

	// start CLI
	var out bytes.Buffer
	return &commandLine{
		conf:     conf,
		repo:     inmemdb.NewContentRepository(db),
		validate: core.NewValidator(core.NewTranslator()),
		out:      &out,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func checkErr(t *testing.T, tt cliTest, err error) {
	if err != nil {
		if tt.wantErr != nil {
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		} else if tt.wantErrStr != "" {
			if err.Error() != tt.wantErrStr {
				t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
			}
		} else {
			t.Errorf("cli.run() unexpected error = %v", err)
		}
	} else if tt.wantErr != nil || tt.wantErrStr != "" {
		t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate without SQL driver", args: []string{"migrate", "up"}, wantErr: errNoSQL},
		{name: "token without email", args: []string{"token"}, wantErr: errHelp},
		{name: "seed unknown flag", args: []string{"seed", "-lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)
	cli.db = new(sql.DB) // never used by the mock

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		if dir != "migrations" {
			return fmt.Errorf("unexpected migrations dir %q", dir)
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "0"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "gallery", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()

	seeds := fstest.MapFS{
		"home.yaml":    {Data: []byte("title: Accueil\ncontent:\n  hero:\n    title: Bienvenue\n  stats: [a, b]\n")},
		"contact.json": {Data: []byte(`{"title": "Contact", "content": {"phone": "01 44 39 06 00"}}`)},
	}
	testutil.CreateDocument(t, cli.repo, "home", "Accueil", `{"hero": {"title": "Salut"}, "stats": ["a", "b"]}`)

	// existing pages are kept
	if err := cli.seed(seeds, "*.{yaml,json}", false, false); err != nil {
		t.Fatalf("cli.seed() error = %v", err)
	}
	if got, want := out.String(), "create contact\nskip home (exists)\n"; got != want {
		t.Errorf("cli.seed() output = %q; want %q", got, want)
	}
	if _, err := cli.repo.GetDocument(ctx, "contact"); err != nil {
		t.Errorf("contact not created: %v", err)
	}

	// dry run prints the diff only
	out.Reset()
	if err := cli.seed(seeds, "*.{yaml,json}", true, true); err != nil {
		t.Fatalf("cli.seed(dry-run) error = %v", err)
	}
	for _, want := range []string{"unchanged contact\n", "update home\n", `-    "title": "Salut"`, `+    "title": "Bienvenue"`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("cli.seed(dry-run) output = %q; missing %q", out.String(), want)
		}
	}
	doc, _ := cli.repo.GetDocument(ctx, "home")
	if !strings.Contains(string(doc.Content), "Salut") {
		t.Errorf("cli.seed(dry-run) wrote %s", doc.Content)
	}

	// force overwrites
	out.Reset()
	if err := cli.seed(seeds, "*.{yaml,json}", true, false); err != nil {
		t.Fatalf("cli.seed(force) error = %v", err)
	}
	doc, _ = cli.repo.GetDocument(ctx, "home")
	if got, want := string(doc.Content), `{"hero":{"title":"Bienvenue"},"stats":["a","b"]}`; got != want {
		t.Errorf("home content = %s; want %s", got, want)
	}
}

func Test_commandLine_seed_invalidKey(t *testing.T) {
	cli, _ := setup(t)

	seeds := fstest.MapFS{"Bad Key.json": {Data: []byte(`{"content": {"a": "b"}}`)}}
	err := cli.seed(seeds, "*.json", false, false)
	if _, ok := err.(*core.ValidationError); !ok {
		t.Fatalf("cli.seed() error = %v; want *core.ValidationError", err)
	}
	docs, _ := cli.repo.ListDocuments(context.Background())
	if len(docs) != 0 {
		t.Errorf("cli.seed() created %d documents; want 0", len(docs))
	}
}

func Test_commandLine_seed_embedded(t *testing.T) {
	cli, _ := setup(t)

	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run(seed) error = %v", err)
	}
	docs, err := cli.repo.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	for _, key := range []string{"about", "activities", "contact", "home", "programs", "research"} {
		found := false
		for _, doc := range docs {
			found = found || doc.Key == key
		}
		if !found {
			t.Errorf("seed %q not created", key)
		}
	}
}

func Test_commandLine_list(t *testing.T) {
	cli, out := setup(t)
	cli.conf.Content.Labels = map[string]string{"home": "Accueil du site"}

	testutil.CreateDocument(t, cli.repo, "home", "Accueil", `{"a": "b"}`)
	testutil.CreateDocument(t, cli.repo, "alumni", "Anciens", `{"a": "b"}`)

	if err := cli.run([]string{"admin", "list"}); err != nil {
		t.Fatalf("cli.run(list) error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("cli.run(list) output = %q; want a header and 2 rows", out.String())
	}
	if !strings.HasPrefix(lines[1], "alumni") || !strings.Contains(lines[1], "Anciens") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "home") || !strings.Contains(lines[2], "Accueil du site") {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func Test_commandLine_token(t *testing.T) {
	cli, out := setup(t)

	if err := cli.run([]string{"admin", "token", "-email", " Admin@ECE.fr ", "-subject", "42"}); err != nil {
		t.Fatalf("cli.run(token) error = %v", err)
	}

	claims := new(echoapi.Claims)
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cli.conf.SecretKey), nil
	})
	if err != nil {
		t.Fatalf("jwt.ParseWithClaims() error = %v", err)
	}
	if claims.Subject != "42" || claims.Email != "admin@ece.fr" || !claims.IsAdmin {
		t.Errorf("claims = %+v", claims)
	}
}

func Test_commandLine_token_invalidEmail(t *testing.T) {
	cli, out := setup(t)

	err := cli.run([]string{"admin", "token", "-email", "lol"})
	if vErr, ok := err.(*core.ValidationError); !ok || vErr.FieldMap()["email"] != "invalid email" {
		t.Fatalf("cli.run(token) error = %v; want an email validation error", err)
	}
	if out.Len() != 0 {
		t.Errorf("cli.run(token) output = %q; want none", out.String())
	}
}
