package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/core/content"
	appfs "github.com/ecole-ece/vitrine/fs"
)

const dirSeedPattern = "**/*.{yaml,yml,json}"

// seedSource returns the seed files: dir when set, the embedded seeds otherwise.
func seedSource(conf *core.Config, dir string) (fs.FS, string) {
	if dir != "" {
		return os.DirFS(dir), dirSeedPattern
	}
	pattern := conf.Content.SeedPattern
	if pattern == "" {
		pattern = appfs.SeedsPattern
	}
	return appfs.FS, pattern
}

// seed creates the missing pages. Existing pages are skipped unless force is set,
// in which case their content is overwritten. With dryRun nothing is written.
func (cli *commandLine) seed(fsys fs.FS, pattern string, force, dryRun bool) error {
	ctx := context.Background()

	docs, err := content.LoadSeeds(fsys, pattern)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err = cli.validate.Struct(doc); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: doc.Key, Error: "invalid seed"})
		}
	}

	for _, doc := range docs {
		existing, err := cli.repo.GetDocument(ctx, doc.Key)
		switch {
		case errors.Cause(err) == content.ErrNotFound:
			fmt.Fprintf(cli.out, "create %s\n", doc.Key)
			if dryRun {
				continue
			}
			if _, err = cli.repo.CreateDocument(ctx, doc); err != nil {
				return errors.Wrapf(err, "creating %q", doc.Key)
			}

		case err != nil:
			return errors.Wrapf(err, "getting %q", doc.Key)

		case !force:
			fmt.Fprintf(cli.out, "skip %s (exists)\n", doc.Key)

		default:
			diff, err := contentDiff(doc.Key, existing.Content, doc.Content)
			if err != nil {
				return err
			}
			if diff == "" {
				fmt.Fprintf(cli.out, "unchanged %s\n", doc.Key)
				continue
			}
			fmt.Fprintf(cli.out, "update %s\n%s", doc.Key, diff)
			if dryRun {
				continue
			}
			if _, err = cli.repo.ReplaceContent(ctx, doc.Key, doc.Content); err != nil {
				return errors.Wrapf(err, "updating %q", doc.Key)
			}
		}
	}
	return nil
}

// contentDiff returns a unified diff of the indented documents ("" when equal).
func contentDiff(key string, stored, seeded json.RawMessage) (string, error) {
	a, err := indent(stored)
	if err != nil {
		return "", errors.Wrapf(err, "stored %q", key)
	}
	b, err := indent(seeded)
	if err != nil {
		return "", errors.Wrapf(err, "seed %q", key)
	}
	if a == b {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: key + " (stored)",
		ToFile:   key + " (seed)",
		Context:  2,
	})
}

func indent(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}
