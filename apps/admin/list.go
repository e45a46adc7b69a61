package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/ecole-ece/vitrine/core/content"
)

// list prints the stored pages with their back office label.
func (cli *commandLine) list() error {
	docs, err := cli.repo.ListDocuments(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tLABEL\tUPDATED")
	for _, doc := range docs {
		label := content.DefaultLabels.With(cli.conf.Content.Labels).For(doc.Key, doc.Title)
		fmt.Fprintf(w, "%s\t%s\t%s\n", doc.Key, label, doc.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
