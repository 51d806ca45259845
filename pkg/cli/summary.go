package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/nixbump/pkg/domain/model"
	"github.com/m-mizutani/nixbump/pkg/infra/sources"
)

var (
	headline = color.New(color.FgGreen, color.Bold)
	notice   = color.New(color.FgYellow)
)

// printUpdateSummary prints the human-readable result of an update run
func printUpdateSummary(w io.Writer, target model.Target, result *model.UpdateResult) error {
	if w == nil {
		w = os.Stdout
	}

	if !result.Updated {
		headline.Fprintf(w, "Already up to date: %s\n", result.Current.Version)
		return nil
	}

	record, err := sources.Encode(result.Current)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Updated from %s to %s\n", result.Previous.Version, result.Current.Version)
	fmt.Fprintln(w)
	headline.Fprintln(w, "Update complete!")
	fmt.Fprint(w, string(record))

	if !result.LockfilePatched {
		notice.Fprintf(w, "Warning: %s import preamble was not patched; check for unused fetchers\n", target.Lockfile)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintf(w, "1. Test build: nix build .#%s\n", target.PackageAttr())
	fmt.Fprintln(w, "2. Commit and push changes")
	return nil
}

// printCheckSummary prints the result of a check run
func printCheckSummary(w io.Writer, result *model.CheckResult) {
	if w == nil {
		w = os.Stdout
	}

	if result.UpToDate {
		headline.Fprintf(w, "Already up to date: %s\n", result.Current)
		return
	}
	notice.Fprintf(w, "Update available: %s -> %s (tag %s)\n", result.Current, result.Latest, result.TagName)
}
