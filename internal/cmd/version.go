package cmd

import (
	"fmt"

	"github.com/alecthomas/kong"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Version prints build information.
type Version struct{}

func (v *Version) Run(kctx *kong.Context, info BuildInfo) error {
	_, err := fmt.Fprintf(kctx.Stdout, "deckrc %s (%s, %s)\n", info.Version, info.Commit, info.Date)
	return err
}
