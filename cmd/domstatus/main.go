// cmd/domstatus/main.go
//
// domstatus prints a table of the plugged DOMs on this hub. Unless -q is
// given, every DOM's boot state is polled too.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/domhub/hubmoni/pkg/config"
	"github.com/domhub/hubmoni/pkg/dor"
	"github.com/domhub/hubmoni/pkg/nicknames"
)

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "domstatus: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("domstatus", pflag.ContinueOnError)
	quick := flags.BoolP("quick", "q", false, "skip the DOM state poll")
	prefix := flags.StringP("dor", "d", dor.DefaultPrefix, "DOR procfile prefix")
	devDir := flags.String("dev", dor.DefaultDevDir, "DOR device directory")
	nickFile := flags.StringP("nicknames", "n", "", "nicknames file (default: search path)")
	timeout := flags.Duration("timeout", dor.DefaultStateTimeout, "state poll deadline")

	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	opts := []dor.Option{dor.WithDevDir(*devDir), dor.WithStateTimeout(*timeout)}

	if nicks, err := loadNicknames(*nickFile); err == nil {
		opts = append(opts, dor.WithNicknames(nicks))
	} else {
		fmt.Fprintf(os.Stderr, "domstatus: %v\n", err)
	}

	d := dor.New(*prefix, opts...)

	host, _, err := config.LocalHostCluster()
	if err != nil {
		return err
	}

	doms := d.PluggedDOMs()

	var states map[dor.Coordinate]dor.State

	if !*quick {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
		defer cancel()

		states = d.States(ctx, doms)
	}

	rows := make([]row, 0, len(doms))
	for _, dom := range doms {
		rows = append(rows, newRow(dom, states))
	}

	return writeReport(out, host, rows, len(d.CommunicatingDOMs()), states)
}

func loadNicknames(path string) (*nicknames.Nicknames, error) {
	if path != "" {
		return nicknames.Load(path)
	}

	return nicknames.Find(nicknames.DefaultFile, nicknames.DefaultSearchPaths())
}
