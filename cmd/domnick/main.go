// cmd/domnick/main.go
//
// domnick looks a DOM up in the nicknames file by mainboard ID, name,
// production ID or "string-dom" position.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/domhub/hubmoni/pkg/nicknames"
)

var errNotFound = errors.New("no such DOM")

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "domnick: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("domnick", pflag.ContinueOnError)
	file := flags.StringP("file", "f", "", "nicknames file (default: search path)")

	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	if flags.NArg() != 1 {
		fmt.Fprintf(out, "Usage: %s <dom>\n", args[0])
		return nil
	}

	var (
		nicks *nicknames.Nicknames
		err   error
	)

	if *file != "" {
		nicks, err = nicknames.Load(*file)
	} else {
		nicks, err = nicknames.Find(nicknames.DefaultFile, nicknames.DefaultSearchPaths())
	}

	if err != nil {
		return err
	}

	mbid, ok := nicks.FindMBID(flags.Arg(0))
	if !ok {
		return fmt.Errorf("%w: %s", errNotFound, flags.Arg(0))
	}

	prodID, _ := nicks.ProdID(mbid)
	name, _ := nicks.Name(mbid)

	pos := "-"
	if p, ok := nicks.Position(mbid); ok {
		pos = p.OMKey()
	}

	fmt.Fprintln(out, mbid, prodID, name, pos)

	return nil
}
