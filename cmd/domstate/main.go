// cmd/domstate/main.go
//
// domstate reports the boot state of DOMs without disturbing them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/domhub/hubmoni/pkg/dor"
)

var errUnknownCWD = errors.New("unknown CWD")

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("domstate", pflag.ContinueOnError)
	prefix := flags.StringP("dor", "d", dor.DefaultPrefix, "DOR procfile prefix")
	devDir := flags.String("dev", dor.DefaultDevDir, "DOR device directory")
	timeout := flags.Duration("timeout", dor.DefaultStateTimeout, "state poll deadline")

	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	if flags.NArg() != 1 {
		fmt.Fprintf(out, "Usage: %s CWD|all\n", args[0])
		return nil
	}

	d := dor.New(*prefix, dor.WithDevDir(*devDir), dor.WithStateTimeout(*timeout))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
	defer cancel()

	states, err := query(ctx, d, flags.Arg(0))
	if err != nil {
		return err
	}

	for _, c := range dor.SortedCoordinates(states) {
		fmt.Fprintln(out, c, states[c])
	}

	return nil
}

// query polls every communicating DOM for "all", otherwise the one DOM
// named. A CWD with no DOM behind it reports noplug.
func query(ctx context.Context, d *dor.Driver, arg string) (map[dor.Coordinate]dor.State, error) {
	if strings.EqualFold(arg, "all") {
		return d.States(ctx, d.CommunicatingDOMs()), nil
	}

	c, ok := dor.ParseCoordinate(arg)
	if !ok {
		return nil, fmt.Errorf("%w %s", errUnknownCWD, arg)
	}

	return d.StatesOf(ctx, []dor.Coordinate{c}), nil
}
