// cmd/hubconfig/main.go
//
// hubconfig converts the legacy testdaq hubConfig.dat table into the JSON
// (or YAML) hub configuration hubmoni reads.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/domhub/hubmoni/pkg/config"
)

const defaultInput = "hubConfig.dat"

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "hubconfig: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("hubconfig", pflag.ContinueOnError)
	asYAML := flags.Bool("yaml", false, "write YAML instead of JSON")

	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	in := defaultInput
	if flags.NArg() > 0 {
		in = flags.Arg(0)
	}

	hc, err := config.LoadLegacyHubConfig(in)
	if err != nil {
		return err
	}

	return write(out, hc, *asYAML)
}

func write(w io.Writer, hc config.HubConfig, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(hc); err != nil {
			return err
		}

		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")

	return enc.Encode(hc)
}
