// rc-invcheck loads one or more inventory sources, prints a summary, and
// optionally re-renders them. Useful for eyeballing what the merge job will
// produce before it runs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"rollcall/internal/inventory"
	"rollcall/internal/observability"
)

func main() {
	format := flag.String("format", "", "render the merged inventory in this format (ini, yaml, json)")
	out := flag.String("o", "", "write the rendered inventory to this file instead of stdout")
	logLevel := flag.String("log-level", "warn", "zerolog level")
	flag.Parse()

	observability.InitLogger(*logLevel)

	sources := flag.Args()
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "usage: rc-invcheck [-format ini|yaml|json] [-o file] <file-or-dir>...")
		os.Exit(2)
	}

	reg, err := inventory.Load(sources...)
	if err != nil {
		log.Fatal().Err(err).Msg("load failed")
	}

	fmt.Printf("hosts: %d\n", reg.Len())
	for _, group := range reg.GroupNames() {
		fmt.Printf("  [%s] %d\n", group, len(reg.HostsInGroup(group)))
	}

	if *out != "" {
		if err := reg.SaveToDisk(*out); err != nil {
			log.Fatal().Err(err).Str("path", *out).Msg("save failed")
		}
		return
	}
	if *format != "" {
		rendered, err := reg.Serialize(*format)
		if err != nil {
			log.Fatal().Err(err).Msg("render failed")
		}
		fmt.Println(rendered)
	}
}
