package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omniscale/osmxml"
	"github.com/omniscale/osmxml/cache"
	"github.com/omniscale/osmxml/cache/query"
	"github.com/omniscale/osmxml/config"
	"github.com/omniscale/osmxml/import_"
	"github.com/omniscale/osmxml/log"
	"github.com/omniscale/osmxml/stats"
)

func PrintCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Available commands:")
	fmt.Fprintln(os.Stderr, "\tcount")
	fmt.Fprintln(os.Stderr, "\tcache")
	fmt.Fprintln(os.Stderr, "\timport")
	fmt.Fprintln(os.Stderr, "\tquery-cache")
	fmt.Fprintln(os.Stderr, "\tversion")
}

// usageError prints the error and the usage of cmd and exits.
func usageError(cmd string, err error) {
	if err != flag.ErrHelp {
		fmt.Fprintln(os.Stderr, err)
	}
	config.PrintUsage(os.Stderr, cmd)
	os.Exit(2)
}

func setup(o *config.Options) {
	if o.Quiet {
		log.SetMinLevel(log.LWarn)
	}
	if o.Httpprofile != "" {
		stats.StartHttpPProf(o.Httpprofile)
	}
	if o.Memprofile != "" {
		go stats.MemProfiler(o.Memprofile, 30*time.Second)
	}
}

func printCounts(counts stats.ElementCounts, o *config.Options) {
	rels := fmt.Sprintf("%d", counts.Relations)
	if o.Filter.SkipRelations {
		rels = "not counted"
	}
	fmt.Printf("nodes: %d, ways: %d, relations: %s, errors: %d\n",
		counts.Nodes, counts.Ways, rels, counts.Errors)
}

func Main(usage func()) {
	if len(os.Args) <= 1 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := os.Args[1]
	args := os.Args[2:]
	switch cmd {
	case "count", "cache", "import":
		var o *config.Options
		var err error
		switch cmd {
		case "count":
			o, err = config.ParseCount(args)
		case "cache":
			o, err = config.ParseCache(args)
		case "import":
			o, err = config.ParseImport(args)
		}
		if err != nil {
			usageError(cmd, err)
		}
		setup(o)

		var counts stats.ElementCounts
		switch cmd {
		case "count":
			counts, err = import_.Count(ctx, o)
		case "cache":
			counts, err = import_.Cache(ctx, o)
		case "import":
			counts, err = import_.Import(ctx, o)
		}
		if err != nil {
			log.Fatal(err)
		}
		printCounts(counts, o)
	case "query-cache":
		o, err := config.ParseQuery(args)
		if err != nil {
			usageError(cmd, err)
		}
		osmCache := cache.NewOSMCache(o.CacheDir)
		if !osmCache.Exists() {
			log.Fatalf("[fatal] no cache in %s", o.CacheDir)
		}
		if err := osmCache.Open(); err != nil {
			log.Fatal(err)
		}
		result, err := query.Query(osmCache, query.Request{
			Nodes:     o.Nodes,
			Ways:      o.Ways,
			Relations: o.Relations,
			Full:      o.Full,
		})
		osmCache.Close()
		if err != nil {
			log.Fatal(err)
		}
		if err := query.WriteJSON(os.Stdout, result); err != nil {
			log.Fatal(err)
		}
	case "version":
		fmt.Println(osmxml.Version)
	default:
		usage()
		log.Fatalf("[fatal] invalid command: '%s'", cmd)
	}
}

func main() {
	Main(PrintCmds)
}
