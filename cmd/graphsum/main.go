// Command graphsum sums the values of all graph nodes reachable from node 0,
// traversing the graph in parallel on a fixed-size worker pool.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kashari/golog"

	"github.com/jzx17/graphsum/pkg/graph"
	"github.com/jzx17/graphsum/pkg/traverse"
)

const logPath = "./graphsum.log"

func main() {
	workers := flag.Int("workers", 4, "number of worker goroutines")
	verbose := flag.Bool("verbose", false, "write traversal debug logs to "+logPath)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] input_file\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if *verbose {
		if err := golog.Init(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "open log file %s: %v\n", logPath, err)
			os.Exit(1)
		}
		traverse.SetDebugLogging(true)
	}

	g, err := graph.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sum, err := traverse.SumFrom(g, 0, *workers)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(sum)
}
