// Package main provides the brainforge CLI.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/born-ml/brainforge/internal/activation"
	"github.com/born-ml/brainforge/internal/gradcheck"
	"github.com/born-ml/brainforge/internal/ops"
)

const version = "v0.1.0-dev"

func main() {
	log.SetFlags(0)
	log.SetPrefix("brainforge: ")

	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("brainforge %s\n", version)
	case "activations":
		fmt.Println(strings.Join(activation.Names(), "\n"))
	case "gradcheck":
		if !runGradcheck(os.Args[2:]) {
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("brainforge - forward and backward passes for conv, pool, RNN and LSTM")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version       Show version")
	fmt.Println("  activations   List available activations")
	fmt.Println("  gradcheck     Compare analytic gradients with finite differences")
}

// runGradcheck reports whether every check passed.
func runGradcheck(args []string) bool {
	defaults := gradcheck.DefaultOptions()

	fs := flag.NewFlagSet("gradcheck", flag.ExitOnError)
	seed := fs.Int64("seed", defaults.Seed, "random seed for inputs and weights")
	eps := fs.Float64("eps", defaults.Step, "finite-difference step")
	tol := fs.Float64("tol", defaults.Tolerance, "maximum relative error")
	act := fs.String("act", defaults.Activation, "activation for recurrent and LSTM cells ("+strings.Join(activation.Names(), ", ")+")")
	sequential := fs.Bool("sequential", false, "disable batch parallelism")
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	opts := gradcheck.Options{
		Seed:       *seed,
		Step:       *eps,
		Tolerance:  *tol,
		Activation: *act,
		Config:     ops.DefaultConfig(),
	}
	if *sequential {
		opts.Config = ops.Config{}
	}

	results, err := gradcheck.Suite(opts)
	if err != nil {
		log.Fatal(err)
	}

	failed := 0
	for _, r := range results {
		fmt.Println(r)
		if !r.Passed() {
			failed++
		}
	}
	fmt.Printf("\n%d checks, %d failed\n", len(results), failed)
	return failed == 0
}
