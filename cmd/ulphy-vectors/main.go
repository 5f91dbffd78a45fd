// Command ulphy-vectors dumps the deterministic reference sequences and
// tables the receive chain uses (Zadoff-Chu root sequences, Gold
// scrambling sequences, rate-matching sub-block permutations) to stdout
// as CSV, for cross-checking against an independent implementation.
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/srs-go/enb-ulphy/internal/numerics"
)

func main() {
	var kind = pflag.StringP("kind", "k", "zc", "Sequence to dump: zc, gold, ratematch.")
	var length = pflag.IntP("length", "n", 12, "Sequence length (zc: prime length; ratematch: code block size K).")
	var root = pflag.IntP("root", "u", 1, "Zadoff-Chu root index.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - dump reference sequences for cross-checking.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nUsage: ulphy-vectors --kind zc|gold|ratematch [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	switch *kind {
	case "zc":
		seq := numerics.ZadoffChu(*root, *length)
		for i, s := range seq {
			w.Write([]string{strconv.Itoa(i), formatComplex(s)})
		}
	case "gold":
		bits := numerics.GenerateSequence(1, *length)
		for i, b := range bits {
			w.Write([]string{strconv.Itoa(i), strconv.Itoa(int(b))})
		}
	case "ratematch":
		tables := numerics.GetRateMatchTables(*length)
		for i, v := range tables.SubblockLUT {
			w.Write([]string{strconv.Itoa(i), strconv.Itoa(v)})
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown --kind %q\n", *kind)
		os.Exit(1)
	}
}

func formatComplex(c complex64) string {
	return fmt.Sprintf("%f%+fi", real(c), imag(c))
}
