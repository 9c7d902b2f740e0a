// gasspect - EVM transaction gas profiler
//
// Fetches the raw execution trace of a transaction from a node exposing the
// debug tracing namespace, reconstructs the call tree, recomputes net gas
// costs, and renders a filtered report:
//
//	gasspect report 0x<txhash> --rpc http://127.0.0.1:8545 --args --res
//	gasspect count  0x<txhash> STATICCALL CALL SSTORE SLOAD
//	gasspect tree   0x<txhash>
//	gasspect chart  0x<txhash> -o gas.html
//
// With --db, fetched traces are cached in a local LevelDB and reused.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gnanababu/solidity-utils/client"
	"github.com/Gnanababu/solidity-utils/common"
	"github.com/Gnanababu/solidity-utils/gasspect"
	log "github.com/Gnanababu/solidity-utils/log"
	"github.com/Gnanababu/solidity-utils/storage"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "gasspect",
		Short: "EVM transaction gas profiler",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var (
		rpcURL       string
		dbPath       string
		logLevel     string
		debugModules string
		minOpGas     int64
		showArgs     bool
		showRes      bool
		exact        bool
		outPath      string
	)

	setupLogging := func() {
		log.InitLogger(logLevel)
		if debugModules != "" {
			log.EnableModules(debugModules)
		}
	}

	parseTxHash := func(arg string) common.Hash {
		if !strings.HasPrefix(arg, "0x") || len(arg) != 66 {
			fmt.Printf("Invalid transaction hash %q (want 0x + 64 hex chars)\n", arg)
			os.Exit(1)
		}
		return common.HexToHash(arg)
	}

	// loadTrace resolves a trace through the optional LevelDB cache: cache
	// hit short-circuits the node entirely; a miss fetches and persists. A
	// failed persist is reported but does not discard the fetched trace.
	loadTrace := func(txHash common.Hash) (*gasspect.TransactionTrace, []byte) {
		var store *storage.TraceStore
		if dbPath != "" {
			var err error
			store, err = storage.NewTraceStore(dbPath)
			if err != nil {
				fmt.Printf("Failed to open trace cache: %v\n", err)
				os.Exit(1)
			}
			defer store.Close()

			raw, ok, err := store.GetTrace(txHash)
			if err != nil {
				fmt.Printf("Failed to read trace cache: %v\n", err)
				os.Exit(1)
			}
			if ok {
				trace, err := gasspect.ParseTrace(raw)
				if err != nil {
					fmt.Printf("Cached trace is corrupt: %v\n", err)
					os.Exit(1)
				}
				return trace, raw
			}
		}

		tc, err := client.Dial(rpcURL)
		if err != nil {
			fmt.Printf("Failed to connect to %s: %v\n", rpcURL, err)
			os.Exit(1)
		}
		defer tc.Close()

		trace, raw, err := tc.TraceTransaction(context.Background(), txHash)
		if err != nil {
			fmt.Printf("Failed to fetch trace for %s: %v\n", txHash.Hex(), err)
			os.Exit(1)
		}
		if store != nil {
			if err := store.PutTrace(txHash, raw); err != nil {
				log.Warn(log.StoreMonitoring, "failed to cache trace", "tx", txHash.Hex(), "err", err)
			}
		}
		return trace, raw
	}

	normalize := func(trace *gasspect.TransactionTrace) []gasspect.Op {
		ops, err := gasspect.Normalize(trace)
		if err != nil {
			fmt.Printf("Failed to normalize trace: %v\n", err)
			os.Exit(1)
		}
		return ops
	}

	var reportCmd = &cobra.Command{
		Use:   "report <txhash>",
		Short: "Render the filtered gas report for a transaction",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			setupLogging()
			trace, _ := loadTrace(parseTxHash(args[0]))
			opts := gasspect.Options{MinOpGasCost: minOpGas, Args: showArgs, Res: showRes}
			for _, line := range gasspect.FormatReport(normalize(trace), opts) {
				fmt.Println(line)
			}
		},
	}
	reportCmd.Flags().Int64Var(&minOpGas, "min-op-gas", gasspect.DefaultOptions().MinOpGasCost, "Render only ops costing strictly more than this")
	reportCmd.Flags().BoolVar(&showArgs, "args", false, "Include decoded call/storage arguments")
	reportCmd.Flags().BoolVar(&showRes, "res", false, "Include decoded results")

	var countCmd = &cobra.Command{
		Use:   "count <txhash> <MNEMONIC>...",
		Short: "Count opcode occurrences in the serialized trace",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			setupLogging()
			trace, raw := loadTrace(parseTxHash(args[0]))
			mnemonics := args[1:]
			var counts []int
			if exact {
				counts = gasspect.CountOpsExact(trace, mnemonics)
			} else {
				counts = gasspect.CountOps(raw, mnemonics)
			}
			for i, m := range mnemonics {
				fmt.Printf("%-16s %d\n", strings.ToUpper(m), counts[i])
			}
		},
	}
	countCmd.Flags().BoolVar(&exact, "exact", false, "Count opcode fields structurally instead of the substring approximation")

	var treeCmd = &cobra.Command{
		Use:   "tree <txhash>",
		Short: "Render the reconstructed call tree with per-frame gas totals",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			setupLogging()
			trace, _ := loadTrace(parseTxHash(args[0]))
			fmt.Print(gasspect.CallTree(normalize(trace)))
		},
	}

	var chartCmd = &cobra.Command{
		Use:   "chart <txhash>",
		Short: "Write an HTML bar chart of net gas by opcode",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			setupLogging()
			txHash := parseTxHash(args[0])
			trace, _ := loadTrace(txHash)
			f, err := os.Create(outPath)
			if err != nil {
				fmt.Printf("Failed to create %s: %v\n", outPath, err)
				os.Exit(1)
			}
			defer f.Close()
			if err := gasspect.GasChart(f, normalize(trace), txHash.Hex()); err != nil {
				fmt.Printf("Failed to render chart: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Wrote %s\n", outPath)
		},
	}
	chartCmd.Flags().StringVarP(&outPath, "out", "o", "gasspect.html", "Output HTML file")

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gasspect %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		},
	}

	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc", "http://127.0.0.1:8545", "Node RPC endpoint exposing debug_traceTransaction")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "LevelDB trace cache path (empty = no cache)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "info", "Log level (trace|debug|info|warn|error|crit)")
	rootCmd.PersistentFlags().StringVar(&debugModules, "debug", "", "Comma-separated module logs to enable (gasspect,rpc_mod,store_mod)")

	rootCmd.AddCommand(reportCmd, countCmd, treeCmd, chartCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
