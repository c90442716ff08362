package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"stagelower/internal/asg"
	"stagelower/internal/ir"
	"stagelower/internal/lower"
)

func newTranslateCmd(verbose *bool) *cobra.Command {
	var (
		output       string
		mappingsFile string
		summary      bool
	)

	cmd := &cobra.Command{
		Use:   "translate INPUT...",
		Short: "Lower one or more ASG documents to IR documents",
		Long: "Reads each ASG job graph document, runs the lowering pass, and writes " +
			"the IR document next to the input (or to --output for a single input). " +
			"Degraded extraction is reported per file but does not fail the run.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && len(args) > 1 {
				return fmt.Errorf("--output can only be used with a single input")
			}
			if mappingsFile == "" {
				mappingsFile = os.Getenv("STAGELOWER_MAPPINGS")
			}

			mappings := lower.DefaultMappings()
			if mappingsFile != "" {
				m, err := lower.LoadMappings(mappingsFile)
				if err != nil {
					return fmt.Errorf("load mappings: %w", err)
				}
				mappings = m
			}

			logger := newLogger(*verbose)

			// Each input is an independent lowering pass; files are
			// processed concurrently, results reported in input order.
			results := make([]translateResult, len(args))
			var eg errgroup.Group
			for i, input := range args {
				out := output
				if out == "" {
					out = defaultOutputPath(input)
				}
				eg.Go(func() error {
					results[i] = translateOne(input, out, mappings, logger)
					return nil
				})
			}
			_ = eg.Wait()

			failed := 0
			for _, res := range results {
				if res.err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.input, res.err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d components, %d connections, %d diagnostics -> %s\n",
					res.input,
					res.doc.Summary.Components,
					res.doc.Summary.Connections,
					len(res.diags),
					res.output)
				for _, d := range res.diags {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", d)
				}
				if summary {
					printSummary(cmd, res.doc)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d inputs failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (single input only; default: <input>_ir.json)")
	cmd.Flags().StringVar(&mappingsFile, "mappings", "", "YAML file overriding the target component table (env: STAGELOWER_MAPPINGS)")
	cmd.Flags().BoolVar(&summary, "summary", false, "print role and target component tallies per file")
	return cmd
}

type translateResult struct {
	input  string
	output string
	doc    *ir.Document
	diags  lower.Diagnostics
	err    error
}

// translateOne runs the full load → lower → write sequence for one file.
// A document that cannot be loaded and a document with zero nodes are
// both fatal for the file, but reported distinctly.
func translateOne(input, output string, mappings *lower.Mappings, logger *slog.Logger) translateResult {
	res := translateResult{input: input, output: output}

	g, err := asg.Load(input)
	if err != nil {
		var empty *asg.EmptyGraphError
		if errors.As(err, &empty) {
			res.err = fmt.Errorf("document is valid but declares no nodes; nothing to lower")
			return res
		}
		res.err = err
		return res
	}

	doc, diags, err := lower.Lower(g, lower.Options{
		Logger:   logger.With("input", input),
		Source:   filepath.Base(input),
		Mappings: mappings,
	})
	if err != nil {
		res.err = err
		return res
	}

	if err := ir.Write(output, doc); err != nil {
		res.err = err
		return res
	}
	res.doc = doc
	res.diags = diags
	return res
}

func defaultOutputPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_ir.json"
}

// printSummary prints per-role and per-target-component tallies, the
// human-readable digest of one lowered document.
func printSummary(cmd *cobra.Command, doc *ir.Document) {
	roles := make(map[string]int)
	targets := make(map[string]int)
	for _, c := range doc.Components {
		roles[string(c.Type)]++
		if c.TargetComponent != "" {
			targets[c.TargetComponent]++
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "  roles:")
	for _, name := range sortedKeys(roles) {
		fmt.Fprintf(cmd.OutOrStdout(), "    %s: %d\n", name, roles[name])
	}
	fmt.Fprintln(cmd.OutOrStdout(), "  target components:")
	for _, name := range sortedKeys(targets) {
		fmt.Fprintf(cmd.OutOrStdout(), "    %s: %d\n", name, targets[name])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
