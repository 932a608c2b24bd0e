package cli

import (
	"fmt"
	"strings"

	"github.com/hupe1980/wikiflow/engine"
	"github.com/hupe1980/wikiflow/plan"
	"github.com/hupe1980/wikiflow/rdf"
	"github.com/hupe1980/wikiflow/rdf/ntriples"
	"github.com/spf13/cobra"
)

// NewListCommand creates the ls command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored partition keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			flow, closeFlow, err := openFlow(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer closeFlow()

			keys, err := flow.Keys(ctx)
			if err != nil {
				return WrapExitError(ExitFailure, "listing failed", err)
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

// CatOptions holds flags for the cat command.
type CatOptions struct {
	*RootOptions
	Output string
}

// NewCatCommand creates the cat command.
func NewCatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cat <key>...",
		Short: "Decode partitions to N-Triples",
		Long: `Decode the partitions of the given predicates to N-Triples. Compact
Wikidata property ids (P31) are expanded to direct-claim IRIs.

Example:
  wikiflow cat P31 P279
  wikiflow cat http://www.w3.org/2000/01/rdf-schema#label -o labels.nt.gz`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "-", "output file (.gz is compressed)")
	return cmd
}

// partitionKey expands compact property ids.
func partitionKey(s string) string {
	if strings.Contains(s, "://") {
		return s
	}
	return rdf.NamespaceDirect + s
}

func runCat(cmd *cobra.Command, opts *CatOptions, keys []string) error {
	ctx := cmd.Context()
	flow, closeFlow, err := openFlow(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeFlow()

	out, err := createOutput(opts.Output)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output", err)
	}
	if opts.Output == "-" {
		out = nopWriteCloser{cmd.OutOrStdout()}
	}
	nw := ntriples.NewWriter(out)

	for _, key := range keys {
		err := engine.ForEach(ctx, flow, plan.Partition(partitionKey(key)), nw.WriteTriple)
		if err != nil {
			_ = out.Close()
			return WrapExitError(ExitFailure, "decoding failed", err)
		}
	}
	if err := nw.Flush(); err != nil {
		_ = out.Close()
		return WrapExitError(ExitFailure, "write failed", err)
	}
	if err := out.Close(); err != nil {
		return WrapExitError(ExitFailure, "write failed", err)
	}
	return nil
}
