package cli

import (
	"context"
	"fmt"
	"iter"

	"github.com/hupe1980/wikiflow/rdf"
	"github.com/hupe1980/wikiflow/rdf/ntriples"
	"github.com/spf13/cobra"
)

// NewPartitionCommand creates the partition command.
func NewPartitionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "partition <dump.nt>...",
		Short: "Bucket N-Triples dumps by predicate",
		Long: `Read N-Triples dumps and write one partition blob per predicate to the
configured store. Inputs ending in .gz, .zst or .lz4 are decompressed; "-"
reads stdin.

Example:
  wikiflow partition latest-truthy.nt.gz
  zcat dump.nt.gz | wikiflow partition -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPartition(cmd, rootOpts, args)
		},
	}
}

func runPartition(cmd *cobra.Command, opts *RootOptions, paths []string) error {
	ctx := cmd.Context()
	flow, closeFlow, err := openFlow(ctx, opts)
	if err != nil {
		return err
	}
	defer closeFlow()

	keys, err := flow.Partition(ctx, readAll(ctx, paths, flow.Vocabulary()))
	if err != nil {
		return WrapExitError(ExitFailure, "partitioning failed", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d partitions\n", len(keys))
	return nil
}

// readAll concatenates the statements of every input.
func readAll(ctx context.Context, paths []string, vocab *rdf.Vocabulary) iter.Seq2[rdf.Triple, error] {
	return func(yield func(rdf.Triple, error) bool) {
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				yield(rdf.Triple{}, err)
				return
			}
			r, err := openInput(path)
			if err != nil {
				yield(rdf.Triple{}, err)
				return
			}
			for t, err := range ntriples.NewReader(r, vocab).All() {
				if err != nil {
					err = fmt.Errorf("%s: %w", path, err)
				}
				if !yield(t, err) || err != nil {
					_ = r.Close()
					return
				}
			}
			if err := r.Close(); err != nil {
				yield(rdf.Triple{}, err)
				return
			}
		}
	}
}
