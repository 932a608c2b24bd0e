package cli

import (
	"fmt"
	"os"

	"github.com/hupe1980/wikiflow"
	"github.com/hupe1980/wikiflow/kb"
	"github.com/spf13/cobra"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output     string
	Classes    string
	Properties string
	Languages  []string
	Provenance bool
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Derive the schema.org knowledge base",
		Long: `Evaluate the knowledge-base derivation over the stored partitions and
write the result as N-Triples. Without mapping files the built-in tables are
used.

Example:
  wikiflow build -o kb.nt.gz --lang en --lang de --provenance
  wikiflow build --classes classes.tsv --properties properties.tsv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "-", "output file (.gz is compressed)")
	cmd.Flags().StringVar(&opts.Classes, "classes", "", "class mapping TSV")
	cmd.Flags().StringVar(&opts.Properties, "properties", "", "property mapping TSV")
	cmd.Flags().StringSliceVar(&opts.Languages, "lang", nil, "keep literals in these languages only")
	cmd.Flags().BoolVar(&opts.Provenance, "provenance", false, "append prov:wasDerivedFrom annotations")

	return cmd
}

func loadMapping(flow *wikiflow.Flow, opts *BuildOptions) (*kb.Mapping, error) {
	if opts.Classes == "" && opts.Properties == "" {
		return kb.DefaultMapping(flow.Vocabulary()), nil
	}

	m := kb.NewMapping(flow.Vocabulary())
	read := func(path string, fn func(*os.File) error) error {
		if path == "" {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := fn(f); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}
	if err := read(opts.Classes, func(f *os.File) error { return m.ReadClasses(f) }); err != nil {
		return nil, err
	}
	if err := read(opts.Properties, func(f *os.File) error { return m.ReadProperties(f) }); err != nil {
		return nil, err
	}
	return m, nil
}

func runBuild(cmd *cobra.Command, opts *BuildOptions) error {
	ctx := cmd.Context()
	flow, closeFlow, err := openFlow(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeFlow()

	m, err := loadMapping(flow, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid mapping", err)
	}

	out, err := createOutput(opts.Output)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output", err)
	}
	if opts.Output == "-" {
		out = nopWriteCloser{cmd.OutOrStdout()}
	}

	b := kb.NewBuilder(m, kb.WithLanguages(opts.Languages...))
	stats, err := b.Write(ctx, flow, out, opts.Provenance)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return WrapExitError(ExitFailure, "build failed", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d statements, %d annotations\n", stats.Statements, stats.Annotations)
	return nil
}
