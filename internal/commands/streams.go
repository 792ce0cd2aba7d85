package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/klabast/wb-services/ophaaldagen/internal/app"
	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
)

type streamsOptions struct {
	postcode string
	all      bool
	format   string
}

func newStreamsCommand(c *cli) *cobra.Command {
	opts := streamsOptions{}

	cmd := &cobra.Command{
		Use:   "streams -p POSTCODE",
		Short: "List the Seenons waste streams offered at a postal code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStreams(cmd, opts)
		},
	}
	cmd.SetFlagErrorFunc(flagErrorFunc)

	flags := cmd.Flags()
	flags.StringVarP(&opts.postcode, "postcode", "p", "", "Postal code, e.g. 2566WD")
	flags.BoolVar(&opts.all, "all", false, "List the whole catalog")
	flags.StringVarP(&opts.format, "format", "f", app.FormatText, "Output format: text, json or yaml")

	return cmd
}

func (c *cli) runStreams(cmd *cobra.Command, opts streamsOptions) error {
	if opts.postcode == "" && !opts.all {
		return usageErrorf("--postcode or --all is required\nSee '%s --help'.", cmd.CommandPath())
	}
	switch opts.format {
	case app.FormatText, app.FormatJSON, app.FormatYAML:
	default:
		return fmt.Errorf("%w: %q (streams supports text, json and yaml)", app.ErrUnknownFormat, opts.format)
	}

	s, err := c.newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := c.context(cmd)
	defer cancel()

	pipeline := app.NewPipeline(s.catalog, s.calendar, nil, s.cfg.Match.Policy(), s.log)
	streams, err := pipeline.Streams(ctx, opts.postcode, opts.all)
	if err != nil {
		return err
	}
	return c.printStreams(opts.format, streams)
}

func (c *cli) printStreams(format string, streams []reconcile.CatalogStream) error {
	if streams == nil {
		streams = []reconcile.CatalogStream{}
	}

	switch format {
	case app.FormatJSON:
		enc := json.NewEncoder(c.io.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(streams)
	case app.FormatYAML:
		enc := yaml.NewEncoder(c.io.Out)
		enc.SetIndent(2)
		if err := enc.Encode(streams); err != nil {
			return err
		}
		return enc.Close()
	}

	w := tabwriter.NewWriter(c.io.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTREAM")
	for _, s := range streams {
		fmt.Fprintf(w, "%d\t%s\n", s.ID, s.Name)
	}
	return w.Flush()
}
