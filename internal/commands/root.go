// Package commands implements the ophaaldagen command line
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/klabast/wb-services/ophaaldagen/internal/address"
	"github.com/klabast/wb-services/ophaaldagen/internal/app"
	"github.com/klabast/wb-services/ophaaldagen/internal/config"
	"github.com/klabast/wb-services/ophaaldagen/internal/huisvuil"
	"github.com/klabast/wb-services/ophaaldagen/internal/logger"
	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
	"github.com/klabast/wb-services/ophaaldagen/internal/remote"
	"github.com/klabast/wb-services/ophaaldagen/internal/seenons"
)

// IO holds the process streams a command reads from and writes to
type IO struct {
	In  *os.File
	Out io.Writer
	Err io.Writer
}

// cli is the state shared by all commands of one invocation
type cli struct {
	io         IO
	v          *viper.Viper
	configFile string
	timeout    time.Duration
}

type lookupOptions struct {
	postcode    string
	houseNumber string
	weekdays    []string
	letter      string
	year        int
	output      string
	remind      string
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string, streams IO) int {
	cmd := NewRootCommand(streams)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(streams.Err, "Error: %v\n", err)
	}
	return ExitCode(err)
}

// NewRootCommand builds the ophaaldagen command tree
func NewRootCommand(streams IO) *cobra.Command {
	c := &cli{io: streams, v: config.NewViper()}
	opts := &lookupOptions{}

	cmd := &cobra.Command{
		Use:   "ophaaldagen -p POSTCODE -n HOUSENUMBER [-w WEEKDAY ...]",
		Short: "Show the waste collection days of a household in The Hague",
		Long: "Looks up the collection calendar of an address with the Huisvuilkalender of The Hague,\n" +
			"maps its waste categories onto the Seenons stream catalog and lists the dates per stream.\n" +
			"Extra arguments are read as further weekdays.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.weekdays = append(opts.weekdays, args...)
			return c.runLookup(cmd, opts)
		},
	}
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)
	cmd.SetFlagErrorFunc(flagErrorFunc)

	flags := cmd.Flags()
	flags.StringVarP(&opts.postcode, "postcode", "p", "", "Postal code, e.g. 2512HE")
	flags.StringVarP(&opts.houseNumber, "housenumber", "n", "", "House number without letter")
	flags.StringSliceVarP(&opts.weekdays, "weekday", "w", nil, "Only show dates on these weekdays (English or Dutch names)")
	flags.StringVar(&opts.letter, "letter", "", "House letter, skips the interactive choice")
	flags.IntVar(&opts.year, "year", time.Now().Year(), "Calendar year")
	flags.StringP("format", "f", config.DefaultFormat, "Output format: text, json, csv, ics or yaml")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the report to this file instead of stdout")
	flags.StringVar(&opts.remind, "remind", "", "Add an ICS reminder at HH:MM on the day before each pickup")
	flags.String("match-direction", string(reconcile.NamePrefixOfTitle), "Name match direction: name-prefix-of-title or title-prefix-of-name")
	flags.String("tie-break", string(reconcile.TieBreakLast), "Choice among several matching streams: last or longest")
	c.bindFlags(flags, map[string]string{
		config.KeyOutputFormat:   "format",
		config.KeyMatchDirection: "match-direction",
		config.KeyMatchTieBreak:  "tie-break",
	})

	pflags := cmd.PersistentFlags()
	pflags.StringVar(&c.configFile, "config", "", "Config file (default ./ophaaldagen.yaml or ~/.config/ophaaldagen/ophaaldagen.yaml)")
	pflags.DurationVar(&c.timeout, "timeout", 0, "Overall time limit for the lookup, 0 for none")
	pflags.String("log-level", "warn", "Log level: debug, info, warn or error")
	pflags.String("log-format", "console", "Log format: console or json")
	pflags.String("seenons-url", config.DefaultSeenonsBaseURL, "Seenons API base URL")
	pflags.String("huisvuil-url", config.DefaultHuisvuilBaseURL, "Huisvuilkalender API base URL")
	c.bindFlags(pflags, map[string]string{
		config.KeyLogLevel:        "log-level",
		config.KeyLogFormat:       "log-format",
		config.KeySeenonsBaseURL:  "seenons-url",
		config.KeyHuisvuilBaseURL: "huisvuil-url",
	})

	cmd.AddCommand(
		newStreamsCommand(c),
		newVersionCommand(),
	)
	return cmd
}

// bindFlags lets flags override config keys. A flag only wins over the
// config file and environment when it was set.
func (c *cli) bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := c.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func flagErrorFunc(cmd *cobra.Command, err error) error {
	return usageErrorf("%v\nSee '%s --help'.", err, cmd.CommandPath())
}

// session is what one command run needs from config
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	catalog  *seenons.Client
	calendar *huisvuil.Client
}

func (c *cli) newSession() (*session, error) {
	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	if cfg.File != "" {
		log.Debug("config loaded", zap.String("file", cfg.File))
	}

	catalogTransport, err := remote.NewClient(seenons.ServiceName, cfg.Seenons.BaseURL, cfg.HTTP,
		remote.WithRequestID(runID), remote.WithLogger(log))
	if err != nil {
		return nil, err
	}
	calendarTransport, err := remote.NewClient(huisvuil.ServiceName, cfg.Huisvuil.BaseURL, cfg.HTTP,
		remote.WithRequestID(runID), remote.WithLogger(log))
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		log:      log,
		catalog:  seenons.NewClient(catalogTransport, log),
		calendar: huisvuil.NewClient(calendarTransport, log),
	}, nil
}

func (s *session) close() {
	_ = s.log.Sync()
}

// context applies --timeout on top of the command context
func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *cli) runLookup(cmd *cobra.Command, opts *lookupOptions) error {
	if opts.postcode == "" || opts.houseNumber == "" {
		return usageErrorf("--postcode and --housenumber are required\nSee '%s --help'.", cmd.CommandPath())
	}
	weekdays, err := reconcile.ParseWeekdays(opts.weekdays)
	if err != nil {
		return err
	}
	if opts.remind != "" {
		if _, err := app.ParseReminder(opts.remind); err != nil {
			return err
		}
	}

	s, err := c.newSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := c.context(cmd)
	defer cancel()

	var chooser address.LetterChooser = &TerminalChooser{In: c.io.In, Out: c.io.Err}
	if cmd.Flags().Changed("letter") {
		chooser = address.FixedChooser(opts.letter)
	}

	pipeline := app.NewPipeline(s.catalog, s.calendar, chooser, s.cfg.Match.Policy(), s.log)
	report, err := pipeline.Run(ctx, app.Request{
		Postcode:    opts.postcode,
		HouseNumber: opts.houseNumber,
		Year:        opts.year,
		Weekdays:    weekdays,
	})
	if err != nil {
		return err
	}

	format := s.cfg.Output.Format
	exportOpts := app.ExportOptions{Remind: opts.remind}
	if opts.output == "" {
		return app.Export(c.io.Out, format, report, exportOpts)
	}

	if err := app.WriteFileAtomic(opts.output, func(w io.Writer) error {
		return app.Export(w, format, report, exportOpts)
	}); err != nil {
		return err
	}
	s.log.Info("report written", zap.String("file", opts.output), zap.String("format", format))
	return nil
}
