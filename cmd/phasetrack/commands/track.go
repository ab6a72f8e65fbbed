package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/siiapp/phasetrack/internal/app/track"
	"github.com/siiapp/phasetrack/internal/model"
	"github.com/siiapp/phasetrack/internal/printer"
	"github.com/siiapp/phasetrack/internal/storage/sqlite"
)

func phaseNames() []string {
	names := make([]string, 0, len(model.AllPhases))
	for _, p := range model.AllPhases {
		names = append(names, string(p))
	}
	return names
}

func plantNames() []string {
	names := make([]string, 0, len(model.AllPlants))
	for _, p := range model.AllPlants {
		names = append(names, string(p))
	}
	return names
}

func newTrackService(ctx context.Context, rootCmd *RootCommand) (*track.Service, func() error, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: rootCmd.DBPath,
		Logger: rootCmd.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create repository: %w", err)
	}

	svc, err := track.NewService(track.ServiceConfig{
		Repository: repo,
		Logger:     rootCmd.Logger,
	})
	if err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc, repo.Close, nil
}

type TrackStartCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	orderNumber string
	company     string
	quantity    float64
	phase       string
	plant       string
	comments    string
}

// NewTrackStartCommand returns the track start command.
func NewTrackStartCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TrackStartCommand {
	c := &TrackStartCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("start", "Put a process order under phase tracking.")
	c.Cmd.Flag("order", "Process order number.").Required().StringVar(&c.orderNumber)
	c.Cmd.Flag("company", "Company code of the order.").Default("01").StringVar(&c.company)
	c.Cmd.Flag("quantity", "Quantity in production.").Required().Float64Var(&c.quantity)
	c.Cmd.Flag("phase", "Production phase.").Required().EnumVar(&c.phase, phaseNames()...)
	c.Cmd.Flag("plant", "Production plant.").Required().EnumVar(&c.plant, plantNames()...)
	c.Cmd.Flag("comments", "Free text comments.").StringVar(&c.comments)

	return c
}

func (c TrackStartCommand) Name() string { return c.Cmd.FullCommand() }

func (c TrackStartCommand) Run(ctx context.Context) error {
	svc, close, err := newTrackService(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer func() { _ = close() }()

	id, err := svc.Create(ctx, track.CreateRequest{
		OrderNumber: c.orderNumber,
		CompanyCode: c.company,
		Quantity:    c.quantity,
		Phase:       model.Phase(c.phase),
		Plant:       model.Plant(c.plant),
		Comments:    c.comments,
	})
	if err != nil {
		return fmt.Errorf("could not start tracking: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Order %s tracked in phase %s (progress %s)\n", c.orderNumber, c.phase, id)

	return nil
}

type TrackAdvanceCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	progressID string
	quantity   float64
	phase      string
	plant      string
	comments   string
}

// NewTrackAdvanceCommand returns the track advance command.
func NewTrackAdvanceCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TrackAdvanceCommand {
	c := &TrackAdvanceCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("advance", "Move a tracked order to another phase.")
	c.Cmd.Flag("id", "Progress record ID.").Required().StringVar(&c.progressID)
	c.Cmd.Flag("quantity", "Quantity in production.").Required().Float64Var(&c.quantity)
	c.Cmd.Flag("phase", "Production phase.").Required().EnumVar(&c.phase, phaseNames()...)
	c.Cmd.Flag("plant", "Production plant.").Required().EnumVar(&c.plant, plantNames()...)
	c.Cmd.Flag("comments", "Free text comments.").StringVar(&c.comments)

	return c
}

func (c TrackAdvanceCommand) Name() string { return c.Cmd.FullCommand() }

func (c TrackAdvanceCommand) Run(ctx context.Context) error {
	svc, close, err := newTrackService(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer func() { _ = close() }()

	err = svc.Advance(ctx, track.AdvanceRequest{
		ProgressID: c.progressID,
		Quantity:   c.quantity,
		Phase:      model.Phase(c.phase),
		Plant:      model.Plant(c.plant),
		Comments:   c.comments,
	})
	if err != nil {
		return fmt.Errorf("could not advance phase: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Progress %s moved to phase %s\n", c.progressID, c.phase)

	return nil
}

type TrackTimesCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	progressID string
	format     string
}

// NewTrackTimesCommand returns the track times command.
func NewTrackTimesCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TrackTimesCommand {
	c := &TrackTimesCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("times", "Show the phase time ledger of a progress record.")
	c.Cmd.Flag("id", "Progress record ID.").Required().StringVar(&c.progressID)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c TrackTimesCommand) Name() string { return c.Cmd.FullCommand() }

func (c TrackTimesCommand) Run(ctx context.Context) error {
	svc, close, err := newTrackService(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer func() { _ = close() }()

	times, err := svc.Times(ctx, c.progressID)
	if err != nil {
		return fmt.Errorf("could not get phase times: %w", err)
	}

	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintPhaseTimes(*times); err != nil {
		return fmt.Errorf("could not print phase times: %w", err)
	}

	return nil
}
