package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/siiapp/phasetrack/internal/app/orders"
	"github.com/siiapp/phasetrack/internal/config"
	"github.com/siiapp/phasetrack/internal/printer"
	"github.com/siiapp/phasetrack/internal/storage/sqlite"
)

type OrdersCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	filter  string
	company string
	format  string
}

// NewOrdersCommand returns the orders command.
func NewOrdersCommand(rootCmd *RootCommand, app *kingpin.Application) *OrdersCommand {
	c := &OrdersCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("orders", "List process orders with their phase progress.")
	c.Cmd.Flag("filter", "Substring filter over order number, order reference and item code.").StringVar(&c.filter)
	c.Cmd.Flag("company", "Company code (defaults to the configured one).").StringVar(&c.company)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c OrdersCommand) Name() string { return c.Cmd.FullCommand() }

func (c OrdersCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := config.Load(c.rootCmd.ConfigPath)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	company := c.company
	if company == "" {
		company = cfg.Catalog.CompanyCode
	}

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	catalog, err := sqlite.NewCatalog(sqlite.CatalogConfig{
		DB:     repo.DB(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create catalog: %w", err)
	}

	svc, err := orders.NewService(orders.ServiceConfig{
		Catalog: catalog,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	rows, err := svc.Run(ctx, orders.Request{
		CompanyCode: company,
		StatusCodes: cfg.Catalog.StatusCodes,
		Filter:      c.filter,
	})
	if err != nil {
		return fmt.Errorf("could not list orders: %w", err)
	}

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintOrders(rows); err != nil {
		return fmt.Errorf("could not print orders: %w", err)
	}

	return nil
}
