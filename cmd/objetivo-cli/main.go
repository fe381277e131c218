package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/deciofranchini-oss/objetivo/internal/cli"
	"github.com/deciofranchini-oss/objetivo/internal/core"
	"github.com/deciofranchini-oss/objetivo/internal/export"
	"github.com/deciofranchini-oss/objetivo/internal/ledger"
	"github.com/deciofranchini-oss/objetivo/internal/storage"
)

type appContext struct {
	service *ledger.Service
}

var flags struct {
	Seed      seedCmd      `cmd:"" help:"Seed system categories, parties and demo data."`
	ExportCSV exportCSVCmd `cmd:"" name:"export-csv" help:"Export all transactions as CSV."`
	Backup    backupCmd    `cmd:"" help:"Write a full JSON snapshot of the ledger."`
	Restore   restoreCmd   `cmd:"" help:"Replace the ledger with a JSON snapshot."`
	Report    reportCmd    `cmd:"" help:"Print the yearly report."`
	Reset     resetCmd     `cmd:"" help:"Wipe all data and reseed."`
}

type seedCmd struct{}

func (c *seedCmd) Run(app *appContext) error {
	if err := app.service.Reset(context.Background()); err != nil {
		return err
	}
	fmt.Println("Seeded system entries and demo data.")
	return nil
}

type exportCSVCmd struct {
	Out string `default:"objetivo-export.csv" help:"Output file path."`
}

func (c *exportCSVCmd) Run(app *appContext) error {
	ctx := context.Background()
	txs, err := app.service.ListTransactions(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.Out, err)
	}
	defer f.Close()

	if err := export.WriteCSV(f, txs); err != nil {
		return err
	}
	fmt.Printf("Exported %d transactions to %s\n", len(txs), c.Out)
	return nil
}

type backupCmd struct {
	Out string `default:"objetivo-backup.json" help:"Output file path."`
}

func (c *backupCmd) Run(app *appContext) error {
	snap, err := app.service.Backup(context.Background())
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(c.Out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.Out, err)
	}
	fmt.Printf("Backup written to %s (%d transactions)\n", c.Out, len(snap.Transactions))
	return nil
}

type restoreCmd struct {
	File string `arg:"" help:"Snapshot file to restore from."`
}

func (c *restoreCmd) Run(app *appContext) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse %s: %w", c.File, err)
	}

	if err := app.service.Restore(context.Background(), snap); err != nil {
		return err
	}
	fmt.Printf("Restored %d transactions, %d categories, %d parties\n",
		len(snap.Transactions), len(snap.Categories), len(snap.Parties))
	return nil
}

type reportCmd struct {
	Year string `default:"all" help:"Academic year to report on, or 'all'."`
}

func (c *reportCmd) Run(app *appContext) error {
	sel := core.AllYears()
	if c.Year != "all" {
		year, err := strconv.Atoi(c.Year)
		if err != nil {
			return fmt.Errorf("invalid year %q", c.Year)
		}
		sel = core.SingleYear(year)
	}

	ctx := context.Background()
	report, err := app.service.Report(ctx, sel)
	if err != nil {
		return err
	}
	resolver, err := app.service.Resolver(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, block := range report.Blocks {
		fmt.Fprintf(w, "\n%d\n", block.Year)
		fmt.Fprintln(w, "Mês\tPago\tRecebido\tPrevisto\tPensão\t")
		for _, m := range block.Months {
			pensao := "-"
			if m.PensaoPaymentDate != nil {
				pensao = m.PensaoPaymentDate.String()
				if m.PensaoLate {
					pensao += " (atrasado)"
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
				storage.MonthNames[m.Month-1],
				m.PaidActual.BRL(), m.Received.BRL(), m.Forecast.BRL(), pensao)
		}
		fmt.Fprintf(w, "Total\t%s\t%s\t%s\t\t\n",
			block.Totals.PaidActual.BRL(), block.Totals.Received.BRL(), block.Totals.Forecast.BRL())

		keys := make([]string, 0, len(block.Totals.ByCategory))
		for key := range block.Totals.ByCategory {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			info := resolver.Category(key)
			fmt.Fprintf(w, "  %s\t%s\t\t\t\t\n", info.Label, block.Totals.ByCategory[key].BRL())
		}
	}
	return w.Flush()
}

type resetCmd struct {
	Force bool `help:"Confirm wiping all data."`
}

func (c *resetCmd) Run(app *appContext) error {
	if !c.Force {
		return fmt.Errorf("refusing to wipe data without --force")
	}
	if err := app.service.Reset(context.Background()); err != nil {
		return err
	}
	fmt.Println("Ledger reset to seed data.")
	return nil
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	service := ledger.NewService(repo, nil, cfg.AMQPExtractQueue, cfg.AMQPBackupQueue, logger)
	defer service.Close()

	ctx := kong.Parse(&flags,
		kong.Name("objetivo-cli"),
		kong.Description("Maintenance commands for the school-expense ledger."))
	ctx.FatalIfErrorf(ctx.Run(&appContext{service: service}))
}
