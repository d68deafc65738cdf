package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lqsmatch/internal/config"
	"lqsmatch/internal/ingest"
	"lqsmatch/internal/preflight"
	"lqsmatch/internal/registry"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest lead, quote, or sale batches",
	}

	ingestCmd.AddCommand(newIngestBatchCommand(ctx, "leads", "Ingest a lead batch",
		func(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, store *registry.Store, agency, file string) (*ingest.BatchReport, error) {
			var rows []ingest.LeadRow
			if err := readRows(cmd, file, &rows); err != nil {
				return nil, err
			}
			engine, err := newEngine(ctx, cfg, store)
			if err != nil {
				return nil, err
			}
			return engine.IngestLeads(cmd.Context(), agency, rows)
		}))
	ingestCmd.AddCommand(newIngestBatchCommand(ctx, "quotes", "Ingest a quote batch",
		func(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, store *registry.Store, agency, file string) (*ingest.BatchReport, error) {
			var rows []ingest.QuoteRow
			if err := readRows(cmd, file, &rows); err != nil {
				return nil, err
			}
			engine, err := newEngine(ctx, cfg, store)
			if err != nil {
				return nil, err
			}
			return engine.IngestQuotes(cmd.Context(), agency, rows)
		}))
	ingestCmd.AddCommand(newIngestBatchCommand(ctx, "sales", "Ingest and resolve a sale batch",
		func(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, store *registry.Store, agency, file string) (*ingest.BatchReport, error) {
			var rows []ingest.SaleRow
			if err := readRows(cmd, file, &rows); err != nil {
				return nil, err
			}
			engine, err := newEngine(ctx, cfg, store)
			if err != nil {
				return nil, err
			}
			return engine.IngestSales(cmd.Context(), agency, rows)
		}))

	return ingestCmd
}

type runBatchFunc func(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, store *registry.Store, agency, file string) (*ingest.BatchReport, error)

func newIngestBatchCommand(ctx *commandContext, use, short string, run runBatchFunc) *cobra.Command {
	var agency string

	cmd := &cobra.Command{
		Use:   use + " FILE",
		Short: short,
		Long:  short + ". FILE is a JSON array of rows; use - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agency = strings.TrimSpace(agency)
			if agency == "" {
				return errors.New("--agency is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := preflight.Run(cfg); err != nil {
				return fmt.Errorf("preflight: %w", err)
			}

			return ctx.withBatchLock(cfg, func() error {
				return ctx.withStore(func(cfg *config.Config, store *registry.Store) error {
					report, err := run(cmd, ctx, cfg, store, agency, args[0])
					if err != nil {
						return err
					}
					if ctx.JSONMode() {
						return writeJSON(cmd, report)
					}
					renderBatchReport(cmd.OutOrStdout(), report)
					return nil
				})
			})
		},
	}

	cmd.Flags().StringVarP(&agency, "agency", "a", "", "Agency identifier for the batch")
	return cmd
}

func newEngine(ctx *commandContext, cfg *config.Config, store *registry.Store) (*ingest.Engine, error) {
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	return ingest.NewEngine(store, cfg, logger), nil
}

// readRows decodes a JSON array of rows from a file, or stdin when the path
// is "-".
func readRows(cmd *cobra.Command, path string, v any) error {
	var reader io.Reader
	if path == "-" {
		reader = cmd.InOrStdin()
	} else {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		reader = file
	}
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode rows: %w", err)
	}
	return nil
}

func renderBatchReport(out io.Writer, report *ingest.BatchReport) {
	fmt.Fprintf(out, "Run %s: %d %s rows for %s\n", report.RunID, report.Total(), report.Kind, report.AgencyID)

	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		rows = append(rows, []string{
			strconv.Itoa(result.Index),
			string(result.Status),
			result.Reason,
			formatID(result.HouseholdID),
			formatID(result.SaleID),
			formatID(result.CaseID),
			strings.Join(result.Warnings, "; "),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Row", "Status", "Reason", "Household", "Sale", "Case", "Warnings"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))

	fmt.Fprintf(out, "created=%d updated=%d matched=%d flagged=%d skipped=%d failed=%d\n",
		report.Count(ingest.StatusCreated),
		report.Count(ingest.StatusUpdated),
		report.Count(ingest.StatusMatched),
		report.Count(ingest.StatusFlagged),
		report.Count(ingest.StatusSkippedInvalid),
		report.Count(ingest.StatusFailed),
	)
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
