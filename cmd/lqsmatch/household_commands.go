package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lqsmatch/internal/config"
	"lqsmatch/internal/registry"
)

func newHouseholdCommand(ctx *commandContext) *cobra.Command {
	householdCmd := &cobra.Command{
		Use:   "households",
		Short: "Inspect households",
	}

	householdCmd.AddCommand(newHouseholdListCommand(ctx))
	householdCmd.AddCommand(newHouseholdShowCommand(ctx))

	return householdCmd
}

func newHouseholdListCommand(ctx *commandContext) *cobra.Command {
	var agency string
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an agency's households",
		RunE: func(cmd *cobra.Command, args []string) error {
			agency = strings.TrimSpace(agency)
			if agency == "" {
				return errors.New("--agency is required")
			}
			var statuses []registry.HouseholdStatus
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				status, ok := registry.ParseHouseholdStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q (expected lead, quoted, or sold)", trimmed)
				}
				statuses = append(statuses, status)
			}
			return ctx.withStore(func(cfg *config.Config, store *registry.Store) error {
				households, err := store.ListHouseholds(cmd.Context(), agency, statuses...)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, households)
				}
				out := cmd.OutOrStdout()
				if len(households) == 0 {
					fmt.Fprintln(out, "No households found")
					return nil
				}
				rows := make([][]string, 0, len(households))
				for _, household := range households {
					rows = append(rows, []string{
						strconv.FormatInt(household.ID, 10),
						household.LastName + ", " + household.FirstName,
						household.Zip,
						string(household.Status),
						formatDate(&household.LeadReceivedDate),
						formatDate(household.FirstQuoteDate),
						formatDate(household.SoldDate),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Zip", "Status", "Lead", "First quote", "Sold"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&agency, "agency", "a", "", "Agency identifier")
	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (lead, quoted, sold)")
	return cmd
}

func newHouseholdShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one household with its quotes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid household id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *registry.Store) error {
				household, err := store.HouseholdByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				var quotes []*registry.Quote
				err = store.WithTx(cmd.Context(), func(tx *registry.Tx) error {
					quotes, err = tx.QuotesForHousehold(id)
					return err
				})
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, struct {
						Household *registry.Household `json:"household"`
						Quotes    []*registry.Quote   `json:"quotes"`
					}{household, quotes})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Household %d (%s)\n", household.ID, household.AgencyID)
				fmt.Fprintf(out, "Name: %s, %s\n", household.LastName, household.FirstName)
				fmt.Fprintf(out, "Zip: %s\n", household.Zip)
				fmt.Fprintf(out, "Status: %s\n", household.Status)
				fmt.Fprintf(out, "Lead received: %s\n", formatDate(&household.LeadReceivedDate))
				fmt.Fprintf(out, "First quote: %s\n", formatDate(household.FirstQuoteDate))
				fmt.Fprintf(out, "Sold: %s\n", formatDate(household.SoldDate))
				if household.LeadSource != "" {
					fmt.Fprintf(out, "Lead source: %s\n", household.LeadSource)
				}
				if household.Phone != "" {
					fmt.Fprintf(out, "Phone: %s\n", household.Phone)
				}
				if household.Email != "" {
					fmt.Fprintf(out, "Email: %s\n", household.Email)
				}
				if len(quotes) == 0 {
					fmt.Fprintln(out, "No quotes on record")
					return nil
				}
				rows := make([][]string, 0, len(quotes))
				for _, quote := range quotes {
					rows = append(rows, []string{
						strconv.FormatInt(quote.ID, 10),
						string(quote.ProductType),
						quote.SubProducerCode,
						fmt.Sprintf("%.2f", quote.Premium),
						formatDate(&quote.ProductionDate),
						quote.IssuedPolicyNumber,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Quote", "Product", "Sub-producer", "Premium", "Produced", "Policy"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func formatDate(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "-"
	}
	return value.Format("2006-01-02")
}
