package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lqsmatch/internal/config"
	"lqsmatch/internal/registry"
	"lqsmatch/internal/review"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect and resolve flagged sale matches",
	}

	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewResolveCommand(ctx))

	return reviewCmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	var agency string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending review cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			agency = strings.TrimSpace(agency)
			if agency == "" {
				return errors.New("--agency is required")
			}
			return ctx.withStore(func(cfg *config.Config, store *registry.Store) error {
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				cases, err := review.NewService(store, logger).ListPending(cmd.Context(), agency)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, cases)
				}
				out := cmd.OutOrStdout()
				if len(cases) == 0 {
					fmt.Fprintln(out, "No pending review cases")
					return nil
				}
				rows := make([][]string, 0, len(cases))
				for _, reviewCase := range cases {
					rows = append(rows, []string{
						strconv.FormatInt(reviewCase.ID, 10),
						strconv.FormatInt(reviewCase.SaleID, 10),
						formatCandidates(reviewCase.Candidates),
						reviewCase.CreatedAt.Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Case", "Sale", "Candidates", "Created"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&agency, "agency", "a", "", "Agency identifier")
	return cmd
}

func newReviewResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve CASE_ID DECISION",
		Short: "Resolve a review case (DECISION is a household id or 'new')",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caseID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid case id %q", args[0])
			}
			decision, err := review.ParseDecision(args[1])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *registry.Store) error {
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				outcome, err := review.NewService(store, logger).Resolve(cmd.Context(), caseID, decision)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, outcome)
				}
				out := cmd.OutOrStdout()
				if outcome.CreatedHousehold {
					fmt.Fprintf(out, "Case %d resolved: sale %d linked to new household %d\n",
						outcome.CaseID, outcome.SaleID, outcome.HouseholdID)
				} else {
					fmt.Fprintf(out, "Case %d resolved: sale %d linked to household %d\n",
						outcome.CaseID, outcome.SaleID, outcome.HouseholdID)
				}
				return nil
			})
		},
	}
}

func formatCandidates(candidates []registry.ReviewCandidate) string {
	if len(candidates) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		part := fmt.Sprintf("household %d (score %d", candidate.HouseholdID, candidate.Score)
		if len(candidate.Reasons) > 0 {
			part += ": " + strings.Join(candidate.Reasons, ", ")
		}
		part += ")"
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
