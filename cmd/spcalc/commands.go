package main

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Puppetdog/sp-calculator-sub000/internal/config"
	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/Puppetdog/sp-calculator-sub000/internal/output"
	"github.com/Puppetdog/sp-calculator-sub000/internal/transform"
)

// loadSubmission reads a submission file. With form set, the household step
// correction is applied first, the way the interactive form does.
func loadSubmission(filename string, form bool) (domain.FormSubmission, error) {
	sub, err := config.NewInputParser().LoadSubmission(filename)
	if err != nil {
		return domain.FormSubmission{}, err
	}
	if form && sub.Household != nil {
		clamped := transform.ClampHousehold(*sub.Household)
		sub.Household = &clamped
	}
	return *sub, nil
}

func eligibleCmd(opts *rootOptions) *cobra.Command {
	var form bool
	cmd := &cobra.Command{
		Use:   "eligible [submission-file]",
		Short: "List the programs a submission is eligible for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := loadSubmission(args[0], form)
			if err != nil {
				return err
			}
			a, err := opts.open(cmd, nil)
			if err != nil {
				return err
			}
			defer a.close()

			matches, err := a.service.GetEligiblePrograms(cmd.Context(), sub)
			if err != nil {
				return err
			}
			return opts.render(cmd, &output.Report{Title: "Eligible Programs", Matches: matches})
		},
	}
	cmd.Flags().BoolVar(&form, "form", false, "Apply form-step corrections before validating")
	return cmd
}

func gapCmd(opts *rootOptions) *cobra.Command {
	var form bool
	cmd := &cobra.Command{
		Use:   "gap [submission-file]",
		Short: "Compare qualifying benefits with the minimum expenditure basket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := loadSubmission(args[0], form)
			if err != nil {
				return err
			}
			a, err := opts.open(cmd, nil)
			if err != nil {
				return err
			}
			defer a.close()

			gap, err := a.service.CalculateBenefitsGap(cmd.Context(), sub)
			if err != nil {
				return err
			}
			return opts.render(cmd, &output.Report{Title: "Benefits Gap", Gap: &gap})
		},
	}
	cmd.Flags().BoolVar(&form, "form", false, "Apply form-step corrections before validating")
	return cmd
}

func benefitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "benefit [program-id] [submission-file]",
		Short: "Calculate the monthly benefit of one program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := loadSubmission(args[1], false)
			if err != nil {
				return err
			}
			params, err := transform.ToEligibilityParams(sub)
			if err != nil {
				return err
			}
			a, err := opts.open(cmd, nil)
			if err != nil {
				return err
			}
			defer a.close()

			amount, err := a.service.CalculateBenefitAmount(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			if opts.format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"programId": args[0], "monthlyBenefit": amount})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Monthly benefit for %s: %s\n", args[0], output.FormatCurrency(amount))
			return nil
		},
	}
}

func eligibilityCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "eligibility [program-id] [beneficiary-file]",
		Short: "Evaluate a beneficiary record against a program's benefit conditions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := config.NewInputParser().LoadBeneficiary(args[1])
			if err != nil {
				return err
			}
			a, err := opts.open(cmd, nil)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.service.CalculateEligibility(cmd.Context(), args[0], *b)
			if err != nil {
				return err
			}
			return opts.render(cmd, &output.Report{Title: "Program Eligibility", Eligibility: &result})
		},
	}
}

func programsCmd(opts *rootOptions) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "programs",
		Short: "List active programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, nil)
			if err != nil {
				return err
			}
			defer a.close()

			var programs []domain.EnhancedProgram
			if search != "" {
				programs, err = a.service.SearchPrograms(cmd.Context(), search)
			} else {
				programs, err = a.service.ListEnhancedPrograms(cmd.Context())
			}
			if err != nil {
				return err
			}
			if programs == nil {
				programs = []domain.EnhancedProgram{}
			}
			return opts.render(cmd, &output.Report{Title: "Programs", Programs: programs})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Fuzzy search on program names")

	cmd.AddCommand(&cobra.Command{
		Use:   "add [program-file]",
		Short: "Add a program to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.NewInputParser().LoadProgram(args[0])
			if err != nil {
				return err
			}
			a, err := opts.open(cmd, nil)
			if err != nil {
				return err
			}
			defer a.close()

			added, err := a.service.AddProgram(cmd.Context(), *p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added program %s (%s)\n", added.Name, added.ID)
			return nil
		},
	})
	return cmd
}

func colaCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cola [program-id] [rate]",
		Short: "Apply a cost-of-living adjustment to a program's benefit bounds",
		Long:  "Scales a program's minimum and maximum benefit by (1+rate) and records the adjustment. The rate is a fraction, e.g. 0.032 for 3.2%.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[1], err)
			}
			a, err := opts.open(cmd, nil)
			if err != nil {
				return err
			}
			defer a.close()

			adj, err := a.service.AdjustBenefits(cmd.Context(), args[0], rate)
			if err != nil {
				return err
			}
			return opts.render(cmd, &output.Report{Title: "Benefit Adjustment", Adjustments: []domain.BenefitAdjustment{adj}})
		},
	}
}

func adjustmentsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "adjustments [program-id]",
		Short: "Show a program's COLA history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, nil)
			if err != nil {
				return err
			}
			defer a.close()

			history, err := a.service.ListAdjustments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if history == nil {
				history = []domain.BenefitAdjustment{}
			}
			return opts.render(cmd, &output.Report{Title: "Benefit Adjustments", Adjustments: history})
		},
	}
}

func validateCmd() *cobra.Command {
	var form bool
	cmd := &cobra.Command{
		Use:   "validate [submission-file]",
		Short: "Validate a submission and print its eligibility params",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := config.NewInputParser().LoadSubmission(args[0])
			if err != nil {
				return err
			}
			transformFn := transform.ToEligibilityParams
			if form {
				transformFn = transform.FromFormSteps
			}
			params, err := transformFn(*sub)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(params)
		},
	}
	cmd.Flags().BoolVar(&form, "form", false, "Apply form-step corrections before validating")
	return cmd
}
