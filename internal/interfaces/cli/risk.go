package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/EcoExpand-AI/pkg/client"
)

// NewCountriesCmd lists the countries the server can analyse.
func NewCountriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List analysable countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			countries, err := cliCtx.Client.Risk().Countries(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, map[string][]string{"countries": countries}, func(w io.Writer) error {
				for _, c := range countries {
					fmt.Fprintln(w, c)
				}
				return nil
			})
		},
	}
}

// NewAnalyzeCmd scores one country.
func NewAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <country>",
		Short: "Show a country's risk tier and predicted cost saving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			res, err := cliCtx.Client.Risk().Analyze(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, res, func(w io.Writer) error {
				fmt.Fprintf(w, "Country:                %s\n", res.Country)
				fmt.Fprintf(w, "Risk cluster:           %s\n", colorizeRiskCluster(res.RiskCluster))
				fmt.Fprintf(w, "Predicted cost savings: %s\n", res.PredictedCostSavings)
				return nil
			})
		},
	}
}

// NewImportanceCmd prints the cost-saving model's feature importance.
func NewImportanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "importance",
		Short: "Show the cost-saving model's feature importance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			items, err := cliCtx.Client.Risk().FeatureImportance(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, map[string][]client.FeatureImportance{"feature_importance": items}, func(w io.Writer) error {
				table := tablewriter.NewWriter(w)
				table.SetHeader([]string{"Feature", "Importance"})
				for _, it := range items {
					table.Append([]string{it.Feature, fmt.Sprintf("%.4f", it.Importance)})
				}
				table.Render()
				return nil
			})
		},
	}
}

// NewSummaryCmd describes the server's fitted pipeline.
func NewSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Describe the fitted risk tiers and model quality",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			s, err := cliCtx.Client.Risk().Summary(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, s, func(w io.Writer) error {
				fmt.Fprintf(w, "Rows: %d  Countries: %d  Iterations: %d  Converged: %t\n", s.Rows, s.Countries, s.Iterations, s.Converged)
				fmt.Fprintf(w, "Hold-out: train=%d test=%d RMSE=%.2f R2=%.3f\n\n", s.TrainSize, s.TestSize, s.RMSE, s.R2)
				table := tablewriter.NewWriter(w)
				table.SetHeader([]string{"Tier", "Label", "Centroid", "Countries"})
				for _, t := range s.Tiers {
					table.Append([]string{
						fmt.Sprintf("%d", t.Tier),
						colorizeRiskCluster(t.Label),
						fmt.Sprintf("%.3f", t.Centroid),
						fmt.Sprintf("%d", t.Size),
					})
				}
				table.Render()
				return nil
			})
		},
	}
}

func colorizeRiskCluster(label string) string {
	switch {
	case strings.HasPrefix(label, "High"):
		return color.RedString(label)
	case strings.HasPrefix(label, "Medium"):
		return color.YellowString(label)
	case strings.HasPrefix(label, "Low"):
		return color.GreenString(label)
	default:
		return label
	}
}
