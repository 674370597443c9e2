package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/EcoExpand-AI/pkg/client"
)

// NewGraphCmd groups the knowledge graph subcommands.
func NewGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect and manage the compliance knowledge graph",
	}
	cmd.AddCommand(newGraphDumpCmd(), newGraphClearCmd(), newGraphImageCmd(), newGraphLoadCmd())
	return cmd
}

func newGraphDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every node and edge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			g, err := cliCtx.Client.Graph().Get(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, g, func(w io.Writer) error {
				fmt.Fprintf(w, "Nodes (%d)\n", len(g.Nodes))
				nodes := tablewriter.NewWriter(w)
				nodes.SetHeader([]string{"Name", "Type"})
				for _, n := range g.Nodes {
					nodes.Append([]string{n.Name, n.Type})
				}
				nodes.Render()

				fmt.Fprintf(w, "\nEdges (%d)\n", len(g.Edges))
				edges := tablewriter.NewWriter(w)
				edges.SetHeader([]string{"Source", "Relation", "Target"})
				for _, e := range g.Edges {
					edges.Append([]string{e.Source, e.Relation, e.Target})
				}
				edges.Render()
				return nil
			})
		},
	}
}

func newGraphClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every node and edge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			msg, err := cliCtx.Client.Graph().Clear(ctx)
			if err != nil {
				return err
			}
			PrintSuccess(cmd, msg)
			return nil
		},
	}
}

func newGraphImageCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Render the graph to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			img, err := cliCtx.Client.Graph().Image(ctx)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, img.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			msg := fmt.Sprintf("wrote %d bytes to %s", len(img.Data), out)
			if img.SnapshotKey != "" {
				msg += fmt.Sprintf(" (snapshot %s)", img.SnapshotKey)
			}
			PrintSuccess(cmd, msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "graph.png", "output file")
	return cmd
}

func newGraphLoadCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Bulk upload entities and relations from a JSON file",
		Long:  "load reads {\"entities\": [...], \"relations\": [...]} from --file (or stdin) and uploads it in one call.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			var r io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var data client.GraphData
			if err := json.NewDecoder(r).Decode(&data); err != nil {
				return fmt.Errorf("decode graph data: %w", err)
			}

			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()
			msg, err := cliCtx.Client.Graph().BulkUpload(ctx, data)
			if err != nil {
				return err
			}
			PrintSuccess(cmd, msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "graph data JSON file (- for stdin)")
	return cmd
}
