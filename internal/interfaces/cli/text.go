package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/EcoExpand-AI/pkg/client"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// NewChatCmd asks the compliance assistant one question.
func NewChatCmd() *cobra.Command {
	var contextText string
	cmd := &cobra.Command{
		Use:   "chat <query>",
		Short: "Ask the compliance and export-incentive assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			reply, err := cliCtx.Client.Text().Chat(ctx, strings.Join(args, " "), contextText)
			if err != nil {
				return err
			}
			return PrintResult(cmd, map[string]string{"response": reply}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, reply)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&contextText, "context", "", "extra context appended to the system prompt")
	return cmd
}

// textFlags are shared by the text analysis commands.
type textFlags struct {
	text string
	file string
}

func (f *textFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, "text", "", "text to analyse")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "read text from a file (- for stdin)")
}

// read returns --text, else the --file contents, else stdin.
func (f *textFlags) read(cmd *cobra.Command) (string, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case f.text != "":
		return f.text, nil
	case f.file != "" && f.file != "-":
		data, err = os.ReadFile(f.file)
	default:
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.InvalidParam("no input text; use --text, --file or stdin")
	}
	return text, nil
}

// NewPhrasesCmd extracts key phrases.
func NewPhrasesCmd() *cobra.Command {
	var flags textFlags
	cmd := &cobra.Command{
		Use:   "phrases",
		Short: "Extract the most frequent key phrases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			text, err := flags.read(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			phrases, err := cliCtx.Client.Text().KeyPhrases(ctx, text)
			if err != nil {
				return err
			}
			return PrintResult(cmd, map[string][]client.Phrase{"key_phrases": phrases}, func(w io.Writer) error {
				table := tablewriter.NewWriter(w)
				table.SetHeader([]string{"Phrase", "Count"})
				for _, p := range phrases {
					table.Append([]string{p.Phrase, fmt.Sprintf("%d", p.Count)})
				}
				table.Render()
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// NewSummarizeCmd produces an extractive summary.
func NewSummarizeCmd() *cobra.Command {
	var flags textFlags
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize text with its highest-scoring sentences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			text, err := flags.read(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			summary, err := cliCtx.Client.Text().Summarize(ctx, text)
			if err != nil {
				return err
			}
			return PrintResult(cmd, map[string]string{"summary": summary}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, summary)
				return err
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// NewInsightsCmd lists named entities of interest.
func NewInsightsCmd() *cobra.Command {
	var flags textFlags
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "List organisations, places, amounts, laws and dates in text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			text, err := flags.read(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			insights, err := cliCtx.Client.Text().Insights(ctx, text)
			if err != nil {
				return err
			}
			return PrintResult(cmd, map[string][]client.Insight{"insights": insights}, func(w io.Writer) error {
				table := tablewriter.NewWriter(w)
				table.SetHeader([]string{"Text", "Type"})
				for _, in := range insights {
					table.Append([]string{truncateString(in.Text, 60), in.Type})
				}
				table.Render()
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}
