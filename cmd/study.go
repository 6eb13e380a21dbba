package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hypocheck/internal/report"
)

var studyOutput string

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Inspect a study",
}

var studyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Render a study's datasets and recorded results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagStudy == "" {
			return errors.New("--study is required")
		}
		st, err := activeStudy()
		if err != nil {
			return err
		}
		f, err := outputFormat()
		if err != nil {
			return err
		}
		var body []byte
		switch f {
		case report.FormatJSON:
			var buf bytes.Buffer
			if err := report.JSON(&buf, st); err != nil {
				return err
			}
			body = buf.Bytes()
		case report.FormatHTML:
			body = report.MarkdownToHTML(st.Markdown())
		default:
			body = []byte(st.Markdown())
		}
		if studyOutput == "" {
			_, err := cmd.OutOrStdout().Write(body)
			return err
		}
		if err := os.WriteFile(studyOutput, body, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote study '%s' to %s\n", st.Name, studyOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(studyCmd)
	studyCmd.AddCommand(studyShowCmd)
	studyShowCmd.Flags().StringVarP(&studyOutput, "output", "o", "", "write to this file instead of stdout")
}
