package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hypocheck/internal/utils"
)

var (
	listStudies  bool
	listDatasets bool
	listResults  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List studies, or the datasets or results of one study",
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 0
		for _, b := range []bool{listStudies, listDatasets, listResults} {
			if b {
				n++
			}
		}
		if n != 1 {
			return errors.New("specify exactly one of --studies, --datasets or --results")
		}
		out := cmd.OutOrStdout()
		if listStudies {
			return listAllStudies(out)
		}
		if flagStudy == "" {
			return errors.New("--study is required when using --datasets or --results")
		}
		st, err := activeStudy()
		if err != nil {
			return err
		}
		if listDatasets {
			if len(st.Datasets) == 0 {
				fmt.Fprintln(out, "(no datasets)")
				return nil
			}
			for _, d := range st.SortedDatasets() {
				name := d.Name
				if d.Sheet != "" {
					name += " [" + d.Sheet + "]"
				}
				fmt.Fprintf(out, "- %s: %s (%d rows) %s\n", d.ID, name, d.Rows, d.Description)
			}
			return nil
		}
		if len(st.Results) == 0 {
			fmt.Fprintln(out, "(no results)")
			return nil
		}
		for _, r := range st.Results {
			fmt.Fprintf(out, "- %s %s %s(%s): p=%.4f %s\n",
				r.RecordedAt.Format("2006-01-02 15:04"), r.Test, filepath.Base(r.Dataset),
				strings.Join(r.Variables, ", "), r.PValue, r.Conclusion)
		}
		return nil
	},
}

func listAllStudies(out io.Writer) error {
	root, err := defaultStudiesDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), utils.StudyFile)); err == nil {
			fmt.Fprintf(out, "- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Fprintln(out, "(no studies)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listStudies, "studies", false, "list studies")
	listCmd.Flags().BoolVar(&listDatasets, "datasets", false, "list datasets in a study")
	listCmd.Flags().BoolVar(&listResults, "results", false, "list recorded results in a study")
}
