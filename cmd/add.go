package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var addDesc string

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Register a dataset in a study",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagStudy == "" {
			return errors.New("--study is required")
		}
		st, err := activeStudy()
		if err != nil {
			return err
		}
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		ds, err := openDataset(cmd, path)
		if err != nil {
			return err
		}
		d := st.AddDataset(ds, addDesc)
		if err := st.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dataset added: %s (%d rows, %d columns)\n", d.Name, d.Rows, len(d.Columns))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addDesc, "desc", "", "dataset description")
}
