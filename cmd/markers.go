package cmd

import (
	"fmt"
	"text/tabwriter"

	"l5kscan/internal/project"
	"l5kscan/internal/scanner"

	"github.com/spf13/cobra"
)

// newMarkersCmd 创建 markers 子命令。
// 命令用于展示扫描时识别的段标记以及默认文件后缀。
func newMarkersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "markers",
		Short: "展示段标记与默认文件后缀",
		RunE: func(cmd *cobra.Command, _ []string) error {
			layout := project.DefaultLayout
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			if _, err := fmt.Fprintln(writer, "SEGMENT\tSTART\tEND"); err != nil {
				return err
			}
			rows := [][3]string{
				{"program", layout.ProgramStart, layout.ProgramEnd},
				{"routine", layout.RoutineStart, layout.RoutineEnd},
				{"rung", layout.RungMarker, "-"},
			}
			for _, row := range rows {
				if _, err := fmt.Fprintf(writer, "%s\t%s\t%s\n", row[0], row[1], row[2]); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(writer, "\nEXTENSIONS\t%v\n", scanner.DefaultExtensions); err != nil {
				return err
			}

			return writer.Flush()
		},
	}
}
