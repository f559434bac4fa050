package cli

import (
	"os"

	"diagnosis-quiz-service/internal/render"
	"github.com/spf13/cobra"
)

// NewRenderCmd exports a quiz definition file as a standalone HTML page.
func NewRenderCmd() *cobra.Command {
	var file, out, color string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Export a quiz definition file as a standalone HTML page",
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadDefinition(file)
			if err != nil {
				return err
			}
			page, err := render.HTML(def, render.Options{MainColor: color})
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(page)
				return err
			}
			return os.WriteFile(out, page, 0o644)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "quiz definition JSON file")
	cmd.Flags().StringVar(&out, "out", "-", "output path, - for stdout")
	cmd.Flags().StringVar(&color, "color", render.DefaultMainColor, "main color as #rrggbb")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
