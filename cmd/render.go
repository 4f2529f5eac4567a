package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/orbit/internal/canvas"
	"github.com/abhisek/orbit/internal/diagram"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print one settled frame of the concept diagram",
	Long: `Lay out the concept map as the explorer would and print it as text.

Useful for checking a concept file or for pasting the map somewhere.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		root, _, err := loadConcepts(cfg)
		if err != nil {
			return err
		}

		cols, _ := cmd.Flags().GetInt("width")
		rows, _ := cmd.Flags().GetInt("height")
		depth, _ := cmd.Flags().GetInt("depth")
		term, _ := cmd.Flags().GetString("search")
		selected, _ := cmd.Flags().GetString("select")
		color, _ := cmd.Flags().GetBool("color")
		if cols <= 0 || rows <= 0 {
			return fmt.Errorf("width and height must be positive")
		}

		now := time.Now()
		d := diagram.New(
			diagram.WithLogger(cliLogger(cfg)),
			diagram.WithTransition(0),
			diagram.WithRevealMatches(cfg.Diagram.RevealMatches),
			diagram.WithCollapseDepth(depth),
		)
		w, h := canvas.DiagramSize(cols, rows)
		d.Resize(now, w, h)
		if err := d.SetData(now, root); err != nil {
			return err
		}
		if term != "" {
			d.SetSearchTerm(now, term)
		}
		if selected != "" {
			if _, ok := d.Tree().Node(selected); !ok {
				return fmt.Errorf("unknown concept %q", selected)
			}
			d.Expand(now, selected)
			d.Click(now, selected, 0)
		}

		r := canvas.Render(d.Frame(now), cols, rows)
		if color {
			fmt.Println(r.String())
		} else {
			fmt.Println(r.Plain())
		}
		return nil
	},
}

func init() {
	f := renderCmd.Flags()
	f.Int("width", 120, "Width in terminal columns")
	f.Int("height", 40, "Height in terminal rows")
	f.Int("depth", 1, "Depth from which branches start collapsed (-1 expands everything)")
	f.String("search", "", "Highlight concepts whose name contains this term")
	f.String("select", "", "Select a concept by id, expanding its ancestors")
	f.Bool("color", false, "Keep terminal colors")
}
