package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/session"
)

// inspectCommand creates the inspect command, which prints the laid-out
// nodes of a document.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		slices   []string
		asJSON   bool
		instance int
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print every node of a laid-out document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), args, slices, instance, asJSON)
		},
	}

	cmd.Flags().StringSliceVarP(&slices, "slice", "s", nil, "inspect only the named slices (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	cmd.Flags().IntVar(&instance, "instance", 0, "instance to inspect when the file is a corpus")
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, w io.Writer, args, slices []string, instance int, asJSON bool) error {
	_, doc, err := c.loadDocument(args, instance)
	if err != nil {
		return err
	}
	doc, err = doc.Select(slices...)
	if err != nil {
		return err
	}
	s, err := session.New(ctx, doc, session.Options{Logger: loggerFromContext(ctx)})
	if err != nil {
		return err
	}
	snap := s.Snapshot()

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	if snap.Title != "" {
		fmt.Fprintln(w, StyleTitle.Render(snap.Title))
	}
	fmt.Fprintln(w, nodeTable(snap))
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d nodes · %d edges · canvas %s × %s",
		len(snap.Nodes), len(snap.Edges), num(snap.Width), num(snap.Height))))
	return nil
}

// nodeTable renders the snapshot nodes as a bordered table. Positions are
// canvas coordinates.
func nodeTable(snap *session.Snapshot) string {
	rows := make([][]string, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		rows = append(rows, []string{
			strconv.Itoa(n.Ordinal),
			n.Label,
			string(n.Kind),
			num(n.AbsX),
			num(n.AbsY),
			num(n.Width),
			num(n.Height),
			strconv.Itoa(n.Attachments),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Label", "Kind", "X", "Y", "W", "H", "Edges").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			switch col {
			case 0:
				return cellStyle.Foreground(colorDim)
			case 2:
				return cellStyle.Foreground(colorYellow)
			case 3, 4:
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle.Foreground(colorWhite)
		}).
		Render()
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
