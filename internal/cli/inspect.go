package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/papersync/pkg/scrollsync"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags viewerFlags
		step  float64
		out   string
	)

	cmd := &cobra.Command{
		Use:   "inspect [document]",
		Short: "Step through a document interactively",
		Long: `Open a document in an interactive terminal view. Moving between blocks
scrolls the transcript so the block sits at eye level; each move recomputes
the frame and shows the resulting position and transform.

Press s to write the current frame as a PNG.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocument,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := c.openDocument(ctx, args[0], flags.noCache, true)
			if err != nil {
				return err
			}
			defer l.Close()

			m := newInspectModel(ctx, c.newViewer(ctx, l, flags), step, out)
			m.recompute()
			_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&step, "step", 40, "scroll distance for j/k")
	cmd.Flags().StringVarP(&out, "output", "o", ".", "directory for snapshots")

	return cmd
}

// =============================================================================
// inspectModel - Interactive block stepping
// =============================================================================

type inspectModel struct {
	ctx    context.Context
	viewer *viewer
	step   float64
	out    string

	Cursor int
	Height int
	Offset int

	frame  scrollsync.Frame
	err    error
	status string
	shots  int
}

func newInspectModel(ctx context.Context, v *viewer, step float64, out string) *inspectModel {
	return &inspectModel{ctx: ctx, viewer: v, step: step, out: out, Height: 12}
}

func (m *inspectModel) recompute() {
	m.frame, m.err = m.viewer.engine.Recompute(m.ctx)
	m.follow()
}

// follow keeps the cursor on the block the engine resolved.
func (m *inspectModel) follow() {
	if m.frame.Seq == 0 {
		return
	}
	m.Cursor = min(max(m.frame.Block, 0), max(m.viewer.text.Len()-1, 0))
	m.scrollList()
}

func (m *inspectModel) scrollList() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	text := m.viewer.text
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up":
			if m.Cursor > 0 {
				text.ScrollToBlock(m.Cursor - 1)
				m.recompute()
			}
		case "down":
			if m.Cursor < text.Len()-1 {
				text.ScrollToBlock(m.Cursor + 1)
				m.recompute()
			}
		case "k":
			text.ScrollBy(-m.step)
			m.recompute()
		case "j":
			text.ScrollBy(m.step)
			m.recompute()
		case "pgup":
			text.ScrollBy(-text.ClientHeight())
			m.recompute()
		case "pgdown":
			text.ScrollBy(text.ClientHeight())
			m.recompute()
		case "g":
			text.ScrollTo(0)
			m.recompute()
		case "G":
			text.ScrollTo(text.MaxScroll())
			m.recompute()
		case "s":
			m.shots++
			path := filepath.Join(m.out, fmt.Sprintf("inspect-%03d.png", m.shots))
			if err := writePNG(path, m.viewer.window); err != nil {
				m.status = StyleWarning.Render(err.Error())
			} else {
				m.status = StyleSuccess.Render(iconSuccess + " " + path)
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
		m.scrollList()
	}
	return m, nil
}

func (m *inspectModel) View() string {
	var b strings.Builder
	text := m.viewer.text

	b.WriteString(StyleTitle.Render("Inspect"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ block  j/k scroll  g/G ends  s snapshot  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, text.Len())
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		blk, _ := text.Block(i)
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, fmt.Sprint(i), string(blk.Kind), blk.Address, excerpt(blk.Text, 40)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Kind", "Address", "Text").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if col == 3 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}
	return b.String()
}

func (m *inspectModel) statusLine() string {
	text := m.viewer.text
	parts := []string{
		fmt.Sprintf("scroll %.0f/%.0f", text.ScrollTop(), text.MaxScroll()),
	}
	if m.frame.Seq > 0 {
		parts = append(parts,
			fmt.Sprintf("eye %.1f", m.frame.EyeLevel),
			fmt.Sprintf("%s block %d rate %.3f", m.frame.Position.Phase, m.frame.Block, m.frame.Position.Rate),
			fmt.Sprintf("page %d", m.frame.Page),
		)
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleValue.Render(part)
	}
	if m.frame.Seq > 0 {
		line += "\n  " + StyleHighlight.Render(m.frame.Transform.String())
	}
	if m.err != nil {
		line += "\n  " + StyleWarning.Render(iconWarning+" "+m.err.Error())
	}
	return line
}

// excerpt shortens s to at most n runes on a single line.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
