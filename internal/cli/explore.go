package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/upset/pkg/chart"
	"github.com/matzehuels/upset/pkg/errors"
	"github.com/matzehuels/upset/pkg/interact"
	"github.com/matzehuels/upset/pkg/matrix"
	"github.com/matzehuels/upset/pkg/pipeline"
	"github.com/matzehuels/upset/pkg/render/upset/sink"
)

// Explore styles
var (
	exploreCursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	exploreSelectedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	exploreNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	exploreDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	exploreBarWidth = 30
	fontStep        = 1.0
	minFontSize     = 6.0
)

// exploreCommand creates the explore command, an interactive terminal view
// of a chart that hovers and selects intersections from the keyboard.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		output   string
		selected []string
	)

	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Browse intersections interactively and save the chart",
		Long: `Explore lists the intersections of a file and lets you hover and select
them. The selection is kept when saving the chart with "s".

Keys: ↑/↓ hover  ⏎/space select  esc leave  +/- font size  s save  q quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], output, selected)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file written by \"s\" (default <input>.svg)")
	cmd.Flags().StringArrayVar(&selected, "select", nil, "initially selected intersection key (repeatable)")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input, output string, selected []string) error {
	data, err := pipeline.ReadInput(ctx, pipeline.Options{Path: input, Logger: c.Logger}, c.newFetcher(false))
	if err != nil {
		return err
	}

	cc := c.Config.Chart
	ch, err := chart.New(chart.Options{
		Width:    cc.Width,
		Height:   cc.Height,
		FontSize: cc.FontSize,
		Palette:  c.Config.Palette,
		Selected: selected,
		Logger:   log.New(io.Discard),
	})
	if err != nil {
		return err
	}
	defer ch.Unmount()

	name := pipeline.InputName(input)
	f := matrix.Load(name, bytes.NewReader(data))
	if f.Status == matrix.StatusError {
		return f.Err
	}
	ch.SetFile(f)

	if output == "" {
		output = basePath("", input) + ".svg"
	}
	m := newExploreModel(ch, name, output)
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if em, ok := final.(exploreModel); ok && em.saved != "" {
		printFile(em.saved)
	}
	return nil
}

// =============================================================================
// exploreModel
// =============================================================================

// exploreModel is the bubbletea model behind the explore command.
type exploreModel struct {
	chart    *chart.Chart
	name     string
	savePath string
	save     func(path string, data []byte) error

	cursor int
	offset int
	height int
	hover  bool

	last  interact.Update
	saved string
	err   error
}

func newExploreModel(ch *chart.Chart, name, savePath string) exploreModel {
	return exploreModel{
		chart:    ch,
		name:     name,
		savePath: savePath,
		save:     writeFile,
		height:   15,
	}
}

func (m exploreModel) Init() tea.Cmd { return nil }

func (m exploreModel) rowCount() int { return len(m.chart.Layout().Rows) }

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 && m.hover {
				m.cursor--
			}
			m.enter()
		case "down", "j":
			if m.cursor < m.rowCount()-1 && m.hover {
				m.cursor++
			}
			m.enter()
		case "enter", " ":
			if m.hover {
				m.last = m.chart.Click(m.currentKey())
			}
		case "esc":
			m.last = m.chart.PointerLeave()
			m.hover = false
		case "+", "=":
			m.setFontSize(m.chart.Options().FontSize + fontStep)
		case "-":
			m.setFontSize(m.chart.Options().FontSize - fontStep)
		case "s":
			m.saveSVG()
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)
	}
	m.scroll()
	return m, nil
}

// enter hovers the row under the cursor at the middle of its bar.
func (m *exploreModel) enter() {
	l := m.chart.Layout()
	if m.cursor >= len(l.Rows) {
		return
	}
	r := l.Rows[m.cursor]
	m.last = m.chart.PointerEnter(r.Key, l.Bars.X+r.BarWidth/2, r.CenterY)
	m.hover = true
}

func (m *exploreModel) currentKey() string {
	rows := m.chart.Layout().Rows
	if m.cursor >= len(rows) {
		return ""
	}
	return rows[m.cursor].Key
}

func (m *exploreModel) setFontSize(px float64) {
	if px < minFontSize {
		m.err = errors.New(errors.ErrCodeInvalidInput, "font size must be at least %gpx", minFontSize)
		return
	}
	if err := m.chart.SetFontSize(px); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.last = interact.UpdateFull
	m.cursor = min(m.cursor, max(m.rowCount()-1, 0))
	if m.hover {
		m.enter()
	}
}

func (m *exploreModel) saveSVG() {
	data := sink.RenderSVG(m.chart.Scene(), sink.WithStatic())
	if err := m.save(m.savePath, data); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.saved = m.savePath
}

func (m *exploreModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.name))
	b.WriteString("\n")
	b.WriteString(exploreDimStyle.Render("↑/↓ hover  ⏎ select  esc leave  +/- font  s save  q quit"))
	b.WriteString("\n\n")

	f := m.chart.File()
	if !f.Ready() {
		b.WriteString(exploreDimStyle.Render("Nothing to draw"))
		b.WriteString("\n")
		return b.String()
	}

	st := m.chart.State()
	rows := m.chart.Layout().Rows
	maxValue := f.Matrix.MaxIntersectionValue()
	end := min(m.offset+m.height, len(rows))

	cells := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		r := rows[i]
		cursor := "  "
		if m.hover && i == m.cursor {
			cursor = "▸ "
		}
		mark := " "
		if st.IsSelected(r.Key) {
			mark = "●"
		}
		cells = append(cells, []string{cursor, mark, r.Key, textBar(r.Value, maxValue, exploreBarWidth), strconv.Itoa(r.Value)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Intersection", "", "Count").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.offset + row
			if idx >= len(rows) {
				return lipgloss.NewStyle()
			}
			base := exploreNormalStyle
			if st.IsSelected(rows[idx].Key) {
				base = exploreSelectedStyle
			}
			if st.IsHovered(rows[idx].Key) {
				base = exploreCursorStyle
			}
			if col == 4 {
				return base.Align(lipgloss.Right)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	if tip := m.chart.Tooltip(); tip != nil && tip.Visible() {
		b.WriteString(exploreCursorStyle.Render(tip.Text()))
		b.WriteString("\n")
	}
	if sel := st.Selected(); len(sel) > 0 {
		b.WriteString(exploreSelectedStyle.Render("selected: " + strings.Join(sel, " ")))
		b.WriteString("\n")
	}
	b.WriteString(exploreDimStyle.Render(fmt.Sprintf("  [%d/%d]  font %gpx  update %s", m.cursor+1, len(rows), m.chart.Options().FontSize, m.last)))
	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(m.err) + "\n")
	case m.saved != "":
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " saved " + m.saved + "\n")
	}
	return b.String()
}

// textBar draws value as a run of block characters out of width cells.
func textBar(value, maxValue, width int) string {
	if maxValue <= 0 || value <= 0 {
		return ""
	}
	n := int(math.Round(float64(value) / float64(maxValue) * float64(width)))
	return strings.Repeat("█", max(n, 1))
}
