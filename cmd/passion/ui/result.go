package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/sebakara/early-passion-detection/internal/api"
	"github.com/sebakara/early-passion-detection/internal/types"
)

// ResultModel shows the talent breakdown once an assessment completes.
type ResultModel struct {
	child    types.Child
	result   *api.AnalysisResult
	viewport viewport.Model
	renderer *glamour.TermRenderer
	ready    bool
	styles   Styles
}

// NewResultModel creates the result page.
func NewResultModel(styles Styles) ResultModel {
	glamourStyle := "light"
	if stylesAreDark(styles) {
		glamourStyle = "dark"
	}
	r, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle),
		glamour.WithWordWrap(76),
	)
	vp := viewport.New(80, 20)
	return ResultModel{viewport: vp, renderer: r, styles: styles}
}

func stylesAreDark(s Styles) bool {
	return s.Title.GetForeground() == DarkForeground
}

// SetResult renders the analysis into the viewport.
func (m ResultModel) SetResult(child types.Child, res *api.AnalysisResult) ResultModel {
	m.child = child
	m.result = res
	m.ready = res != nil
	if m.ready {
		m.viewport.SetContent(m.render())
		m.viewport.GotoTop()
	}
	return m
}

// SetSize resizes the viewport to the terminal.
func (m ResultModel) SetSize(width, height int) ResultModel {
	m.viewport.Width = width
	if height > 6 {
		m.viewport.Height = height - 4
	}
	return m
}

// Update scrolls the viewport.
func (m ResultModel) Update(msg tea.Msg) (ResultModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "esc":
			return m, func() tea.Msg { return BackMsg{} }
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ResultModel) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Results for %s\n\n", m.child.DisplayName())

	if m.result.PrimaryTalent != "" {
		fmt.Fprintf(&b, "**Strongest signal:** %s\n\n", m.result.PrimaryTalent)
	}
	if len(m.result.SecondaryTalents) > 0 {
		fmt.Fprintf(&b, "**Also showing:** %s\n\n", strings.Join(m.result.SecondaryTalents, ", "))
	}

	if len(m.result.TalentDomains) > 0 {
		b.WriteString("## Domain scores\n\n")
		domains := make([]string, 0, len(m.result.TalentDomains))
		for d := range m.result.TalentDomains {
			domains = append(domains, d)
		}
		sort.Slice(domains, func(i, j int) bool {
			return m.result.TalentDomains[domains[i]] > m.result.TalentDomains[domains[j]]
		})
		for _, d := range domains {
			fmt.Fprintf(&b, "- %s: %.0f%%\n", d, m.result.TalentDomains[d]*100)
		}
		b.WriteString("\n")
	}

	if len(m.result.Recommended) > 0 {
		b.WriteString("## Things to try\n\n")
		for _, act := range m.result.Recommended {
			fmt.Fprintf(&b, "- %s\n", act)
		}
		b.WriteString("\n")
	}

	if m.result.ConfidenceScore > 0 {
		fmt.Fprintf(&b, "_Confidence: %.0f%%. Scores sharpen as more assessments come in._\n", m.result.ConfidenceScore*100)
	}

	out := b.String()
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(out); err == nil {
			return rendered
		}
	}
	return out
}

// View renders the scrollable result.
func (m ResultModel) View() string {
	if !m.ready {
		return m.styles.Subtle.Render("No results yet.")
	}
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("up/down: scroll • enter: done • ctrl+c: quit"))
	return b.String()
}
