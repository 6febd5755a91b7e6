package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/abi-bindgen/generator"
	"github.com/wippyai/abi-bindgen/registry"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// entry is one browsable declaration.
type entry struct {
	name    string
	kind    string
	summary string
	detail  []string
}

type inspectState int

const (
	stateList inspectState = iota
	stateDetail
)

type inspectModel struct {
	source   string
	entries  []entry
	visible  []int
	filter   textinput.Model
	selected int
	state    inspectState
}

func newInspectModel(source string, entries []entry) *inspectModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()

	m := &inspectModel{
		source:  source,
		entries: entries,
		filter:  ti,
		state:   stateList,
	}
	m.applyFilter()
	return m
}

// buildEntries lists structs with their layouts, then functions.
func buildEntries(g *generator.Generator) []entry {
	reg := g.Registry()
	calc := g.Layout()
	policy := calc.Policy()

	var entries []entry
	for _, def := range reg.Structs() {
		info, _ := calc.Layout(def.Name)
		e := entry{
			name:    def.Name,
			kind:    "struct",
			summary: fmt.Sprintf("size %d, align %d", info.Size, info.Align),
		}
		if def.IsAlias() {
			e.kind = "alias"
			e.summary += ", alias of " + def.Alias
		}
		e.detail = append(e.detail, fmt.Sprintf("%s layout, %d-byte pointers", policy.Alignment, policy.PointerSize))
		e.detail = append(e.detail, fmt.Sprintf("%6s %5s  %s", "offset", "size", "field"))
		for i, f := range def.Fields {
			var off, size uint32
			if i < len(info.Offsets) {
				off, size = info.Offsets[i].Offset, info.Offsets[i].Size
			}
			e.detail = append(e.detail, fmt.Sprintf("%6d %5d  %s %s", off, size, f.Name, typeStyle.Render(f.Type.String())))
		}
		entries = append(entries, e)
	}

	for _, fn := range reg.Functions() {
		e := entry{
			name:    fn.Name,
			kind:    "func",
			summary: signature(fn),
		}
		if fn.Description != "" {
			e.detail = append(e.detail, fn.Description)
		}
		for _, p := range fn.Params {
			line := fmt.Sprintf("%s %s", p.Name, typeStyle.Render(p.Type.String()))
			if fn.PreloadParam(p.Name) {
				line += " (preloaded)"
			}
			e.detail = append(e.detail, line)
		}
		entries = append(entries, e)
	}
	return entries
}

func signature(fn *registry.Function) string {
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		params = append(params, p.Type.String())
	}
	return fmt.Sprintf("%s(%s) %s", fn.Name, strings.Join(params, ", "), fn.Return)
}

func (m *inspectModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if q == "" || strings.Contains(strings.ToLower(e.name), q) || strings.Contains(e.kind, q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *inspectModel) current() (entry, bool) {
	if m.selected < len(m.visible) {
		return m.entries[m.visible[m.selected]], true
	}
	return entry{}, false
}

func (m *inspectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up":
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.state == stateList && m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			if m.state == stateList {
				if _, ok := m.current(); ok {
					m.state = stateDetail
					m.filter.Blur()
				}
			}
			return m, nil

		case "esc":
			if m.state == stateDetail {
				m.state = stateList
				m.filter.Focus()
				return m, nil
			}
			return m, tea.Quit
		}
	}

	if m.state != stateList {
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *inspectModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ABI Inspector"))
	b.WriteString(" ")
	b.WriteString(m.source)
	b.WriteString("\n\n")

	switch m.state {
	case stateList:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		for i, idx := range m.visible {
			e := m.entries[idx]
			line := fmt.Sprintf("%-6s %s  %s", e.kind, nameStyle.Render(e.name), e.summary)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter details • esc quit"))

	case stateDetail:
		e, _ := m.current()
		b.WriteString(fmt.Sprintf("%s %s\n%s\n\n", e.kind, nameStyle.Render(e.name), e.summary))
		for _, line := range e.detail {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • ctrl+c quit"))
	}
	return b.String()
}

func runInspector(g *generator.Generator, source string) error {
	p := tea.NewProgram(newInspectModel(source, buildEntries(g)), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
