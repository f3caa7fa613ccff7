package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/wasi-abi/abi"
	"github.com/wippyai/wasi-abi/idl"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectFunc modelState = iota
	stateDetail
	stateProbe
)

type interactiveModel struct {
	err      error
	iface    *idl.Interface
	filename string
	probe    textinput.Model
	probeOut string
	selected int
	width    int
	state    modelState
}

func newInteractiveModel(filename string) *interactiveModel {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	return &interactiveModel{
		filename: filename,
		state:    stateSelectFunc,
		width:    width,
	}
}

type loadedMsg struct {
	err   error
	iface *idl.Interface
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadInterface
}

func (m *interactiveModel) loadInterface() tea.Msg {
	source, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	iface, err := idl.Compile(string(source))
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{iface: iface}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateProbe && msg.String() == "q" {
				break // "q" is a valid offset input character to reject, not a quit
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.iface != nil && m.selected < len(m.iface.Functions)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if m.iface != nil && len(m.iface.Functions) > 0 {
					m.state = stateDetail
				}
			case stateProbe:
				m.probeOut = m.runProbe(m.probe.Value())
			}

		case "p":
			if m.state == stateDetail {
				m.probe = textinput.New()
				m.probe.Placeholder = "base offset"
				m.probe.Prompt = "offset: "
				m.probe.Width = 20
				m.probe.Focus()
				m.probeOut = ""
				m.state = stateProbe
				return m, nil
			}

		case "esc":
			switch m.state {
			case stateDetail:
				m.state = stateSelectFunc
			case stateProbe:
				m.state = stateDetail
				m.probeOut = ""
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.iface = msg.iface
	}

	if m.state == stateProbe {
		var cmd tea.Cmd
		m.probe, cmd = m.probe.Update(msg)
		return m, cmd
	}

	return m, nil
}

// runProbe computes the byte range every field of the selected function's
// record arguments would occupy at the given base offset.
func (m *interactiveModel) runProbe(input string) string {
	base, err := strconv.ParseUint(strings.TrimSpace(input), 0, 32)
	if err != nil {
		return errorStyle.Render("not a valid offset: " + input)
	}

	fn := m.iface.Functions[m.selected]
	var b strings.Builder
	found := false
	for _, p := range append(append([]idl.Param{}, fn.Params...), fn.Results...) {
		if p.Type.Kind != abi.KindRecord {
			continue
		}
		found = true
		if uint64(p.Type.Align) > 0 && base%uint64(p.Type.Align) != 0 {
			b.WriteString(errorStyle.Render(fmt.Sprintf("%s: offset %d violates align %d", p.Name, base, p.Type.Align)))
			b.WriteString("\n")
			continue
		}
		b.WriteString(fmt.Sprintf("%s at [%d, %d):\n", p.Type.Name, base, base+uint64(p.Type.Size)))
		for _, f := range p.Type.Fields {
			lo := base + uint64(f.Offset)
			b.WriteString(fmt.Sprintf("  %-16s %s\n", f.Name,
				offsetStyle.Render(fmt.Sprintf("[%d, %d)", lo, lo+uint64(f.Type.Size)))))
		}
	}
	if !found {
		return helpStyle.Render("no record arguments in " + fn.Name)
	}
	return b.String()
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.iface == nil {
		return "Compiling interface..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ABI Browser"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function:\n\n")
		for i, fn := range m.iface.Functions {
			line := m.formatFunc(fn)
			if m.width > 0 && lipgloss.Width(line) > m.width-4 {
				line = fn.Name // too wide for the terminal, name only
			}
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter detail • q quit"))

	case stateDetail:
		fn := m.iface.Functions[m.selected]
		b.WriteString(funcStyle.Render(fn.Name))
		b.WriteString("\n\n")
		b.WriteString("Arguments:\n")
		for _, p := range fn.Params {
			b.WriteString(fmt.Sprintf("  %-16s %s\n", p.Name, m.formatType(p.Type)))
		}
		if len(fn.Results) > 0 {
			b.WriteString("Results:\n")
			for _, r := range fn.Results {
				b.WriteString(fmt.Sprintf("  %-16s %s\n", r.Name, m.formatType(r.Type)))
			}
		}
		b.WriteString("\nLowered words:\n")
		plan := fn.Plan()
		for i, w := range plan.Words {
			core := "i32"
			if w.Wide() {
				core = "i64"
			}
			b.WriteString(fmt.Sprintf("  %2d  %-16s %-13s %s\n", i, w.Name, w.Kind, typeStyle.Render(core)))
		}
		if plan.Direct != nil {
			b.WriteString(fmt.Sprintf("  ->  %s\n", typeStyle.Render(plan.Direct.Name)))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("p probe offsets • esc back • q quit"))

	case stateProbe:
		fn := m.iface.Functions[m.selected]
		b.WriteString(fmt.Sprintf("Probing %s\n\n", funcStyle.Render(fn.Name)))
		b.WriteString(m.probe.View())
		b.WriteString("\n\n")
		if m.probeOut != "" {
			b.WriteString(m.probeOut)
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("enter compute • esc back"))
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(fn idl.Function) string {
	var params []string
	for _, p := range fn.Params {
		params = append(params, p.Name+": "+typeStyle.Render(p.Type.Name))
	}
	var results []string
	for _, r := range fn.Results {
		results = append(results, typeStyle.Render(r.Type.Name))
	}
	out := funcStyle.Render(fn.Name) + "(" + strings.Join(params, ", ") + ")"
	if len(results) > 0 {
		out += " -> " + strings.Join(results, ", ")
	}
	return out
}

func (m *interactiveModel) formatType(t *abi.Type) string {
	s := typeStyle.Render(t.String())
	if t.Kind == abi.KindRecord && len(t.Fields) > 0 {
		var fields []string
		for _, f := range t.Fields {
			fields = append(fields, fmt.Sprintf("%s@%d", f.Name, f.Offset))
		}
		s += " " + helpStyle.Render("{"+strings.Join(fields, " ")+"}")
	}
	return s
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
