package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/http-adapter/adapter"
	"github.com/wippyai/http-adapter/hostabi"
	"github.com/wippyai/http-adapter/resource"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2E7D6B")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Faint(true)
)

const maxBodyLines = 20

type modelState int

const (
	stateEdit modelState = iota
	stateShowReply
)

const (
	inputMethod = iota
	inputURI
	inputBody
	inputCount
)

type interactiveModel struct {
	err      error
	handler  adapter.Handler
	header   []hostabi.Field
	name     string
	events   []string
	reply    hostabi.Reply
	inputs   []textinput.Model
	focusIdx int
	state    modelState
	sent     bool
}

type invokedMsg struct {
	err    error
	events []string
	reply  hostabi.Reply
	sent   bool
}

func newInteractiveModel(name string, h adapter.Handler, req hostabi.Request) *interactiveModel {
	m := &interactiveModel{
		name:    name,
		handler: h,
		header:  req.Header,
		inputs:  make([]textinput.Model, inputCount),
	}
	prompts := [inputCount]string{"method: ", "uri:    ", "body:   "}
	values := [inputCount]string{req.Method, req.URI, string(req.Body)}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = prompts[i]
		ti.Width = 60
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[0].Focus()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateShowReply {
				return m, tea.Quit
			}

		case "tab", "down":
			if m.state == stateEdit {
				m.focus((m.focusIdx + 1) % inputCount)
				return m, nil
			}

		case "shift+tab", "up":
			if m.state == stateEdit {
				m.focus((m.focusIdx + inputCount - 1) % inputCount)
				return m, nil
			}

		case "enter":
			switch m.state {
			case stateEdit:
				return m, m.invoke(m.request())
			case stateShowReply:
				m.state = stateEdit
				m.err = nil
				return m, nil
			}

		case "esc":
			if m.state == stateShowReply {
				m.state = stateEdit
				m.err = nil
				return m, nil
			}
		}

	case invokedMsg:
		m.reply = msg.reply
		m.sent = msg.sent
		m.events = msg.events
		m.err = msg.err
		m.state = stateShowReply
		return m, nil
	}

	if m.state == stateEdit {
		var cmd tea.Cmd
		m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) focus(i int) {
	m.inputs[m.focusIdx].Blur()
	m.focusIdx = i
	m.inputs[m.focusIdx].Focus()
}

func (m *interactiveModel) request() hostabi.Request {
	return hostabi.Request{
		Method: strings.ToUpper(strings.TrimSpace(m.inputs[inputMethod].Value())),
		URI:    strings.TrimSpace(m.inputs[inputURI].Value()),
		Header: m.header,
		Body:   []byte(m.inputs[inputBody].Value()),
	}
}

// invoke runs one invocation and records every handle the adapter and the
// host create or drop along the way.
func (m *interactiveModel) invoke(req hostabi.Request) tea.Cmd {
	h := m.handler
	return func() tea.Msg {
		var events []string
		record := func(side string) resource.Observer {
			return resource.ObserverFunc(func(e resource.Event) {
				events = append(events, fmt.Sprintf("%-7s %-8s %s #%d", side, e.Type, e.Kind, e.Handle))
			})
		}

		host := hostabi.NewSim(req, hostabi.WithObserver(record("host")))
		err := adapter.Invoke(context.Background(), host, h, adapter.WithObserver(record("adapter")))
		reply, sent := host.Reply()
		return invokedMsg{err: err, events: events, reply: reply, sent: sent}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("HTTP Adapter"))
	b.WriteString(" ")
	b.WriteString(m.name)
	b.WriteString("\n\n")

	switch m.state {
	case stateEdit:
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		for _, f := range m.header {
			b.WriteString(labelStyle.Render(f.Name + ": " + f.Value))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter send • ctrl+c quit"))

	case stateShowReply:
		if m.sent {
			b.WriteString(statusStyle.Render(fmt.Sprintf("HTTP %d", m.reply.Status)))
			b.WriteString("\n")
			for _, f := range m.reply.Header {
				b.WriteString(labelStyle.Render(f.Name+":") + " " + f.Value + "\n")
			}
			b.WriteString("\n")
			b.WriteString(bodyStyle.Render(truncateLines(string(m.reply.Body), maxBodyLines)))
			b.WriteString("\n")
		} else {
			b.WriteString(errorStyle.Render("no response sent"))
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}

		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("Handle events (%d):", len(m.events))))
		b.WriteString("\n")
		for _, e := range m.events {
			b.WriteString(eventStyle.Render("  " + e))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter edit • q quit"))
	}

	return b.String()
}

func truncateLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n… %d more lines", len(lines)-n)
}

func runInteractive(name string, h adapter.Handler, req hostabi.Request) error {
	p := tea.NewProgram(newInteractiveModel(name, h, req), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
