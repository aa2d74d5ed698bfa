// Package tui holds the terminal front-ends: a typewriter preview and a
// one-shot contact form sender.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nosuji/portfolio/internal/contact"
	"github.com/nosuji/portfolio/internal/typewriter"
)

var (
	BodyStyle    = lipgloss.NewStyle().Padding(1)
	TextStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"})
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#a6adc8"})
	TypingStyle  = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#f5c2e7", Dark: "#f5c2e7"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#11111b", Dark: "#11111b"})
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"})
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"})
)

type frameMsg typewriter.Frame

// PreviewModel renders the hero line and the typewriter text.
type PreviewModel struct {
	owner  string
	frames chan typewriter.Frame
	text   string
}

func NewPreviewModel(owner string, frames chan typewriter.Frame) PreviewModel {
	return PreviewModel{owner: owner, frames: frames}
}

func (m PreviewModel) next() tea.Msg {
	return frameMsg(<-m.frames)
}

func (m PreviewModel) Init() tea.Cmd { return m.next }

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.text = msg.Text
		return m, m.next
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder
	b.WriteString(SubtextStyle.Render(fmt.Sprintf("Hi, my name is %s,", m.owner)))
	b.WriteString("\n")
	b.WriteString(TextStyle.Render("I'm A ") + TypingStyle.Render(m.text+"▌"))
	b.WriteString("\n\n")
	b.WriteString(SubtextStyle.Render("q to quit"))
	return BodyStyle.Render(b.String())
}

// Preview runs the animation in the terminal until the user quits.
func Preview(owner string, words []string, opts ...typewriter.Option) error {
	frames := make(chan typewriter.Frame, 16)
	opts = append(opts, typewriter.WithObserver(func(f typewriter.Frame) {
		select {
		case frames <- f:
		default:
		}
	}))
	a, err := typewriter.New(words, opts...)
	if err != nil {
		return err
	}
	a.Start()
	defer a.Stop()

	_, err = tea.NewProgram(NewPreviewModel(owner, frames)).Run()
	return err
}

type statusMsg contact.Status

// SendModel shows a spinner while the controller is sending.
type SendModel struct {
	spinner spinner.Model
	ctl     *contact.Controller
	ctx     context.Context
	status  contact.Status
}

func NewSendModel(ctx context.Context, ctl *contact.Controller) SendModel {
	return SendModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		ctl:     ctl,
		ctx:     ctx,
		status:  ctl.Status(),
	}
}

func (m SendModel) wait() tea.Msg {
	_ = m.ctl.Wait(m.ctx)
	return statusMsg(m.ctl.Status())
}

func (m SendModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m SendModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.status = contact.Status(msg)
		if !m.status.Busy() {
			return m, tea.Quit
		}
		return m, m.wait
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SendModel) View() string {
	switch m.status.Kind {
	case contact.Loading:
		return BodyStyle.Render(m.spinner.View() + " " + TextStyle.Render(m.status.Message))
	case contact.Success:
		return BodyStyle.Render(SuccessStyle.Render(m.status.Message)) + "\n"
	case contact.Error:
		return BodyStyle.Render(ErrorStyle.Render(m.status.Message)) + "\n"
	}
	return ""
}

// Send submits form through ctl and shows progress until the outcome is
// known. It returns the final status.
func Send(ctx context.Context, ctl *contact.Controller, form contact.Form) (contact.Status, error) {
	for field, v := range map[string]string{
		contact.FieldName:    form.Name,
		contact.FieldEmail:   form.Email,
		contact.FieldMessage: form.Message,
	} {
		if err := ctl.UpdateField(field, v); err != nil {
			return contact.Status{}, err
		}
	}
	if err := ctl.Submit(ctx); err != nil {
		return ctl.Status(), err
	}

	if _, err := tea.NewProgram(NewSendModel(ctx, ctl)).Run(); err != nil {
		return ctl.Status(), err
	}

	// The program may quit on ctrl+c before the send finishes.
	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := ctl.Wait(waitCtx); err != nil {
		return ctl.Status(), err
	}
	return ctl.Status(), nil
}
