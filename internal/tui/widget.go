package tui

import (
	"context"
	"fmt"
	"strings"

	"smartchange/internal/domain"
	"smartchange/internal/rates"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type RateService interface {
	Current(ctx context.Context) domain.RateSnapshot
	Refresh(ctx context.Context) domain.RateSnapshot
}

type field int

const (
	fieldAmount field = iota
	fieldFrom
	fieldTo
	fieldCount
)

type ratesLoadedMsg struct {
	snap domain.RateSnapshot
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(8)
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("35")).Bold(true)
	blurredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	outputStyle   = lipgloss.NewStyle().Bold(true)
	advisoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("35")).Padding(1, 2)
)

var currencies = append(domain.Codes(domain.FiatCurrencies), domain.Codes(domain.CryptoCurrencies)...)

// WidgetModel is the interactive conversion widget.
type WidgetModel struct {
	ctx     context.Context
	rates   RateService
	session rates.Session
	amount  textinput.Model
	focus   field
	loading bool

	width, height int
}

func NewWidgetModel(ctx context.Context, svc RateService) WidgetModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 24
	ti.Width = 20
	ti.SetValue(rates.DefaultFromAmount)
	ti.Focus()

	return WidgetModel{
		ctx:     ctx,
		rates:   svc,
		session: rates.NewSession(domain.RateSnapshot{}),
		amount:  ti,
		loading: true,
	}
}

func (m *WidgetModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Session is the current widget state.
func (m WidgetModel) Session() rates.Session {
	return m.session
}

func (m WidgetModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load(false))
}

func (m WidgetModel) load(refresh bool) tea.Cmd {
	svc, ctx := m.rates, m.ctx
	return func() tea.Msg {
		if refresh {
			return ratesLoadedMsg{snap: svc.Refresh(ctx)}
		}
		return ratesLoadedMsg{snap: svc.Current(ctx)}
	}
}

func (m WidgetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case ratesLoadedMsg:
		m.loading = false
		m.session = m.session.WithSnapshot(msg.snap)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			return m.setFocus((m.focus + 1) % fieldCount), nil
		case "shift+tab", "up":
			return m.setFocus((m.focus + fieldCount - 1) % fieldCount), nil
		case "ctrl+s":
			return m.swap(), nil
		case "ctrl+r":
			return m.refresh()
		}

		if m.focus != fieldAmount {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "s":
				return m.swap(), nil
			case "r":
				return m.refresh()
			case "left", "h":
				return m.cycle(-1), nil
			case "right", "l", " ":
				return m.cycle(1), nil
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	if m.amount.Value() != m.session.FromAmount {
		m.session = m.session.WithAmount(m.amount.Value())
	}
	return m, cmd
}

func (m WidgetModel) setFocus(f field) WidgetModel {
	m.focus = f
	if f == fieldAmount {
		m.amount.Focus()
	} else {
		m.amount.Blur()
	}
	return m
}

func (m WidgetModel) swap() WidgetModel {
	m.session = m.session.Swap()
	m.amount.SetValue(m.session.FromAmount)
	return m
}

func (m WidgetModel) refresh() (WidgetModel, tea.Cmd) {
	m.loading = true
	return m, m.load(true)
}

func (m WidgetModel) cycle(delta int) WidgetModel {
	switch m.focus {
	case fieldFrom:
		m.session = m.session.WithFrom(nextCurrency(m.session.From, delta))
	case fieldTo:
		m.session = m.session.WithTo(nextCurrency(m.session.To, delta))
	}
	return m
}

func nextCurrency(c domain.Currency, delta int) domain.Currency {
	for i, code := range currencies {
		if code == c {
			n := len(currencies)
			return currencies[((i+delta)%n+n)%n]
		}
	}
	return currencies[0]
}

func (m WidgetModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("SmartChange"))
	b.WriteString("\n\n")

	b.WriteString(m.row("Amount", fieldAmount, m.amount.View()))
	b.WriteString(m.row("From", fieldFrom, "< "+string(m.session.From)+" >"))
	b.WriteString(m.row("To", fieldTo, "< "+string(m.session.To)+" >"))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString("Loading rates...\n")
	case m.session.Ready():
		b.WriteString(outputStyle.Render(m.session.Summary()))
		b.WriteString("\n")
		fmt.Fprintf(&b, "Service fee (3%%): %s %s\n", m.session.Fee(), m.session.From)
	default:
		b.WriteString(outputStyle.Render(m.session.ToAmount))
		b.WriteString("\n")
	}

	if advisory := m.session.Snapshot.Advisory; advisory != "" {
		b.WriteString(advisoryStyle.Render(advisory))
		b.WriteString("\n")
	}

	if !m.loading {
		b.WriteString("\n")
		for _, entry := range m.session.Board() {
			b.WriteString(entry.String())
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • ←/→: change currency • s: swap • r: refresh • q: quit"))

	return boxStyle.Render(b.String())
}

func (m WidgetModel) row(label string, f field, value string) string {
	style := blurredStyle
	if m.focus == f {
		style = focusedStyle
	}
	return labelStyle.Render(label) + style.Render(value) + "\n"
}
