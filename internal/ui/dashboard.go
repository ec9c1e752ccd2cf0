package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SnapshotMsg carries a fresh balance snapshot into the dashboard.
type SnapshotMsg struct {
	USDC       string // formatted
	STSLA      string // formatted
	MarketOpen bool
	Block      uint64
}

// EstimateMsg carries a refreshed swap estimate for the current spend input.
type EstimateMsg struct {
	Spend  string
	Return string // formatted sTSLA, "" when the estimate failed
}

// SessionMsg updates the session line (account/network), e.g. after an
// account switch in the wallet.
type SessionMsg struct {
	Account string
	Network string
}

// DashboardErrMsg surfaces a background error in the status bar.
type DashboardErrMsg struct {
	Err string
}

// DashboardModel is the Bubble Tea model for the live swap dashboard: the
// balances, the market flag and a spend input with a live sTSLA estimate.
type DashboardModel struct {
	Account string
	Network string

	Snapshot SnapshotMsg
	haveSnap bool

	SpendInput string
	Estimate   string

	// OnSpendChange is invoked from Update whenever the spend input edits;
	// the command layer re-queries the estimate and sends an EstimateMsg.
	OnSpendChange func(spend string)

	ErrMsg   string
	Frame    int
	Quitting bool
}

var dashSpinFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type dashTickMsg struct{}

func dashSpinTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return dashTickMsg{}
	})
}

func (m DashboardModel) Init() tea.Cmd { return dashSpinTick() }

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit

		case "backspace":
			if len(m.SpendInput) > 0 {
				m.SpendInput = m.SpendInput[:len(m.SpendInput)-1]
				m.spendChanged()
			}

		default:
			if s := msg.String(); len(s) == 1 && (s[0] >= '0' && s[0] <= '9' || s[0] == '.') {
				m.SpendInput += s
				m.spendChanged()
			}
		}

	case dashTickMsg:
		m.Frame = (m.Frame + 1) % len(dashSpinFrames)
		return m, dashSpinTick()

	case SnapshotMsg:
		m.Snapshot = msg
		m.haveSnap = true

	case EstimateMsg:
		// Discard estimates for inputs the user has already moved past.
		if msg.Spend == m.SpendInput {
			m.Estimate = msg.Return
		}

	case SessionMsg:
		m.Account = msg.Account
		m.Network = msg.Network

	case DashboardErrMsg:
		m.ErrMsg = msg.Err
	}

	return m, nil
}

func (m *DashboardModel) spendChanged() {
	m.Estimate = ""
	if m.OnSpendChange != nil {
		m.OnSpendChange(m.SpendInput)
	}
}

func (m DashboardModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	spin := dashSpinFrames[m.Frame]

	title := fmt.Sprintf("sTSLA Swap  ·  %s  ·  %s", TruncateAddr(m.Account), m.Network)
	sb.WriteString(StyleTitle.Render(title) + "\n")

	if m.ErrMsg != "" {
		sb.WriteString(StyleError.Render("✗ "+m.ErrMsg) + "\n\n")
	} else if !m.haveSnap {
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("%s waiting for first block…", spin)) + "\n\n")
	} else {
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  block #%d", m.Snapshot.Block)) + "\n\n")
	}

	var market string
	if m.Snapshot.MarketOpen {
		market = StyleSuccess.Render("OPEN")
	} else {
		market = StyleWarning.Render("CLOSED")
	}

	sb.WriteString("  " + StyleMeta.Render(fmt.Sprintf("%-14s", "USDC:")) + StyleValue.Render(m.Snapshot.USDC) + "\n")
	sb.WriteString("  " + StyleMeta.Render(fmt.Sprintf("%-14s", "sTSLA:")) + StyleValue.Render(m.Snapshot.STSLA) + "\n")
	sb.WriteString("  " + StyleMeta.Render(fmt.Sprintf("%-14s", "TSLA market:")) + market + "\n\n")

	cursor := StyleChain.Render("█")
	sb.WriteString("  " + StyleMeta.Render("spend USDC: ") + StyleValue.Render(m.SpendInput) + cursor + "\n")

	switch {
	case m.SpendInput == "":
		sb.WriteString("  " + StyleMeta.Render("type an amount to see the sTSLA estimate") + "\n")
	case m.Estimate == "":
		sb.WriteString("  " + StyleMeta.Render(fmt.Sprintf("%s estimating…", spin)) + "\n")
	default:
		sb.WriteString("  " + StyleMeta.Render("receive sTSLA: ") + StyleSuccess.Render("≈ "+m.Estimate) + "\n")
	}

	sb.WriteString("\n" + dashControls() + "\n")
	return sb.String()
}

func dashControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("[ 0-9 . ]"))
	sb.WriteString(StyleMeta.Render(" edit amount"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ]"))
	sb.WriteString(StyleMeta.Render(" quit"))
	return sb.String()
}
