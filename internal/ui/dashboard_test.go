package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	if s == "backspace" {
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDashboardSnapshotRendered(t *testing.T) {
	m := DashboardModel{Account: "0x1234567890abcdef1234567890abcdef12345678", Network: "Mainnet Fork"}

	next, _ := m.Update(SnapshotMsg{USDC: "250.00", STSLA: "0.41", MarketOpen: true, Block: 1234})
	view := next.View()

	assert.Contains(t, view, "250.00")
	assert.Contains(t, view, "0.41")
	assert.Contains(t, view, "OPEN")
	assert.Contains(t, view, "#1234")
	assert.Contains(t, view, "Mainnet Fork")
}

func TestDashboardMarketClosed(t *testing.T) {
	m := DashboardModel{}
	next, _ := m.Update(SnapshotMsg{MarketOpen: false})
	assert.Contains(t, next.View(), "CLOSED")
}

func TestDashboardSpendInputEditing(t *testing.T) {
	var queried []string
	m := DashboardModel{OnSpendChange: func(s string) { queried = append(queried, s) }}

	next, _ := m.Update(key("2"))
	next, _ = next.Update(key("5"))
	next, _ = next.Update(key("."))
	next, _ = next.Update(key("5"))

	dm := next.(DashboardModel)
	assert.Equal(t, "25.5", dm.SpendInput)
	assert.Equal(t, []string{"2", "25", "25.", "25.5"}, queried)

	next, _ = next.Update(key("backspace"))
	dm = next.(DashboardModel)
	assert.Equal(t, "25.", dm.SpendInput)
}

func TestDashboardIgnoresNonNumericKeys(t *testing.T) {
	m := DashboardModel{}
	next, _ := m.Update(key("x"))
	assert.Empty(t, next.(DashboardModel).SpendInput)
}

func TestDashboardEstimateMatchesCurrentInput(t *testing.T) {
	m := DashboardModel{}
	next, _ := m.Update(key("3"))
	next, _ = next.Update(key("0"))

	// A stale estimate for an older input is dropped.
	next, _ = next.Update(EstimateMsg{Spend: "3", Return: "0.01"})
	assert.Empty(t, next.(DashboardModel).Estimate)

	next, _ = next.Update(EstimateMsg{Spend: "30", Return: "0.12"})
	dm := next.(DashboardModel)
	require.Equal(t, "0.12", dm.Estimate)
	assert.Contains(t, dm.View(), "0.12")
}

func TestDashboardQuitKey(t *testing.T) {
	m := DashboardModel{}
	next, cmd := m.Update(key("q"))
	assert.True(t, next.(DashboardModel).Quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, next.View())
}

func TestDashboardErrShown(t *testing.T) {
	m := DashboardModel{}
	next, _ := m.Update(DashboardErrMsg{Err: "rpc unreachable"})
	assert.Contains(t, next.View(), "rpc unreachable")
}

func TestDashboardSessionUpdate(t *testing.T) {
	m := DashboardModel{Account: "0xaaa", Network: "Mainnet Fork"}
	next, _ := m.Update(SessionMsg{Account: "0xbbb", Network: "Mainnet Fork"})
	assert.Equal(t, "0xbbb", next.(DashboardModel).Account)
}
