package cli

import (
	"testing"

	"gearhub-client/internal/checkout"
	"gearhub-client/internal/notify"
	"gearhub-client/internal/resources"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWatchModelCursorMoves(t *testing.T) {
	m := watchModel{items: []resources.Notification{{ID: 1}, {ID: 2}, {ID: 3}}}

	next, _ := m.Update(key("j"))
	m = next.(watchModel)
	assert.Equal(t, 1, m.cursor)

	next, _ = m.Update(key("j"))
	next, _ = next.(watchModel).Update(key("j"))
	m = next.(watchModel)
	assert.Equal(t, 2, m.cursor, "cursor must stop at the last item")

	next, _ = m.Update(key("k"))
	m = next.(watchModel)
	assert.Equal(t, 1, m.cursor)
}

func TestWatchModelClampsCursorWhenListShrinks(t *testing.T) {
	sync := notify.New(nil, zap.NewNop())
	m := watchModel{
		sync:   sync,
		items:  []resources.Notification{{ID: 1}, {ID: 2}, {ID: 3}},
		cursor: 2,
	}

	// The sync view is empty, so the event leaves nothing to point at.
	next, _ := m.Update(syncEventMsg(notify.Event{Type: notify.EventPatch}))
	m = next.(watchModel)
	assert.Empty(t, m.items)
	assert.Zero(t, m.cursor)
}

func TestWatchModelSelected(t *testing.T) {
	m := watchModel{items: []resources.Notification{{ID: 7}}}

	n, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, int64(7), n.ID)

	_, ok = watchModel{}.selected()
	assert.False(t, ok)
}

func TestCheckoutModelQuitsOnDone(t *testing.T) {
	m := newCheckoutModel()

	next, _ := m.Update(stateMsg(checkout.StatePolling))
	m = next.(checkoutModel)
	assert.Equal(t, checkout.StatePolling, m.state)

	next, _ = m.Update(gatewayOutputMsg("open https://rzp.io/i/abc\n"))
	m = next.(checkoutModel)
	assert.Contains(t, m.gateway, "rzp.io")

	next, cmd := m.Update(doneMsg{outcome: checkout.Outcome{State: checkout.StateSuccess}})
	m = next.(checkoutModel)
	require.NotNil(t, m.outcome)
	assert.Equal(t, checkout.StateSuccess, m.outcome.State)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestStateLabel(t *testing.T) {
	assert.Equal(t, "Creating subscription...", stateLabel(checkout.StateCreating))
	assert.Equal(t, "Waiting for payment confirmation...", stateLabel(checkout.StatePolling))
	assert.Equal(t, string(checkout.StateSuccess), stateLabel(checkout.StateSuccess))
}
