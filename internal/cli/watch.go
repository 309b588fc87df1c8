package cli

import (
	"context"
	"fmt"
	"strings"

	"gearhub-client/internal/notify"
	"gearhub-client/internal/resources"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow notifications live over the push channel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}

		sync := notify.New(app.Resources.Notifications, app.Logger)
		defer sync.Close()

		user := app.Session.User()
		if err := sync.Connect(cmd.Context(), app.Cfg.SocketURL, app.Session.Token(), user.ID); err != nil {
			return fmt.Errorf("connecting push channel: %w", err)
		}

		p := tea.NewProgram(newWatchModel(sync), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(watchCmd)
}

type syncEventMsg notify.Event

type actionDoneMsg struct{ err error }

// watchModel renders the live unread view kept by notify.Sync.
type watchModel struct {
	sync   *notify.Sync
	items  []resources.Notification
	count  int
	cursor int
	status string
}

func newWatchModel(s *notify.Sync) watchModel {
	items, count := s.Unread()
	return watchModel{sync: s, items: items, count: count}
}

func waitForEvent(s *notify.Sync) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-s.Events()
		if !ok {
			return nil
		}
		return syncEventMsg(e)
	}
}

func (m watchModel) Init() tea.Cmd {
	return waitForEvent(m.sync)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			if n, ok := m.selected(); ok {
				return m, m.action(func(ctx context.Context) error {
					return m.sync.MarkAsRead(ctx, n.ID)
				})
			}
		case "d":
			if n, ok := m.selected(); ok {
				return m, m.action(func(ctx context.Context) error {
					return m.sync.Delete(ctx, n.ID)
				})
			}
		case "a":
			return m, m.action(m.sync.MarkAllAsRead)
		}

	case syncEventMsg:
		m.items, m.count = m.sync.Unread()
		if m.cursor >= len(m.items) {
			m.cursor = len(m.items) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		if msg.Type == notify.EventPush && msg.Notification != nil {
			m.status = "new: " + msg.Notification.Title
		}
		return m, waitForEvent(m.sync)

	case actionDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = ""
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Notifications"))
	b.WriteString(" ")
	b.WriteString(unreadStyle.Render(fmt.Sprintf("%d unread", m.count)))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("nothing unread") + "\n")
	}
	for i, n := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-4d %s %s\n", cursor, n.ID, n.Title,
			dimStyle.Render(n.CreatedAt.Format("15:04:05"))))
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(dimStyle.Render("j/k move · r read · a read all · d delete · q quit"))
	return b.String()
}

func (m watchModel) selected() (resources.Notification, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return resources.Notification{}, false
	}
	return m.items[m.cursor], true
}

func (m watchModel) action(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: fn(context.Background())}
	}
}
