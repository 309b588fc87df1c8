package cli

import (
	"fmt"
	"strconv"
	"strings"

	"gearhub-client/internal/checkout"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <plan-id>",
	Short: "Subscribe to a plan through the payment gateway",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		planID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid plan id %q", args[0])
		}

		model := newCheckoutModel()
		p := tea.NewProgram(model)

		gateway := &checkout.HostedGateway{
			Out:   programWriter{p: p},
			KeyID: app.Cfg.RazorpayKeyID,
		}
		poller := checkout.New(app.Resources.Subscriptions, app.Session, app.Scratch,
			gateway, app.Cfg.PollInterval, app.Cfg.PollTimeout, app.Logger)
		poller.OnState(func(s checkout.State) {
			p.Send(stateMsg(s))
		})

		go func() {
			outcome, err := poller.Run(cmd.Context(), planID)
			p.Send(doneMsg{outcome: outcome, err: err})
		}()

		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}

		m := final.(checkoutModel)
		switch {
		case m.outcome == nil:
			return fmt.Errorf("checkout aborted")
		case m.outcome.State == checkout.StateSuccess:
			fmt.Println(okStyle.Render(fmt.Sprintf("Subscription %d is %s", m.outcome.SubscriptionID, m.outcome.Status)))
			return nil
		case m.outcome.State == checkout.StateTimeout:
			return fmt.Errorf("payment not confirmed in time")
		default:
			if m.err != nil {
				return fmt.Errorf("payment failed: %w", m.err)
			}
			return fmt.Errorf("payment failed")
		}
	},
}

func init() {
	RootCmd.AddCommand(subscribeCmd)
}

type stateMsg checkout.State

type doneMsg struct {
	outcome checkout.Outcome
	err     error
}

type gatewayOutputMsg string

// programWriter forwards the gateway's instructions into the TUI.
type programWriter struct{ p *tea.Program }

func (w programWriter) Write(b []byte) (int, error) {
	w.p.Send(gatewayOutputMsg(b))
	return len(b), nil
}

type checkoutModel struct {
	spinner spinner.Model
	state   checkout.State
	gateway string
	outcome *checkout.Outcome
	err     error
}

func newCheckoutModel() checkoutModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return checkoutModel{spinner: sp, state: checkout.StateIdle}
}

func (m checkoutModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m checkoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case stateMsg:
		m.state = checkout.State(msg)
		return m, nil
	case gatewayOutputMsg:
		m.gateway += string(msg)
		return m, nil
	case doneMsg:
		outcome := msg.outcome
		m.outcome = &outcome
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m checkoutModel) View() string {
	if m.outcome != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(stateLabel(m.state))
	b.WriteString("\n")
	if m.gateway != "" {
		b.WriteString("\n")
		b.WriteString(m.gateway)
	}
	b.WriteString(dimStyle.Render("\nctrl+c to abort\n"))
	return b.String()
}

func stateLabel(s checkout.State) string {
	switch s {
	case checkout.StateCreating:
		return "Creating subscription..."
	case checkout.StateAwaitingGateway:
		return "Opening payment gateway..."
	case checkout.StatePolling:
		return "Waiting for payment confirmation..."
	default:
		return string(s)
	}
}
