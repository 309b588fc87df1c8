package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"gearhub-client/internal/resources"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// The only event the server pushes besides connection plumbing.
	eventNewNotification = "newNotification"
	eventJoin            = "join"
)

type EventType string

const (
	// EventPush: a notification arrived over the socket and was
	// applied optimistically.
	EventPush EventType = "push"
	// EventPatch: a local mutation (read/delete) patched the view.
	EventPatch EventType = "patch"
	// EventRefresh: the authoritative refetch overwrote local state.
	EventRefresh EventType = "refresh"
)

// Event is emitted to observers (the watch TUI) whenever the local
// unread view changes.
type Event struct {
	Type         EventType
	Notification *resources.Notification
	Unread       int
}

type wireMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Sync keeps the unread-notification view eventually consistent
// between the cached server state and the push channel. Push events
// and local mutations patch the view optimistically; a reconciling
// refetch then overwrites it with whatever the server says, which can
// briefly revert an optimistic change. Observers must tolerate that
// flicker.
type Sync struct {
	notifications *resources.Notifications
	logger        *zap.Logger

	mu     sync.Mutex
	unread []resources.Notification
	count  int

	conn      *websocket.Conn
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func New(n *resources.Notifications, logger *zap.Logger) *Sync {
	return &Sync{
		notifications: n,
		logger:        logger,
		events:        make(chan Event, 64),
		done:          make(chan struct{}),
	}
}

// Connect dials the push channel, joins the user's room, and starts
// the read and ping pumps. One connection per session lifetime; no
// reconnection is attempted here.
func (s *Sync) Connect(ctx context.Context, socketURL, token string, userID int64) error {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, socketURL, header)
	if err != nil {
		return err
	}

	join := wireMessage{Event: eventJoin}
	join.Data, _ = json.Marshal(map[string]int64{"user_id": userID})
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(join); err != nil {
		conn.Close()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.readPump(conn)
	go s.pingPump(conn)

	// Seed the view with server-confirmed state.
	go func() {
		if err := s.Refresh(context.Background()); err != nil {
			s.logger.Warn("initial notification refresh failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Sync) readPump(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("push channel closed", zap.Error(err))
			}
			return
		}

		var msg wireMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.logger.Warn("unparseable push message", zap.Error(err))
			continue
		}
		if msg.Event != eventNewNotification {
			continue
		}

		var n resources.Notification
		if err := json.Unmarshal(msg.Data, &n); err != nil {
			s.logger.Warn("unparseable notification payload", zap.Error(err))
			continue
		}
		s.handlePush(n)
	}
}

func (s *Sync) pingPump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// handlePush applies the optimistic patch for a pushed notification
// and schedules the reconciling refetch.
func (s *Sync) handlePush(n resources.Notification) {
	s.mu.Lock()
	s.unread = append([]resources.Notification{n}, s.unread...)
	s.count++
	count := s.count
	s.mu.Unlock()

	s.emit(Event{Type: EventPush, Notification: &n, Unread: count})

	go func() {
		if err := s.Refresh(context.Background()); err != nil {
			s.logger.Warn("reconciling refresh failed", zap.Error(err))
		}
	}()
}

// Refresh refetches the authoritative unread view and overwrites the
// local one, optimistic patches included.
func (s *Sync) Refresh(ctx context.Context) error {
	s.notifications.Invalidate()
	items, err := s.notifications.Unread(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.unread = items
	s.count = len(items)
	count := s.count
	s.mu.Unlock()

	s.emit(Event{Type: EventRefresh, Unread: count})
	return nil
}

// MarkAsRead confirms the mutation server-side first, then patches the
// local view.
func (s *Sync) MarkAsRead(ctx context.Context, id int64) error {
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.removeLocked(id) {
		s.count--
	}
	count := s.count
	s.mu.Unlock()

	s.emit(Event{Type: EventPatch, Unread: count})
	s.scheduleRefresh()
	return nil
}

// MarkAllAsRead clears the unread view after the backend confirms.
func (s *Sync) MarkAllAsRead(ctx context.Context) error {
	if err := s.notifications.MarkAllRead(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.unread = nil
	s.count = 0
	s.mu.Unlock()

	s.emit(Event{Type: EventPatch, Unread: 0})
	s.scheduleRefresh()
	return nil
}

// Delete removes a notification; the counter drops only if it was
// unread locally.
func (s *Sync) Delete(ctx context.Context, id int64) error {
	if err := s.notifications.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.removeLocked(id) {
		s.count--
	}
	count := s.count
	s.mu.Unlock()

	s.emit(Event{Type: EventPatch, Unread: count})
	s.scheduleRefresh()
	return nil
}

// Unread returns a snapshot of the local view.
func (s *Sync) Unread() ([]resources.Notification, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]resources.Notification, len(s.unread))
	copy(out, s.unread)
	return out, s.count
}

// UnreadCount returns the local unread counter.
func (s *Sync) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Events is the observer channel; slow consumers lose events rather
// than blocking the pumps.
func (s *Sync) Events() <-chan Event {
	return s.events
}

// Close tears the push connection down. Safe to call more than once.
func (s *Sync) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn != nil {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			conn.Close()
		}
	})
}

func (s *Sync) removeLocked(id int64) bool {
	for i, n := range s.unread {
		if n.ID == id {
			s.unread = append(s.unread[:i], s.unread[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Sync) scheduleRefresh() {
	go func() {
		if err := s.Refresh(context.Background()); err != nil {
			s.logger.Warn("reconciling refresh failed", zap.Error(err))
		}
	}()
}

func (s *Sync) emit(e Event) {
	select {
	case s.events <- e:
	default:
	}
}
