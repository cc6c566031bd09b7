package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/nodecanvas/pkg/document"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/interact"
	"github.com/matzehuels/nodecanvas/pkg/observability"
	"github.com/matzehuels/nodecanvas/pkg/session"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next message from the peer
	readWait = 10 * time.Minute

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// Message types exchanged on the websocket.
const (
	MsgLayout       = "layout"        // server -> client: one instance laid out
	MsgDrag         = "drag"          // client -> server: one drag event
	MsgUpdate       = "update"        // server -> client: effect of a drag event
	MsgInstance     = "instance"      // client -> server: show the instance at index
	MsgSearch       = "search"        // client -> server: store the matching instances as a new layout
	MsgClearSearch  = "clear_search"  // client -> server: go back to the searched layout
	MsgCorpusLength = "corpus_length" // server -> client: size of the layout about to be routed to
	MsgRoute        = "route"         // server -> client: reconnect to the given layout
	MsgError        = "error"         // server -> client: rejected message
)

// inbound is a client message. Drag events carry an interact.Event,
// instance requests an index and searches their filters.
type inbound struct {
	Type string `json:"type"`
	interact.Event
	Index   int               `json:"index"`
	Filters []document.Filter `json:"filters"`
}

type layoutMessage struct {
	Type         string            `json:"type"`
	Layout       string            `json:"layout,omitempty"`
	BasedOn      string            `json:"based_on,omitempty"`
	Instance     int               `json:"instance"`
	CorpusLength int               `json:"corpus_length"`
	SVG          string            `json:"svg"`
	Snapshot     *session.Snapshot `json:"snapshot"`
}

type updateMessage struct {
	Type string `json:"type"`
	*session.Update
}

type corpusLengthMessage struct {
	Type   string `json:"type"`
	Length int    `json:"length"`
}

type routeMessage struct {
	Type   string `json:"type"`
	Layout string `json:"layout"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wsConn is one websocket client: the layout it shows and the session of
// the instance on screen.
type wsConn struct {
	server *Server
	logger *log.Logger
	layout *store.Layout
	sess   *session.Session
}

// handleWebsocket opens an interactive session. The layout to show is given
// by the id query parameter; without one the standard document is used.
// The first instance is shown until the client asks for another.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	l, err := s.loadLayout(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	c := &wsConn{server: s, logger: s.logger.With("layout", id), layout: l}
	first, err := c.show(r.Context(), 0)
	if err != nil {
		s.respondError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Close hooks run after the handler's context is done.
	ctx := context.WithoutCancel(r.Context())
	opened := time.Now()
	observability.Drag().OnSessionOpen(ctx, id)
	defer func() {
		observability.Drag().OnSessionClose(ctx, id, time.Since(opened))
	}()

	c.logger.Debug("session opened", "instances", l.Len(), "nodes", c.sess.Len())
	if err := s.write(conn, first); err != nil {
		c.logger.Warn("send layout failed", "error", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			c.logger.Debug("session closed")
			return
		}

		for _, reply := range c.handle(ctx, data) {
			if err := s.write(conn, reply); err != nil {
				c.logger.Warn("websocket write error", "error", err)
				return
			}
		}
	}
}

// handle applies one client message and returns the replies in send order.
func (c *wsConn) handle(ctx context.Context, data []byte) []any {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return []any{errorReply(errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed message"))}
	}

	var replies []any
	var err error
	switch msg.Type {
	case MsgDrag:
		var u *session.Update
		if u, err = c.sess.Apply(ctx, msg.Event); err == nil {
			replies = []any{updateMessage{Type: MsgUpdate, Update: u}}
		}
	case MsgInstance:
		var m *layoutMessage
		if m, err = c.show(ctx, msg.Index); err == nil {
			replies = []any{m}
		}
	case MsgSearch:
		replies, err = c.search(ctx, msg.Filters)
	case MsgClearSearch:
		replies, err = c.clearSearch(ctx)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", msg.Type)
	}
	if err != nil {
		c.logger.Debug("message rejected", "type", msg.Type, "error", err)
		return []any{errorReply(err)}
	}
	return replies
}

// show lays out the instance at index and makes it current. On error the
// current instance stays.
func (c *wsConn) show(ctx context.Context, index int) (*layoutMessage, error) {
	doc, err := c.layout.Instance(index)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(ctx, doc, session.Options{LayoutID: c.layout.ID, Logger: c.server.logger})
	if err != nil {
		return nil, err
	}
	c.sess = sess
	return &layoutMessage{
		Type:         MsgLayout,
		Layout:       c.layout.ID,
		BasedOn:      c.layout.BasedOn,
		Instance:     index,
		CorpusLength: c.layout.Len(),
		SVG:          string(sess.SVG()),
		Snapshot:     sess.Snapshot(),
	}, nil
}

// search filters the base corpus and stores the matches as a new layout
// based on it. A search result is never the base of another search: its own
// base is searched instead.
func (c *wsConn) search(ctx context.Context, filters []document.Filter) ([]any, error) {
	st := c.server.store
	if st == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "layout storage is disabled")
	}
	base := c.layout
	if base.BasedOn != "" {
		var err error
		if base, err = st.Get(ctx, base.BasedOn); err != nil {
			return nil, err
		}
	}

	hits, err := document.Search(base.Instances, filters)
	c.server.metrics.observeSearch(len(hits), err)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no instance matches the search")
	}

	result := store.NewLayout(store.NewLayoutID(), hits...)
	result.BasedOn = base.ID
	result.Filters = filters
	if err := st.Put(ctx, result); err != nil {
		return nil, err
	}
	c.logger.Info("search stored", "result", result.ID, "based_on", base.ID, "instances", len(hits))
	return []any{
		corpusLengthMessage{Type: MsgCorpusLength, Length: len(hits)},
		routeMessage{Type: MsgRoute, Layout: result.ID},
	}, nil
}

// clearSearch routes back to the layout a search result was taken from. A
// layout that is not a search result routes to itself.
func (c *wsConn) clearSearch(ctx context.Context) ([]any, error) {
	if c.layout.BasedOn == "" {
		return []any{routeMessage{Type: MsgRoute, Layout: c.layout.ID}}, nil
	}
	base, err := c.server.loadLayout(ctx, c.layout.BasedOn)
	if err != nil {
		return nil, err
	}
	return []any{
		corpusLengthMessage{Type: MsgCorpusLength, Length: base.Len()},
		routeMessage{Type: MsgRoute, Layout: base.ID},
	}, nil
}

func errorReply(err error) errorMessage {
	return errorMessage{Type: MsgError, Code: string(errors.GetCode(err)), Message: errors.UserMessage(err)}
}

func (s *Server) write(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
