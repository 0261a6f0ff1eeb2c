package server

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
	"github.com/kinesis-dev/kinesis/pkg/dom"
	"github.com/kinesis-dev/kinesis/pkg/kinesis"
	"github.com/kinesis-dev/kinesis/pkg/protocol"
)

// Session is one connected client: a document, its root component and the
// outbound mutation sequence.
type Session struct {
	id        string
	component string
	server    *Server
	conn      *websocket.Conn
	logger    *slog.Logger

	doc     *dom.Document
	root    kinesis.Mountable
	rootID  uint64
	seq     uint64
	pending []protocol.Mutation
	enc     *protocol.Encoder

	closeOnce sync.Once
}

func newSession(s *Server, conn *websocket.Conn, id, component string) *Session {
	return &Session{
		id:        id,
		component: component,
		server:    s,
		conn:      conn,
		logger:    s.logger.With("session", id, "root", component),
		enc:       protocol.NewEncoder(),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// run mounts the root component and serves events until the connection
// closes.
func (s *Session) run(factory kinesis.Factory) {
	defer s.closeConn(websocket.CloseNormalClosure, "")
	defer func() {
		if r := recover(); r != nil {
			s.recovered(r)
		}
	}()

	if err := s.mount(factory); err != nil {
		s.fail(err)
		return
	}
	defer s.detach()

	s.logger.Debug("session started")
	s.readLoop()
	s.logger.Debug("session ended")
}

func (s *Session) mount(factory kinesis.Factory) error {
	s.doc = dom.NewDocument()
	container, err := s.doc.CreateElement("div")
	if err != nil {
		return err
	}
	if err := s.doc.InsertBefore(s.doc.Body(), container, nil); err != nil {
		return err
	}
	s.rootID = container.(*dom.MemNode).ID()
	s.doc.OnMutation(func(m dom.Mutation) {
		s.pending = append(s.pending, protocol.FromDOM(m))
	})

	root, err := factory(s.doc,
		kinesis.WithName(s.component),
		kinesis.WithLogger(s.logger),
		kinesis.WithObserver(s.server.observers()),
	)
	if err != nil {
		return err
	}
	if err := root.Mount(dom.AtParent(container)); err != nil {
		return err
	}
	s.root = root

	hello := &protocol.Hello{
		Version:   protocol.Version,
		Session:   s.id,
		Component: s.component,
		Root:      s.rootID,
	}
	if err := s.write(protocol.NewFrame(protocol.FrameHello, protocol.EncodeHello(hello))); err != nil {
		return err
	}
	return s.flush()
}

func (s *Session) detach() {
	if s.root == nil {
		return
	}
	if err := s.root.Detach(true); err != nil {
		s.logger.Warn("detach failed", "error", err)
	}
}

func (s *Session) readLoop() {
	for {
		if s.server.config.ReadTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.server.config.ReadTimeout))
		}

		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.server.wsError("read")
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			s.fail(kerrors.New("K201").WithDetail("expected a binary message"))
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.fail(kerrors.New("K201").Wrap(err))
			return
		}

		switch frame.Type {
		case protocol.FrameEvent:
			if err := s.handleEvent(frame.Payload); err != nil {
				s.fail(err)
				return
			}
		default:
			s.fail(kerrors.New("K201").WithDetail("unexpected %s frame from client", frame.Type))
			return
		}
	}
}

func (s *Session) handleEvent(payload []byte) error {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		return kerrors.New("K201").WithDetail("decoding event").Wrap(err)
	}

	node, ok := s.doc.Lookup(ev.Node)
	if !ok {
		// The node may have been removed by an update the client hasn't
		// applied yet.
		s.logger.Debug("event for unknown node", "node", ev.Node, "event", ev.Name)
		return s.sendError(kerrors.New("K202").WithDetail("node %d", ev.Node), false)
	}

	n := s.doc.Dispatch(node, ev.Name)
	s.logger.Debug("event dispatched", "node", ev.Node, "event", ev.Name, "handlers", n)
	return s.flush()
}

// flush sends the pending mutations as Mutations frames, splitting batches
// that would exceed the frame payload limit.
func (s *Session) flush() error {
	muts := s.pending
	s.pending = nil
	for {
		n := s.fit(muts)
		s.seq++
		s.enc.Reset()
		protocol.EncodeBatchTo(s.enc, &protocol.Batch{Seq: s.seq, Mutations: muts[:n]})
		payload := append([]byte(nil), s.enc.Bytes()...)
		if err := s.write(protocol.NewFrame(protocol.FrameMutations, payload)); err != nil {
			return err
		}
		if s.server.metrics != nil {
			s.server.metrics.MutationsSent(n)
		}
		muts = muts[n:]
		if len(muts) == 0 {
			return nil
		}
	}
}

// fit returns how many leading mutations encode within MaxPayloadSize.
func (s *Session) fit(muts []protocol.Mutation) int {
	n := len(muts)
	for n > 1 {
		s.enc.Reset()
		protocol.EncodeBatchTo(s.enc, &protocol.Batch{Seq: s.seq + 1, Mutations: muts[:n]})
		if s.enc.Len() <= protocol.MaxPayloadSize {
			break
		}
		n /= 2
	}
	return n
}

func (s *Session) write(frame *protocol.Frame) error {
	if len(frame.Payload) > protocol.MaxPayloadSize {
		return protocol.ErrFrameTooLarge
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.server.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, frame.Encode()); err != nil {
		s.server.wsError("write")
		return err
	}
	return nil
}

func (s *Session) sendError(err *kerrors.KinesisError, fatal bool) error {
	msg := &protocol.ErrorMessage{
		Code:    err.Code,
		Message: err.Error(),
		Fatal:   fatal,
	}
	return s.write(protocol.NewFrame(protocol.FrameError, protocol.EncodeErrorMessage(msg)))
}

// fail reports err to the client as a fatal Error frame.
func (s *Session) fail(err error) {
	ke := kerrors.FromError(err, "K201")
	s.logger.Error("session failed", "error", err, "code", ke.Code)
	if werr := s.sendError(ke, true); werr != nil {
		s.logger.Debug("error frame not delivered", "error", werr)
	}
	s.closeConn(websocket.CloseInternalServerErr, ke.Code)
}

func (s *Session) recovered(r any) {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", r)
	}
	s.logger.Error("session panicked", "panic", r)
	s.fail(err)
}

func (s *Session) closeConn(code int, reason string) {
	s.closeOnce.Do(func() {
		deadline := time.Now().Add(s.server.config.WriteTimeout)
		_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		_ = s.conn.Close()
	})
}
