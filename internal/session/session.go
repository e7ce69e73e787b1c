// Package session implements the Client Session of spec.md §4.7: a
// reader/writer task pair per accepted connection, speaking
// newline-delimited JSON.
package session

import (
	"bufio"
	"encoding/json"
	"net"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"

	"github.com/dizictl/dizi/internal/protocol"
)

var log = logging.Logger("session")

// Inbound is what a reader forwards to the Hub: a request tagged with
// its originating session, or a synthetic leave notice.
type Inbound struct {
	SessionID uuid.UUID
	Request   *protocol.Request
	Leave     bool
}

// Session is the Hub's handle on one connected client: its id and the
// channel its writer drains.
type Session struct {
	ID     uuid.UUID
	WriteC chan protocol.Event
	conn   net.Conn
}

// Accept wraps a freshly-accepted connection, spawning its reader and
// writer goroutines. inboundC receives everything the reader parses;
// the returned Session's WriteC is what the Hub broadcasts onto.
func Accept(conn net.Conn, inboundC chan<- Inbound) *Session {
	s := &Session{
		ID:     uuid.New(),
		WriteC: make(chan protocol.Event, 64),
		conn:   conn,
	}

	go s.readLoop(inboundC)
	go s.writeLoop()

	return s
}

func (s *Session) readLoop(inboundC chan<- Inbound) {
	sc := bufio.NewScanner(s.conn)
	sc.Buffer(make([]byte, 4096), 1<<20)
	for sc.Scan() {
		var req protocol.Request
		if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
			log.Debugw("malformed request, dropping session", "session", s.ID, "err", err)
			break
		}
		inboundC <- Inbound{SessionID: s.ID, Request: &req}
	}
	inboundC <- Inbound{SessionID: s.ID, Leave: true}
}

func (s *Session) writeLoop() {
	w := bufio.NewWriter(s.conn)
	for ev := range s.WriteC {
		b, err := json.Marshal(ev)
		if err != nil {
			log.Errorw("marshal broadcast failed", "session", s.ID, "err", err)
			continue
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			log.Debugw("write failed, closing session", "session", s.ID, "err", err)
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

func (s *Session) Close() error {
	close(s.WriteC)
	return s.conn.Close()
}
