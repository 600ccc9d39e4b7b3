package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Команды клиента
const (
	CmdJoinVolunteers  = "join-volunteers"
	CmdLeaveVolunteers = "leave-volunteers"
	CmdJoinVolunteer   = "join-volunteer"
	CmdLeaveVolunteer  = "leave-volunteer"

	eventJoined    = "room-joined"
	eventRoomError = "room-error"
)

var ErrRoomDenied = errors.New("room access denied")

// RoomGuard решает, может ли вызывающий войти в комнату
type RoomGuard interface {
	CanJoin(ctx context.Context, caller models.Caller, room string) error
}

// OpenRooms пускает в любую комнату
type OpenRooms struct{}

func (OpenRooms) CanJoin(context.Context, models.Caller, string) error { return nil }

type command struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Server обслуживает websocket-подключения поверх хаба
type Server struct {
	hub    *Hub
	guard  RoomGuard
	logger *logrus.Logger
}

func NewServer(hub *Hub, guard RoomGuard, logger *logrus.Logger) *Server {
	if guard == nil {
		guard = OpenRooms{}
	}
	return &Server{hub: hub, guard: guard, logger: logger}
}

// Serve регистрирует сессию и блокируется до закрытия соединения
func (s *Server) Serve(ctx context.Context, conn *websocket.Conn, caller models.Caller) {
	session := s.hub.Register(caller)
	log := s.logger.WithFields(logrus.Fields{
		"component":  "realtime",
		"session_id": session.ID,
		"user_id":    caller.ID,
		"role":       caller.Role,
	})
	log.Info("Realtime session connected")

	done := make(chan struct{})
	go func() {
		s.writePump(conn, session)
		close(done)
	}()
	s.readPump(ctx, conn, session, log)
	s.hub.Unregister(session)
	<-done
	log.Info("Realtime session disconnected")
}

func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, session *Session, log *logrus.Entry) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("Realtime session closed unexpectedly")
			}
			return
		}
		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			s.reply(session, eventRoomError, map[string]string{"message": "malformed command"})
			continue
		}
		s.handle(ctx, session, cmd, log)
	}
}

func (s *Server) handle(ctx context.Context, session *Session, cmd command, log *logrus.Entry) {
	var room string
	switch cmd.Event {
	case CmdJoinVolunteers, CmdLeaveVolunteers:
		room = RoomVolunteers
	case CmdJoinVolunteer, CmdLeaveVolunteer:
		var id string
		if err := json.Unmarshal(cmd.Data, &id); err != nil || id == "" {
			s.reply(session, eventRoomError, map[string]string{"message": "volunteer id is required"})
			return
		}
		room = volunteerRoomPrefix + id
	default:
		s.reply(session, eventRoomError, map[string]string{"message": "unknown command " + cmd.Event})
		return
	}

	if cmd.Event == CmdLeaveVolunteers || cmd.Event == CmdLeaveVolunteer {
		s.hub.LeaveRoom(session.ID, room)
		return
	}

	if err := s.guard.CanJoin(ctx, session.Caller, room); err != nil {
		log.WithError(err).WithField("room", room).Warn("Room join denied")
		s.reply(session, eventRoomError, map[string]string{"room": room, "message": ErrRoomDenied.Error()})
		return
	}
	if err := s.hub.JoinRoom(session.ID, room); err != nil {
		return
	}
	log.WithField("room", room).Debug("Session joined room")
	s.reply(session, eventJoined, map[string]string{"room": room})
}

// reply отправляет ответ только этой сессии, без блокировки
func (s *Server) reply(session *Session, event string, payload any) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		return
	}
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()
	if _, ok := s.hub.sessions[session.ID]; !ok {
		return
	}
	select {
	case session.send <- frame:
	default:
	}
}

func (s *Server) writePump(conn *websocket.Conn, session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-session.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
