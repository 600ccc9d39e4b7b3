// Package realtime - push-доставка событий подключенным сессиям.
// Доставка at-most-once: если у сессии переполнен буфер или сессий нет,
// кадр отбрасывается. Клиенты компенсируют это периодическим перечитыванием.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/metrics"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// Broadcast - адресация всем подключенным сессиям
	Broadcast = ""
	// RoomVolunteers - общая комната волонтеров
	RoomVolunteers = "volunteers"

	volunteerRoomPrefix = "volunteer-"
)

var ErrUnknownSession = errors.New("unknown session")

// VolunteerRoom - персональная комната волонтера по ID профиля
func VolunteerRoom(profileID uuid.UUID) string {
	return volunteerRoomPrefix + profileID.String()
}

// ParseVolunteerRoom извлекает ID профиля из имени персональной комнаты
func ParseVolunteerRoom(room string) (uuid.UUID, bool) {
	raw, ok := strings.CutPrefix(room, volunteerRoomPrefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Frame - кадр, который уходит клиенту
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// EncodeFrame сериализует событие в кадр
func EncodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// Session - одно подключение клиента
type Session struct {
	ID     string
	Caller models.Caller
	send   chan []byte
	rooms  map[string]struct{}
}

// Send - канал исходящих кадров; закрывается при Unregister
func (s *Session) Send() <-chan []byte { return s.send }

// Hub хранит сессии и членство в комнатах
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	rooms    map[string]map[string]*Session
	buffer   int
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

func NewHub(buffer int, m *metrics.Metrics, logger *logrus.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[string]*Session),
		buffer:   buffer,
		metrics:  m,
		logger:   logger,
	}
}

// Register создает сессию для подключившегося клиента
func (h *Hub) Register(caller models.Caller) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		Caller: caller,
		send:   make(chan []byte, h.buffer),
		rooms:  make(map[string]struct{}),
	}
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	h.metrics.SessionOpened()
	return s
}

// Unregister убирает сессию из всех комнат и закрывает ее канал
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s.ID)
	for room := range s.rooms {
		h.removeFromRoom(room, s.ID)
	}
	close(s.send)
	h.mu.Unlock()
	h.metrics.SessionClosed()
}

func (h *Hub) JoinRoom(sessionID, room string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[sessionID]
	if !ok {
		return ErrUnknownSession
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Session)
		h.rooms[room] = members
	}
	members[sessionID] = s
	s.rooms[room] = struct{}{}
	return nil
}

func (h *Hub) LeaveRoom(sessionID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[sessionID]; ok {
		delete(s.rooms, room)
	}
	h.removeFromRoom(room, sessionID)
}

// removeFromRoom вызывается под h.mu
func (h *Hub) removeFromRoom(room, sessionID string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Deliver раздает готовый кадр комнате или всем (room == Broadcast).
// Не блокируется: сессия с полным буфером пропускает кадр.
// Возвращает число сессий, получивших кадр.
func (h *Hub) Deliver(room string, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.sessions
	if room != Broadcast {
		targets = h.rooms[room]
	}
	if len(targets) == 0 {
		h.metrics.EventDropped("no_sessions")
		return 0
	}

	delivered := 0
	for _, s := range targets {
		select {
		case s.send <- frame:
			delivered++
		default:
			h.metrics.EventDropped("buffer_full")
			h.logger.WithFields(logrus.Fields{
				"component":  "realtime",
				"session_id": s.ID,
				"room":       room,
			}).Warn("Session send buffer is full, dropping frame")
		}
	}
	return delivered
}

// SessionCount - число подключенных сессий
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// RoomSize - число сессий в комнате
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
