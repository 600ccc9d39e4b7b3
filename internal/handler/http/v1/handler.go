package v1

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shenikar/crisis_connect/internal/config"
	"github.com/shenikar/crisis_connect/internal/realtime"
	"github.com/shenikar/crisis_connect/internal/service"
	"github.com/sirupsen/logrus"
)

// SessionCounter сообщает число открытых realtime-сессий
type SessionCounter interface {
	SessionCount() int
}

type Handler struct {
	incidentService  service.IncidentService
	requestService   service.HelpRequestService
	taskService      service.TaskService
	volunteerService service.VolunteerService
	alertService     service.AlertService
	resourceService  service.ResourceService
	smsService       service.SMSService
	realtime         *realtime.Server
	sessions         SessionCounter
	upgrader         websocket.Upgrader
	logger           *logrus.Logger
	cfg              *config.Config
}

// HandlerDeps - сервисы, которые обслуживает HTTP API.
// Realtime и Sessions могут быть nil: тогда /ws отвечает 503.
type HandlerDeps struct {
	Incidents  service.IncidentService
	Requests   service.HelpRequestService
	Tasks      service.TaskService
	Volunteers service.VolunteerService
	Alerts     service.AlertService
	Resources  service.ResourceService
	SMS        service.SMSService
	Realtime   *realtime.Server
	Sessions   SessionCounter
	Logger     *logrus.Logger
	Config     *config.Config
}

func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		incidentService:  deps.Incidents,
		requestService:   deps.Requests,
		taskService:      deps.Tasks,
		volunteerService: deps.Volunteers,
		alertService:     deps.Alerts,
		resourceService:  deps.Resources,
		smsService:       deps.SMS,
		realtime:         deps.Realtime,
		sessions:         deps.Sessions,
		logger:           deps.Logger,
		cfg:              deps.Config,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin - пустой список разрешает любой источник
func (h *Handler) checkOrigin(r *http.Request) bool {
	allowed := h.cfg.WSAllowedOrigins
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return true
	}
	return slices.Contains(allowed, r.Header.Get("Origin"))
}

func (h *Handler) log(c *gin.Context, method string) *logrus.Entry {
	caller := callerFrom(c)
	return h.logger.WithFields(logrus.Fields{
		"method":  method,
		"user_id": caller.ID,
		"role":    caller.Role,
	})
}

// paramID разбирает UUID из параметра пути; при ошибке ответ уже записан
func paramID(c *gin.Context, log *logrus.Entry, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, log, err, "invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	if h.sessions != nil {
		resp.Sessions = h.sessions.SessionCount()
	}
	c.JSON(http.StatusOK, resp)
}
