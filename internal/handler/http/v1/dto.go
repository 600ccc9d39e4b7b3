package v1

import (
	"github.com/shenikar/crisis_connect/internal/models"
)

// IncidentListQuery - параметры выборки инцидентов
type IncidentListQuery struct {
	Search      string `form:"search"`
	Type        string `form:"type"`
	Status      string `form:"status"`
	MinSeverity string `form:"minSeverity"`
	StartDate   string `form:"startDate"`
	EndDate     string `form:"endDate"`
}

// RequestListQuery - параметры выборки заявок
type RequestListQuery struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	Priority  string `form:"priority"`
	Status    string `form:"status"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// NearbyQuery - центр и радиус поиска заявок рядом
type NearbyQuery struct {
	Latitude  *float64 `form:"latitude"`
	Longitude *float64 `form:"longitude"`
	Radius    *float64 `form:"radius"`
}

// TaskListQuery - параметры выборки задач
type TaskListQuery struct {
	VolunteerID string `form:"volunteerId"`
	IncidentID  string `form:"incidentId"`
	Status      string `form:"status"`
}

// VolunteerListQuery - параметры выборки профилей
type VolunteerListQuery struct {
	ApplicationStatus string `form:"applicationStatus"`
	Skill             string `form:"skill"`
	Available         string `form:"available"`
}

// LocationRequest - координаты в теле запроса
// @Description Координаты и адрес
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address,omitempty"`
}

// UpdateHelpRequestRequest DTO для частичного обновления заявки
// @Description Отсутствующее поле не меняется
type UpdateHelpRequestRequest struct {
	Title       *string                 `json:"title,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Location    *LocationRequest        `json:"location,omitempty"`
	Category    *models.RequestCategory `json:"category,omitempty"`
	Priority    *models.RequestPriority `json:"priority,omitempty"`
	Status      *models.RequestStatus   `json:"status,omitempty"`
	IsVerified  *bool                   `json:"is_verified,omitempty"`
}

// AddNoteRequest DTO для заметки к заявке
// @Description Текст заметки
type AddNoteRequest struct {
	Text string `json:"text"`
}

// TaskStatusRequest DTO ответа волонтера: 2 - принять, 3 - отклонить
// @Description Решение волонтера по задаче
type TaskStatusRequest struct {
	Status *int `json:"status"`
}

// ApplicationStatusRequest DTO решения по заявке волонтера
// @Description 0 - на рассмотрении, 1 - принят, 2 - отклонен
type ApplicationStatusRequest struct {
	ApplicationStatus *int `json:"application_status"`
}

// SkillsRequest DTO замены списка навыков
// @Description Полный список навыков
type SkillsRequest struct {
	Skills []string `json:"skills"`
}

// UpdateVolunteerProfileRequest DTO для изменения профиля волонтера
// @Description Отсутствующее поле не меняется
type UpdateVolunteerProfileRequest struct {
	Skills       []string `json:"skills,omitempty"`
	Bio          *string  `json:"bio,omitempty"`
	Availability *bool    `json:"availability,omitempty"`
}

// UpdateAlertRequest DTO для изменения оповещения
// @Description Отсутствующее поле не меняется
type UpdateAlertRequest struct {
	Title          *string               `json:"title,omitempty"`
	Message        *string               `json:"message,omitempty"`
	Type           *models.AlertType     `json:"type,omitempty"`
	TargetAudience *models.AlertAudience `json:"target_audience,omitempty"`
	IsActive       *bool                 `json:"is_active,omitempty"`
}

// UpdateResourceRequest DTO для изменения ресурса
// @Description Отсутствующее поле не меняется
type UpdateResourceRequest struct {
	Name             *string                 `json:"name,omitempty"`
	Type             *models.ResourceType    `json:"type,omitempty"`
	Description      *string                 `json:"description,omitempty"`
	Location         *LocationRequest        `json:"location,omitempty"`
	Capacity         *int                    `json:"capacity,omitempty"`
	CurrentOccupancy *int                    `json:"current_occupancy,omitempty"`
	Contact          *models.ResourceContact `json:"contact,omitempty"`
	IsActive         *bool                   `json:"is_active,omitempty"`
}

// MessageResponse - ответ без сущности
// @Description Короткое сообщение о результате
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse - состояние приложения
// @Description Состояние приложения
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
