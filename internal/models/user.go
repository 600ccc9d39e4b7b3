package models

import (
	"time"

	"github.com/google/uuid"
)

// Role роль вызывающего пользователя
type Role string

const (
	RoleCivilian  Role = "civilian"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// Valid проверяет, что роль известна системе
func (r Role) Valid() bool {
	switch r {
	case RoleCivilian, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

// Caller - идентичность вызывающего, которую поставляет middleware аутентификации
type Caller struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

func (c Caller) IsAdmin() bool     { return c.Role == RoleAdmin }
func (c Caller) IsVolunteer() bool { return c.Role == RoleVolunteer }
func (c Caller) IsCivilian() bool  { return c.Role == RoleCivilian }

// User - учетная запись. Регистрация вне этого сервиса, здесь только чтение.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Ref возвращает проекцию пользователя для populate-ссылок
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// UserRef - ссылка на пользователя; поля кроме ID заполняются при populate
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
	Phone string    `json:"phone,omitempty"`
}

// Note - запись в журнале заметок заявки или задачи
type Note struct {
	Text    string    `json:"text"`
	AddedBy UserRef   `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
}
