package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsKey - значение поля key у единственного документа настроек.
const SettingsKey = "global"

// Settings - единственный документ настроек приложения (коллекция settings).
type Settings struct {
	ID                        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key                       string             `bson:"key" json:"-"`
	SiteName                  string             `bson:"siteName" json:"siteName"`
	SessionTimeout            int                `bson:"sessionTimeout" json:"sessionTimeout"`
	MaxLoginAttempts          int                `bson:"maxLoginAttempts" json:"maxLoginAttempts"`
	Require2FAForAllAdmins    bool               `bson:"require2FAForAllAdmins" json:"require2FAForAllAdmins"`
	AllowNewAdminRegistration bool               `bson:"allowNewAdminRegistration" json:"allowNewAdminRegistration"`
	CreatedAt                 time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt                 time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DefaultSettings возвращает настройки, с которыми создаётся документ при первом чтении.
func DefaultSettings() Settings {
	return Settings{
		Key:                       SettingsKey,
		SiteName:                  "Boost Admin",
		SessionTimeout:            12,
		MaxLoginAttempts:          5,
		Require2FAForAllAdmins:    false,
		AllowNewAdminRegistration: true,
	}
}

// SettingsUpdate - частичное обновление настроек; nil означает "не менять".
type SettingsUpdate struct {
	SiteName                  *string `json:"siteName,omitempty" validate:"omitempty,min=1,max=100"`
	SessionTimeout            *int    `json:"sessionTimeout,omitempty" validate:"omitempty,min=1,max=720"`
	MaxLoginAttempts          *int    `json:"maxLoginAttempts,omitempty" validate:"omitempty,min=1,max=100"`
	Require2FAForAllAdmins    *bool   `json:"require2FAForAllAdmins,omitempty"`
	AllowNewAdminRegistration *bool   `json:"allowNewAdminRegistration,omitempty"`
}

// Empty сообщает, что обновление не затрагивает ни одного поля.
func (u SettingsUpdate) Empty() bool {
	return u.SiteName == nil && u.SessionTimeout == nil && u.MaxLoginAttempts == nil &&
		u.Require2FAForAllAdmins == nil && u.AllowNewAdminRegistration == nil
}

// Fields возвращает изменяемые поля в виде карты bson-имя → значение.
func (u SettingsUpdate) Fields() map[string]any {
	fields := make(map[string]any)
	if u.SiteName != nil {
		fields["siteName"] = *u.SiteName
	}
	if u.SessionTimeout != nil {
		fields["sessionTimeout"] = *u.SessionTimeout
	}
	if u.MaxLoginAttempts != nil {
		fields["maxLoginAttempts"] = *u.MaxLoginAttempts
	}
	if u.Require2FAForAllAdmins != nil {
		fields["require2FAForAllAdmins"] = *u.Require2FAForAllAdmins
	}
	if u.AllowNewAdminRegistration != nil {
		fields["allowNewAdminRegistration"] = *u.AllowNewAdminRegistration
	}
	return fields
}

// Snapshot возвращает значения полей, которые можно изменить через SettingsUpdate.
func (s Settings) Snapshot() map[string]any {
	return map[string]any{
		"siteName":                  s.SiteName,
		"sessionTimeout":            s.SessionTimeout,
		"maxLoginAttempts":          s.MaxLoginAttempts,
		"require2FAForAllAdmins":    s.Require2FAForAllAdmins,
		"allowNewAdminRegistration": s.AllowNewAdminRegistration,
	}
}
