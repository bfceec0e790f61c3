package models

import "time"

const (
	// MinPartySize и MaxPartySize ограничивают размер группы в одной заявке
	MinPartySize = 1
	MaxPartySize = 10

	// MinNameLength минимальная длина имени гостя
	MinNameLength = 2

	// MinPhoneLength минимальная длина телефона, если он указан
	MinPhoneLength = 8

	// SettingsCacheTTL время жизни кэша настроек
	SettingsCacheTTL = 5 * time.Minute

	// DefaultRateLimitRPS и DefaultRateLimitBurst значения лимитера по умолчанию
	DefaultRateLimitRPS   = 5.0
	DefaultRateLimitBurst = 10
)

// DefaultSettings заполняются при первом старте, если ключи отсутствуют.
var DefaultSettings = map[string]string{
	"event_date": "Dimanche 12 Octobre",
	"invites_fr": "Vous invite à sa première chasse aux loups-garous !",
	"invites_en": "Invites you to his first Werewolf hunt!",
}
