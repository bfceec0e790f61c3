package database

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrSettingNotFound = errors.New("setting not found")
	ErrAdminNotFound   = errors.New("admin not found")

	// ErrInsufficientSlots возвращается, когда резерв не прошел условную проверку
	ErrInsufficientSlots = errors.New("not enough available slots")

	// ErrSlotOverflow возвращается, когда возврат мест превысил бы вместимость.
	// В корректной работе не случается и указывает на расхождение учета.
	ErrSlotOverflow = errors.New("slot release exceeds total capacity")
)
