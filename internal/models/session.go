package models

import "time"

type Session struct {
	ID             int64     `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	StartTime      time.Time `json:"start_time" yaml:"start_time"`
	EndTime        time.Time `json:"end_time" yaml:"end_time"`
	TotalSlots     int64     `json:"total_slots" yaml:"total_slots"`
	AvailableSlots int64     `json:"available_slots" yaml:"available_slots"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}
