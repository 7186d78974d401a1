package model

import (
	"fmt"
	"time"
)

// Kind is the closed set of notification categories. Each kind carries its
// own rendering metadata instead of being looked up by string at render time.
type Kind string

const (
	KindMedication  Kind = "medication"
	KindAppointment Kind = "appointment"
	KindReminder    Kind = "reminder"
	KindAlert       Kind = "alert"
	KindSeizure     Kind = "seizure"
	KindProgress    Kind = "progress"
)

// KindMeta is the in-app rendering metadata for one notification kind.
type KindMeta struct {
	Icon  string
	Route string
}

var kindMeta = map[Kind]KindMeta{
	KindMedication:  {Icon: "pill", Route: "/medication"},
	KindAppointment: {Icon: "calendar", Route: "/appointments"},
	KindReminder:    {Icon: "bell", Route: "/"},
	KindAlert:       {Icon: "warning", Route: "/"},
	KindSeizure:     {Icon: "activity", Route: "/progress"},
	KindProgress:    {Icon: "chart", Route: "/progress"},
}

// Meta returns the rendering metadata for the kind. Unknown kinds fall back
// to the generic reminder metadata.
func (k Kind) Meta() KindMeta {
	if m, ok := kindMeta[k]; ok {
		return m
	}
	return kindMeta[KindReminder]
}

func (k Kind) Valid() bool {
	_, ok := kindMeta[k]
	return ok
}

// ParseKind validates a raw kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown notification kind: %q", s)
	}
	return k, nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Notification struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  Priority  `json:"priority"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
