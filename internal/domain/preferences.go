package domain

// Schedule is a daily reminder time.
type Schedule struct {
	Hour   int `json:"hour" validate:"min=0,max=23"`
	Minute int `json:"minute" validate:"min=0,max=59"`
}

// UserPreferences holds reminder settings consumed by the notification layer.
type UserPreferences struct {
	RemindersEnabled    bool
	Schedules           []Schedule `validate:"dive"`
	ExternalScheduleRef string
}

// DefaultPreferences mirrors the row created when the store is first opened.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		RemindersEnabled: false,
		Schedules:        []Schedule{{Hour: 8, Minute: 0}},
	}
}
