package autosync

// ConfigurePayload is the request body for enabling or disabling the
// scheduler. A zero interval keeps the current one.
type ConfigurePayload struct {
	Enabled       bool `json:"enabled"`
	IntervalHours int  `json:"interval_hours" validate:"omitempty,min=1,max=168"`
}
