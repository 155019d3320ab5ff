package domain

// TaskStatus is the pipeline stage of a supply task.
type TaskStatus string

const (
	StatusWaitWindow       TaskStatus = "WAIT_WINDOW"
	StatusDraftCreating    TaskStatus = "DRAFT_CREATING"
	StatusPollDraft        TaskStatus = "POLL_DRAFT"
	StatusTimeslotSearch   TaskStatus = "TIMESLOT_SEARCH"
	StatusTimeslotSetting  TaskStatus = "TIMESLOT_SETTING"
	StatusSupplyCreating   TaskStatus = "SUPPLY_CREATING"
	StatusPollSupply       TaskStatus = "POLL_SUPPLY"
	StatusSupplyOrderFetch TaskStatus = "SUPPLY_ORDER_FETCH"
	StatusOrderDataFilling TaskStatus = "ORDER_DATA_FILLING"
	StatusCargoPrep        TaskStatus = "CARGO_PREP"
	StatusCargoCreating    TaskStatus = "CARGO_CREATING"
	StatusPollCargo        TaskStatus = "POLL_CARGO"
	StatusLabelsCreating   TaskStatus = "LABELS_CREATING"
	StatusPollLabels       TaskStatus = "POLL_LABELS"
	StatusLabelsReady      TaskStatus = "LABELS_READY"
	StatusRateLimit        TaskStatus = "RATE_LIMIT"
	StatusCreated          TaskStatus = "CREATED"
	StatusDone             TaskStatus = "DONE"
	StatusFailed           TaskStatus = "FAILED"
	StatusCanceled         TaskStatus = "CANCELED"
)

var terminalStatuses = map[TaskStatus]struct{}{
	StatusDone:     {},
	StatusFailed:   {},
	StatusCanceled: {},
	StatusCreated:  {},
}

var retryableStatuses = map[TaskStatus]struct{}{
	StatusDraftCreating:    {},
	StatusPollDraft:        {},
	StatusTimeslotSearch:   {},
	StatusTimeslotSetting:  {},
	StatusSupplyCreating:   {},
	StatusPollSupply:       {},
	StatusSupplyOrderFetch: {},
	StatusOrderDataFilling: {},
	StatusCargoPrep:        {},
	StatusCargoCreating:    {},
	StatusPollCargo:        {},
	StatusLabelsCreating:   {},
	StatusPollLabels:       {},
	StatusRateLimit:        {},
	StatusFailed:           {},
}

// Terminal reports whether a task in this status will never advance again.
func (s TaskStatus) Terminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// Retryable reports whether a task in this status may be reset and retried.
func (s TaskStatus) Retryable() bool {
	_, ok := retryableStatuses[s]
	return ok
}
