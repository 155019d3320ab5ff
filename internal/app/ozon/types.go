package ozon

// DraftInfo is the calculated state of a supply draft.
type DraftInfo struct {
	DraftID    string
	InProgress bool
	Warehouses []Warehouse
}

// Warehouse is a candidate destination extracted from a draft.
type Warehouse struct {
	ID        int64
	Name      string
	BundleID  string
	Available bool
}

// Timeslot is one bookable acceptance window, times in local ISO form.
type Timeslot struct {
	FromInTimezone string `json:"from_in_timezone"`
	ToInTimezone   string `json:"to_in_timezone"`
	ID             string `json:"id,omitempty"`
	DropOffID      int64  `json:"drop_off_point_warehouse_id,omitempty"`

	FromEpoch int64 `json:"from_epoch"`
	ToEpoch   int64 `json:"to_epoch"`
}

// TimeslotRef is the slot payload sent to the timeslot set endpoint.
type TimeslotRef struct {
	FromInTimezone string `json:"from_in_timezone"`
	ToInTimezone   string `json:"to_in_timezone"`
}
