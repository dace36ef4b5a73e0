package model

// Settings holds the venue parameters staff can tune at runtime. Stored
// as a key/value table; read by order validation and the alert monitor.
type Settings struct {
	// TimeWarning1 and TimeWarning2 are the elapsed-minute thresholds for
	// the two one-shot order alerts. TimeWarning1 < TimeWarning2.
	TimeWarning1 int `json:"time_warning1"`
	TimeWarning2 int `json:"time_warning2"`

	// TotalTables is the highest addressable table number.
	TotalTables int `json:"total_tables"`

	// ItemsPerTwoGuests is the number of food-category items a first
	// order must include per two guests, rounded up.
	ItemsPerTwoGuests int `json:"items_per_two_guests"`

	// RequireMain makes a first order include at least one main-category
	// item (a special set counts).
	RequireMain bool `json:"require_main"`
}

// DefaultSettings are applied on first run and used as fallbacks for
// missing keys.
var DefaultSettings = Settings{
	TimeWarning1:      50,
	TimeWarning2:      60,
	TotalTables:       23,
	ItemsPerTwoGuests: 1,
	RequireMain:       true,
}
