package game

// Resources is the single mutable aggregate of game state. It is owned by a
// Session and mutated only by action handlers and the tick; everything handed
// out of the session is a deep copy.
type Resources struct {
	RawData   float64 `json:"raw_data"`
	CleanData float64 `json:"clean_data"`
	Models    float64 `json:"models"`
	Revenue   float64 `json:"revenue"`

	DataPerClick      float64 `json:"data_per_click"`
	DataPerSecond     float64 `json:"data_per_second"`
	CleaningPerSecond float64 `json:"cleaning_per_second"`
	IngestedPerSecond float64 `json:"ingested_per_second"`

	DataQuality float64 `json:"data_quality"`
	Connectors  int     `json:"connectors"`

	Dashboards    map[string]float64 `json:"dashboards"`
	Employees     map[string]bool    `json:"employees"`
	BusinessUnits map[string]bool    `json:"business_units"`

	BitcoinBalance float64 `json:"bitcoin_balance"`
	BitcoinPrice   float64 `json:"bitcoin_price"`

	AutoSaleEnabled        bool `json:"auto_sale_enabled"`
	GameOver               bool `json:"game_over"`
	HasWon                 bool `json:"has_won"`
	SecurityBonusCollected bool `json:"security_bonus_collected"`
	ShowDailyMeeting       bool `json:"show_daily_meeting"`

	TimeRemaining int `json:"time_remaining"`
}

func initialResources(durationSeconds int) Resources {
	return Resources{
		DataPerClick:  1,
		DataQuality:   StartingDataQuality,
		Revenue:       StartingRevenue,
		BitcoinPrice:  StartingBitcoinUSD,
		Dashboards:    make(map[string]float64),
		Employees:     make(map[string]bool),
		BusinessUnits: make(map[string]bool),
		TimeRemaining: durationSeconds,
	}
}

func (r Resources) clone() Resources {
	out := r
	out.Dashboards = make(map[string]float64, len(r.Dashboards))
	for k, v := range r.Dashboards {
		out.Dashboards[k] = v
	}
	out.Employees = make(map[string]bool, len(r.Employees))
	for k, v := range r.Employees {
		out.Employees[k] = v
	}
	out.BusinessUnits = make(map[string]bool, len(r.BusinessUnits))
	for k, v := range r.BusinessUnits {
		out.BusinessUnits[k] = v
	}
	return out
}
