package model

// HistoryRecord is a persisted BreadthRow. Nil fields serialize as JSON null.
type HistoryRecord struct {
	Date         string   `json:"date"`
	Advances     *int     `json:"advances"`
	Declines     *int     `json:"declines"`
	NetAdvances  *int     `json:"net_advances"`
	NewHighs     *int     `json:"new_highs"`
	NewLows      *int     `json:"new_lows"`
	IssuesTraded *int     `json:"issues_traded"`
	Trin         *float64 `json:"trin"`
	BaseSignal   *bool    `json:"base_signal"`
	State        *string  `json:"state"`
	Mode         *string  `json:"mode"`
	Risk         *string  `json:"risk"`
	Triggered    *bool    `json:"triggered"`
	LampOn       *bool    `json:"lamp_on"`
	Derived      bool     `json:"derived"`
}

// RecordFromRow converts a classified row into a history candidate.
func RecordFromRow(row BreadthRow, derived bool) HistoryRecord {
	base := row.BaseSignal
	triggered := row.Triggered
	lamp := row.LampOn
	rec := HistoryRecord{
		Date:         row.Date,
		Advances:     row.Advances,
		Declines:     row.Declines,
		NetAdvances:  row.NetAdvances,
		NewHighs:     row.NewHighs,
		NewLows:      row.NewLows,
		IssuesTraded: row.IssuesTraded,
		Trin:         row.Trin,
		BaseSignal:   &base,
		Triggered:    &triggered,
		LampOn:       &lamp,
		Derived:      derived,
	}
	if row.State != "" {
		s := string(row.State)
		rec.State = &s
	}
	if row.Mode != "" {
		m := string(row.Mode)
		rec.Mode = &m
	}
	if row.Risk != "" {
		r := string(row.Risk)
		rec.Risk = &r
	}
	return rec
}
