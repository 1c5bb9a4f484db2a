package model

// StockSummary aggregates reconciled stock per grouping key (division or
// category).
type StockSummary struct {
	Key         string `json:"key"`
	ItemCount   int    `json:"item_count"`
	CarriedOver int    `json:"carried_over"`
	Incoming    int    `json:"incoming"`
	Outgoing    int    `json:"outgoing"`
	Usage       int    `json:"usage"`
	Remaining   int    `json:"remaining"`
	TeamStock   int    `json:"team_stock"`
	TotalStock  int    `json:"total_stock"`
}

// LedgerTotals is the per-identity sum of the three transaction ledgers.
type LedgerTotals struct {
	TotalIncoming   int `json:"total_incoming"`
	TotalSentToTeam int `json:"total_sent_to_team"`
	TotalUsage      int `json:"total_usage"`
}
