package models

import "time"

// ResponseBreakdown counts one response value across all stored rows.
type ResponseBreakdown struct {
	Value      string  `json:"value"` // e.g. "Yes", "No", "N/A"
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SiteCount is the number of audits recorded for one site.
type SiteCount struct {
	SiteID string `json:"site_id"`
	Count  int64  `json:"count"`
}

// DashboardSummary is the aggregate view served to the analytics dashboard.
type DashboardSummary struct {
	TotalAudits    int64               `json:"total_audits"`
	TotalResponses int64               `json:"total_responses"`
	Breakdown      []ResponseBreakdown `json:"response_breakdown"`
	AuditsBySite   []SiteCount         `json:"audits_by_site"`
	GeneratedAt    time.Time           `json:"generated_at"`
}

// AuditListItem is one row in the dashboard's audit listing.
type AuditListItem struct {
	ID        uint      `json:"id"`
	Assessor  string    `json:"assessor"`
	SiteID    string    `json:"site_id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditDetail is one audit plus its response rows in flattened order.
type AuditDetail struct {
	Audit     Audit      `json:"audit"`
	Assessor  string     `json:"assessor"`
	Responses []Response `json:"responses"`
}
