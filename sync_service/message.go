package sync_service

import (
	"time"

	"github.com/pdcgo/collection_service/reconcile"
	"github.com/pdcgo/collection_service/report"
)

type ReconcileRequest struct{}

type ReconcileResponse struct {
	Outcome *reconcile.Outcome `json:"outcome"`
}

type DailyReportRequest struct {
	// Date is a local calendar day, 2006-01-02. Empty means today.
	Date  string `json:"date"`
	Print bool   `json:"print"`
}

type WeeklyReportRequest struct {
	Local bool `json:"local"`
	Print bool `json:"print"`
}

type ReportResponse struct {
	Ticket     *report.Ticket `json:"ticket"`
	Printed    bool           `json:"printed"`
	PrintError string         `json:"print_error,omitempty"`
}

type HomeStatsRequest struct{}

type HomeStatsResponse struct {
	Stats *report.HomeStats `json:"stats"`
}

type PurgeLocalRequest struct {
	Confirm bool `json:"confirm"`
}

type PurgeLocalResponse struct {
	Purged int64 `json:"purged"`
}

type InitialLoadRequest struct{}

type InitialLoadResponse struct {
	InitialLoadAt time.Time `json:"initial_load_at"`
}

type StatusRequest struct{}

type StatusResponse struct {
	ZoneID        uint               `json:"zone_id"`
	ZoneName      string             `json:"zone_name"`
	Collector     string             `json:"collector"`
	InitialLoadAt time.Time          `json:"initial_load_at"`
	LocalCount    int64              `json:"local_count"`
	LastOutcome   *reconcile.Outcome `json:"last_outcome,omitempty"`
}
