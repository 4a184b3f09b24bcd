package sync_service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const SyncServiceName = "collection.v1.SyncService"

const (
	SyncServiceReconcileProcedure    = "/collection.v1.SyncService/Reconcile"
	SyncServiceDailyReportProcedure  = "/collection.v1.SyncService/DailyReport"
	SyncServiceWeeklyReportProcedure = "/collection.v1.SyncService/WeeklyReport"
	SyncServiceHomeStatsProcedure    = "/collection.v1.SyncService/HomeStats"
	SyncServicePurgeLocalProcedure   = "/collection.v1.SyncService/PurgeLocal"
	SyncServiceInitialLoadProcedure  = "/collection.v1.SyncService/InitialLoad"
	SyncServiceStatusProcedure       = "/collection.v1.SyncService/Status"
)

type SyncServiceHandler interface {
	Reconcile(context.Context, *connect.Request[ReconcileRequest]) (*connect.Response[ReconcileResponse], error)
	DailyReport(context.Context, *connect.Request[DailyReportRequest]) (*connect.Response[ReportResponse], error)
	WeeklyReport(context.Context, *connect.Request[WeeklyReportRequest]) (*connect.Response[ReportResponse], error)
	HomeStats(context.Context, *connect.Request[HomeStatsRequest]) (*connect.Response[HomeStatsResponse], error)
	PurgeLocal(context.Context, *connect.Request[PurgeLocalRequest]) (*connect.Response[PurgeLocalResponse], error)
	InitialLoad(context.Context, *connect.Request[InitialLoadRequest]) (*connect.Response[InitialLoadResponse], error)
	Status(context.Context, *connect.Request[StatusRequest]) (*connect.Response[StatusResponse], error)
}

func NewSyncServiceHandler(svc SyncServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	handlers := map[string]http.Handler{
		SyncServiceReconcileProcedure:    connect.NewUnaryHandler(SyncServiceReconcileProcedure, svc.Reconcile, opts...),
		SyncServiceDailyReportProcedure:  connect.NewUnaryHandler(SyncServiceDailyReportProcedure, svc.DailyReport, opts...),
		SyncServiceWeeklyReportProcedure: connect.NewUnaryHandler(SyncServiceWeeklyReportProcedure, svc.WeeklyReport, opts...),
		SyncServiceHomeStatsProcedure:    connect.NewUnaryHandler(SyncServiceHomeStatsProcedure, svc.HomeStats, opts...),
		SyncServicePurgeLocalProcedure:   connect.NewUnaryHandler(SyncServicePurgeLocalProcedure, svc.PurgeLocal, opts...),
		SyncServiceInitialLoadProcedure:  connect.NewUnaryHandler(SyncServiceInitialLoadProcedure, svc.InitialLoad, opts...),
		SyncServiceStatusProcedure:       connect.NewUnaryHandler(SyncServiceStatusProcedure, svc.Status, opts...),
	}

	return "/" + SyncServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

type SyncServiceClient interface {
	Reconcile(context.Context, *connect.Request[ReconcileRequest]) (*connect.Response[ReconcileResponse], error)
	DailyReport(context.Context, *connect.Request[DailyReportRequest]) (*connect.Response[ReportResponse], error)
	WeeklyReport(context.Context, *connect.Request[WeeklyReportRequest]) (*connect.Response[ReportResponse], error)
	HomeStats(context.Context, *connect.Request[HomeStatsRequest]) (*connect.Response[HomeStatsResponse], error)
	PurgeLocal(context.Context, *connect.Request[PurgeLocalRequest]) (*connect.Response[PurgeLocalResponse], error)
	InitialLoad(context.Context, *connect.Request[InitialLoadRequest]) (*connect.Response[InitialLoadResponse], error)
	Status(context.Context, *connect.Request[StatusRequest]) (*connect.Response[StatusResponse], error)
}

type syncServiceClient struct {
	reconcile    *connect.Client[ReconcileRequest, ReconcileResponse]
	dailyReport  *connect.Client[DailyReportRequest, ReportResponse]
	weeklyReport *connect.Client[WeeklyReportRequest, ReportResponse]
	homeStats    *connect.Client[HomeStatsRequest, HomeStatsResponse]
	purgeLocal   *connect.Client[PurgeLocalRequest, PurgeLocalResponse]
	initialLoad  *connect.Client[InitialLoadRequest, InitialLoadResponse]
	status       *connect.Client[StatusRequest, StatusResponse]
}

func NewSyncServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SyncServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)

	return &syncServiceClient{
		reconcile:    connect.NewClient[ReconcileRequest, ReconcileResponse](httpClient, baseURL+SyncServiceReconcileProcedure, opts...),
		dailyReport:  connect.NewClient[DailyReportRequest, ReportResponse](httpClient, baseURL+SyncServiceDailyReportProcedure, opts...),
		weeklyReport: connect.NewClient[WeeklyReportRequest, ReportResponse](httpClient, baseURL+SyncServiceWeeklyReportProcedure, opts...),
		homeStats:    connect.NewClient[HomeStatsRequest, HomeStatsResponse](httpClient, baseURL+SyncServiceHomeStatsProcedure, opts...),
		purgeLocal:   connect.NewClient[PurgeLocalRequest, PurgeLocalResponse](httpClient, baseURL+SyncServicePurgeLocalProcedure, opts...),
		initialLoad:  connect.NewClient[InitialLoadRequest, InitialLoadResponse](httpClient, baseURL+SyncServiceInitialLoadProcedure, opts...),
		status:       connect.NewClient[StatusRequest, StatusResponse](httpClient, baseURL+SyncServiceStatusProcedure, opts...),
	}
}

// Reconcile implements SyncServiceClient.
func (c *syncServiceClient) Reconcile(ctx context.Context, req *connect.Request[ReconcileRequest]) (*connect.Response[ReconcileResponse], error) {
	return c.reconcile.CallUnary(ctx, req)
}

// DailyReport implements SyncServiceClient.
func (c *syncServiceClient) DailyReport(ctx context.Context, req *connect.Request[DailyReportRequest]) (*connect.Response[ReportResponse], error) {
	return c.dailyReport.CallUnary(ctx, req)
}

// WeeklyReport implements SyncServiceClient.
func (c *syncServiceClient) WeeklyReport(ctx context.Context, req *connect.Request[WeeklyReportRequest]) (*connect.Response[ReportResponse], error) {
	return c.weeklyReport.CallUnary(ctx, req)
}

// HomeStats implements SyncServiceClient.
func (c *syncServiceClient) HomeStats(ctx context.Context, req *connect.Request[HomeStatsRequest]) (*connect.Response[HomeStatsResponse], error) {
	return c.homeStats.CallUnary(ctx, req)
}

// PurgeLocal implements SyncServiceClient.
func (c *syncServiceClient) PurgeLocal(ctx context.Context, req *connect.Request[PurgeLocalRequest]) (*connect.Response[PurgeLocalResponse], error) {
	return c.purgeLocal.CallUnary(ctx, req)
}

// InitialLoad implements SyncServiceClient.
func (c *syncServiceClient) InitialLoad(ctx context.Context, req *connect.Request[InitialLoadRequest]) (*connect.Response[InitialLoadResponse], error) {
	return c.initialLoad.CallUnary(ctx, req)
}

// Status implements SyncServiceClient.
func (c *syncServiceClient) Status(ctx context.Context, req *connect.Request[StatusRequest]) (*connect.Response[StatusResponse], error) {
	return c.status.CallUnary(ctx, req)
}
