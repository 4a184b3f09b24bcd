package sync_service

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/directory"
	"github.com/pdcgo/collection_service/reconcile"
	"github.com/pdcgo/collection_service/report"
	"github.com/pdcgo/collection_service/session"
	"github.com/pdcgo/shared/interfaces/authorization_iface"
)

var ErrPurgeNotConfirmed = errors.New("purge needs confirm")

type LocalLedger interface {
	Count(ctx context.Context, zoneID uint) (int64, error)
	PurgeAll(ctx context.Context) error
}

type syncServiceImpl struct {
	auth     authorization_iface.Authorization
	sessions session.Provider
	engine   *reconcile.Engine
	reports  *report.ReportService
	local    LocalLedger
	dir      directory.Directory
	history  *reconcile.History
	now      func() time.Time
}

func NewSyncService(
	auth authorization_iface.Authorization,
	sessions session.Provider,
	engine *reconcile.Engine,
	reports *report.ReportService,
	local LocalLedger,
	dir directory.Directory,
	history *reconcile.History,
) *syncServiceImpl {
	return &syncServiceImpl{
		auth:     auth,
		sessions: sessions,
		engine:   engine,
		reports:  reports,
		local:    local,
		dir:      dir,
		history:  history,
		now:      time.Now,
	}
}

// zoneSession loads the current session and checks the caller may act on its zone.
func (s *syncServiceImpl) zoneSession(ctx context.Context, header http.Header, action authorization_iface.Action) (*session.Session, error) {
	var err error

	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}

	err = s.
		auth.
		AuthIdentityFromHeader(header).
		HasPermission(authorization_iface.CheckPermissionGroup{
			&collection_model.Payment{}: &authorization_iface.CheckPermission{
				DomainID: sess.ZoneID(),
				Actions:  []authorization_iface.Action{action},
			},
		}).
		Err()

	if err != nil {
		return nil, connect.NewError(connect.CodePermissionDenied, err)
	}

	return sess, nil
}

// Reconcile implements SyncServiceHandler. A failed run is reported in the
// outcome, not as a transport error.
func (s *syncServiceImpl) Reconcile(ctx context.Context, req *connect.Request[ReconcileRequest]) (*connect.Response[ReconcileResponse], error) {
	res := connect.NewResponse(&ReconcileResponse{})

	sess, err := s.zoneSession(ctx, req.Header(), authorization_iface.Create)
	if err != nil {
		return res, err
	}

	res.Msg.Outcome, _ = s.engine.Reconcile(ctx, sess)
	return res, nil
}

func (s *syncServiceImpl) print(ctx context.Context, ticket *report.Ticket, res *ReportResponse) {
	err := s.reports.Print(ctx, ticket)
	if err != nil {
		slog.Error(err.Error())
		res.PrintError = err.Error()
		return
	}
	res.Printed = true
}

// DailyReport implements SyncServiceHandler.
func (s *syncServiceImpl) DailyReport(ctx context.Context, req *connect.Request[DailyReportRequest]) (*connect.Response[ReportResponse], error) {
	res := connect.NewResponse(&ReportResponse{})

	sess, err := s.zoneSession(ctx, req.Header(), authorization_iface.Read)
	if err != nil {
		return res, err
	}

	day := s.now()
	if req.Msg.Date != "" {
		day, err = time.ParseInLocation("2006-01-02", req.Msg.Date, sess.Location)
		if err != nil {
			return res, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	res.Msg.Ticket = s.reports.DailyTicket(ctx, sess, day)
	if req.Msg.Print {
		s.print(ctx, res.Msg.Ticket, res.Msg)
	}

	return res, nil
}

// WeeklyReport implements SyncServiceHandler.
func (s *syncServiceImpl) WeeklyReport(ctx context.Context, req *connect.Request[WeeklyReportRequest]) (*connect.Response[ReportResponse], error) {
	res := connect.NewResponse(&ReportResponse{})

	sess, err := s.zoneSession(ctx, req.Header(), authorization_iface.Read)
	if err != nil {
		return res, err
	}

	if req.Msg.Local {
		res.Msg.Ticket = s.reports.WeeklyLocalTicket(ctx, sess)
	} else {
		res.Msg.Ticket = s.reports.WeeklyTicket(ctx, sess)
	}

	if req.Msg.Print {
		s.print(ctx, res.Msg.Ticket, res.Msg)
	}

	return res, nil
}

// HomeStats implements SyncServiceHandler.
func (s *syncServiceImpl) HomeStats(ctx context.Context, req *connect.Request[HomeStatsRequest]) (*connect.Response[HomeStatsResponse], error) {
	res := connect.NewResponse(&HomeStatsResponse{})

	sess, err := s.zoneSession(ctx, req.Header(), authorization_iface.Read)
	if err != nil {
		return res, err
	}

	res.Msg.Stats = s.reports.HomeStats(ctx, sess)
	return res, nil
}

// PurgeLocal implements SyncServiceHandler.
func (s *syncServiceImpl) PurgeLocal(ctx context.Context, req *connect.Request[PurgeLocalRequest]) (*connect.Response[PurgeLocalResponse], error) {
	res := connect.NewResponse(&PurgeLocalResponse{})

	sess, err := s.zoneSession(ctx, req.Header(), authorization_iface.Delete)
	if err != nil {
		return res, err
	}

	if !req.Msg.Confirm {
		return res, connect.NewError(connect.CodeFailedPrecondition, ErrPurgeNotConfirmed)
	}

	count, err := s.local.Count(ctx, sess.ZoneID())
	if err != nil {
		return res, connect.NewError(connect.CodeUnavailable, err)
	}

	err = s.local.PurgeAll(ctx)
	if err != nil {
		return res, connect.NewError(connect.CodeUnavailable, err)
	}

	log.Println("purged local ledger", count, "rows of zone", sess.ZoneID())
	res.Msg.Purged = count
	return res, nil
}

// InitialLoad implements SyncServiceHandler.
func (s *syncServiceImpl) InitialLoad(ctx context.Context, req *connect.Request[InitialLoadRequest]) (*connect.Response[InitialLoadResponse], error) {
	res := connect.NewResponse(&InitialLoadResponse{})

	sess, err := s.zoneSession(ctx, req.Header(), authorization_iface.Update)
	if err != nil {
		return res, err
	}

	at := s.now()
	err = s.dir.InitialLoad(ctx, sess.Collector.ID, sess.ZoneID(), at)
	if err != nil {
		return res, connect.NewError(connect.CodeUnavailable, err)
	}

	res.Msg.InitialLoadAt = at
	return res, nil
}

// Status implements SyncServiceHandler.
func (s *syncServiceImpl) Status(ctx context.Context, req *connect.Request[StatusRequest]) (*connect.Response[StatusResponse], error) {
	res := connect.NewResponse(&StatusResponse{})

	sess, err := s.zoneSession(ctx, req.Header(), authorization_iface.Read)
	if err != nil {
		return res, err
	}

	res.Msg.ZoneID = sess.ZoneID()
	res.Msg.ZoneName = sess.ZoneName()
	res.Msg.Collector = sess.CollectorName()
	res.Msg.InitialLoadAt = sess.InitialLoadAt()

	res.Msg.LocalCount, err = s.local.Count(ctx, sess.ZoneID())
	if err != nil {
		slog.Error(err.Error())
	}

	if s.history != nil {
		last, err := s.history.Last(ctx, sess.ZoneID())
		if err != nil && !errors.Is(err, reconcile.ErrNoHistory) {
			slog.Error(err.Error())
		}
		res.Msg.LastOutcome = last
	}

	return res, nil
}
