package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/directory"
	"github.com/pdcgo/collection_service/printer"
	"github.com/pdcgo/collection_service/reconcile"
	"github.com/pdcgo/collection_service/remote_ledger"
	"github.com/pdcgo/collection_service/session"
)

// ReportService builds tickets from the ledgers. A ledger that cannot be
// read contributes nothing, the ticket is still rendered.
type ReportService struct {
	local  reconcile.LocalReader
	remote remote_ledger.RemoteLedger
	dir    directory.Directory
	prn    printer.Printer
	now    func() time.Time
}

func NewReportService(
	local reconcile.LocalReader,
	remote remote_ledger.RemoteLedger,
	dir directory.Directory,
	prn printer.Printer,
) *ReportService {
	return &ReportService{
		local:  local,
		remote: remote,
		dir:    dir,
		prn:    prn,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for ticket dates and today ranges.
func (r *ReportService) WithClock(now func() time.Time) *ReportService {
	r.now = now
	return r
}

func (r *ReportService) header(sess *session.Session) TicketHeader {
	return TicketHeader{
		Date:      r.now(),
		Collector: sess.CollectorName(),
		Location:  sess.Location,
	}
}

// dayPayments takes the first snapshot of the live feed for the local day.
func (r *ReportService) dayPayments(ctx context.Context, sess *session.Session, day time.Time) collection_model.PaymentList {
	from, to := collection_core.DayRange(day, sess.Location)

	sub, err := r.remote.WatchByZoneAndRange(ctx, sess.ZoneID(), from, to)
	if err != nil {
		slog.Error(err.Error())
		return collection_model.PaymentList{}
	}

	list, err := sub.First(ctx)
	if err != nil {
		slog.Error(err.Error())
		return collection_model.PaymentList{}
	}

	return list
}

func (r *ReportService) weekRemotePayments(ctx context.Context, sess *session.Session) collection_model.PaymentList {
	snap, err := r.remote.QueryByZoneSince(ctx, sess.ZoneID(), sess.InitialLoadAt(), remote_ledger.QueryOption{})
	if err != nil {
		slog.Error(err.Error())
		return collection_model.PaymentList{}
	}

	return snap.Payments
}

func (r *ReportService) weekLocalPayments(ctx context.Context, sess *session.Session) collection_model.PaymentList {
	list := collection_model.PaymentList{}

	rows, err := r.local.QueryByZoneSince(ctx, sess.ZoneID(), sess.InitialLoadAt())
	if err != nil {
		slog.Error(err.Error())
		return list
	}

	for _, row := range rows {
		pay, err := reconcile.Normalize(row, sess.Location)
		if err != nil {
			slog.Warn("skipping local payment", slog.String("id", row.ID), slog.String("error", err.Error()))
			continue
		}
		if pay.PaidAt.Before(sess.InitialLoadAt()) {
			continue
		}
		list = append(list, pay)
	}

	return list
}

func (r *ReportService) DailyTicket(ctx context.Context, sess *session.Session, day time.Time) *Ticket {
	return DailyTicket(r.header(sess), r.dayPayments(ctx, sess, day))
}

func (r *ReportService) WeeklyTicket(ctx context.Context, sess *session.Session) *Ticket {
	return WeeklyTicket(r.header(sess), r.weekRemotePayments(ctx, sess), false)
}

func (r *ReportService) WeeklyLocalTicket(ctx context.Context, sess *session.Session) *Ticket {
	return WeeklyTicket(r.header(sess), r.weekLocalPayments(ctx, sess), true)
}

func (r *ReportService) HomeStats(ctx context.Context, sess *session.Session) *HomeStats {
	sales, err := r.dir.SalesByZone(ctx, sess.ZoneID())
	if err != nil {
		slog.Error(err.Error())
		sales = directory.SaleList{}
	}

	return ComputeHomeStats(r.weekRemotePayments(ctx, sess), sales, r.now(), sess.Location)
}

func (r *ReportService) SalesByDay(ctx context.Context, sess *session.Session) SalesByDay {
	sales, err := r.dir.SalesByZone(ctx, sess.ZoneID())
	if err != nil {
		slog.Error(err.Error())
		sales = directory.SaleList{}
	}

	return BucketByDay(sales, sess.Location)
}

// PaymentsBySale lists the remote payments of one account.
func (r *ReportService) PaymentsBySale(ctx context.Context, saleRef uint) collection_model.PaymentList {
	list, err := r.remote.QueryBySale(ctx, saleRef)
	if err != nil {
		slog.Error(err.Error())
		return collection_model.PaymentList{}
	}
	return list
}

func (r *ReportService) Print(ctx context.Context, ticket *Ticket) error {
	if r.prn == nil {
		return printer.ErrNotConnected
	}
	return r.prn.Print(ctx, ticket.Text)
}
