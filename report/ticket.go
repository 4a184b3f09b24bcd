package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/pdcgo/collection_service/collection_model"
)

const divider = "--------------------------------"

type TicketKind string

const (
	TicketDaily       TicketKind = "daily"
	TicketWeekly      TicketKind = "weekly"
	TicketWeeklyLocal TicketKind = "weekly_local"
)

type Ticket struct {
	Kind      TicketKind `json:"kind"`
	Text      string     `json:"text"`
	Collected Summary    `json:"collected"`
	Waived    Summary    `json:"waived"`
}

type TicketHeader struct {
	Date      time.Time
	Collector string
	Location  *time.Location
}

type ticketBuilder struct {
	sb strings.Builder
}

func (b *ticketBuilder) line(text string) *ticketBuilder {
	b.sb.WriteString(text)
	b.sb.WriteString("\n")
	return b
}

func (b *ticketBuilder) lines(lines []string) *ticketBuilder {
	for _, text := range lines {
		b.line(text)
	}
	return b
}

func (b *ticketBuilder) header(title string, head TicketHeader) *ticketBuilder {
	loc := head.Location
	if loc == nil {
		loc = time.Local
	}

	return b.
		line(title).
		line("").
		line("FECHA: " + head.Date.In(loc).Format("02/01/2006")).
		line("COBRADOR: " + head.Collector).
		line("")
}

func (b *ticketBuilder) footer(collected Summary) *ticketBuilder {
	return b.
		line(collected.TotalLine()).
		line("Total de pagos: " + strconv.Itoa(collected.Count))
}

func (b *ticketBuilder) String() string {
	return b.sb.String()
}

// DailyTicket lists the collected payments of one day. Waived payments are
// left out of the ticket entirely.
func DailyTicket(head TicketHeader, payments collection_model.PaymentList) *Ticket {
	collected := Summarize(payments, CollectedFilter, head.Location)
	waived := Summarize(payments, WaivedFilter, head.Location)

	b := &ticketBuilder{}
	b.header("REPORTE DIARIO DE COBRANZA", head).
		line(divider).
		line("").
		lines(collected.Lines).
		line(divider).
		line("").
		footer(collected)

	return &Ticket{
		Kind:      TicketDaily,
		Text:      b.String(),
		Collected: collected,
		Waived:    waived,
	}
}

// WeeklyTicket lists collected payments and condonations in separate
// sections. local marks a ticket built from the device ledger.
func WeeklyTicket(head TicketHeader, payments collection_model.PaymentList, local bool) *Ticket {
	collected := Summarize(payments, CollectedFilter, head.Location)
	waived := Summarize(payments, WaivedFilter, head.Location)

	title := "REPORTE SEMANAL DE COBRANZA"
	kind := TicketWeekly
	if local {
		title += " (LOCAL)"
		kind = TicketWeeklyLocal
	}

	b := &ticketBuilder{}
	b.header(title, head).
		line(divider).
		line("PAGOS REALIZADOS").
		lines(collected.Lines).
		line(divider).
		line("CONDONACIONES").
		lines(waived.Lines).
		line(divider).
		line("").
		footer(collected)

	return &Ticket{
		Kind:      kind,
		Text:      b.String(),
		Collected: collected,
		Waived:    waived,
	}
}
