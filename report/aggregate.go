package report

import (
	"fmt"
	"time"

	"github.com/pdcgo/collection_service/collection_model"
	"github.com/shopspring/decimal"
)

const (
	BoldOn  = "\x1b\x45\x01"
	BoldOff = "\x1b\x45\x00"

	// thermal paper fits 32 columns
	NameWidth = 20
)

type MethodFilter func(method collection_model.MethodCode) bool

// CollectedFilter keeps payments that moved money.
func CollectedFilter(method collection_model.MethodCode) bool {
	return method.IsCollected()
}

func WaivedFilter(method collection_model.MethodCode) bool {
	return method == collection_model.MethodWaived
}

type Summary struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
	Lines []string        `json:"lines"`
}

// TotalLine renders the total with its value in bold.
func (s *Summary) TotalLine() string {
	return fmt.Sprintf("Total: $ %s%s%s", BoldOn, s.Total.String(), BoldOff)
}

func TruncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= NameWidth {
		return name
	}
	return string(runes[:NameWidth])
}

func FormatLine(pay *collection_model.Payment, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	return fmt.Sprintf("%s %s $ %s",
		pay.PaidAt.In(loc).Format("15:04"),
		TruncateName(pay.ClientNameOr("")),
		pay.Amount.String(),
	)
}

// Summarize totals the payments whose method passes filter. Amounts are
// summed as decimals so the printed total equals the stored amounts.
func Summarize(payments collection_model.PaymentList, filter MethodFilter, loc *time.Location) Summary {
	summary := Summary{
		Total: decimal.Zero,
		Lines: []string{},
	}

	for _, pay := range payments {
		if !filter(pay.MethodCode) {
			continue
		}

		summary.Total = summary.Total.Add(pay.Amount)
		summary.Count++
		summary.Lines = append(summary.Lines, FormatLine(pay, loc))
	}

	return summary
}
