package openfda

import (
	"strings"
	"time"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

// receiptDateLayout is the feed's YYYYMMDD date format.
const receiptDateLayout = "20060102"

// Normalize flattens events into facts, one per drug sub-record with a
// non-empty name. When drugFilter is set only facts naming that drug,
// compared case-insensitively, are kept. Input order is preserved.
func Normalize(events []models.RawEvent, drugFilter string) models.FactSet {
	drugFilter = strings.TrimSpace(drugFilter)

	facts := make(models.FactSet, 0, len(events))
	for _, ev := range events {
		date := ParseReceiptDate(ev.ReceiptDate)
		for _, d := range ev.Drugs {
			name := strings.TrimSpace(d.MedicinalProduct)
			if name == "" {
				continue
			}
			if drugFilter != "" && !strings.EqualFold(name, drugFilter) {
				continue
			}
			facts = append(facts, models.Fact{
				Date: date,
				Drug: name,
				Role: models.RoleFromCode(d.DrugCharacterization),
			})
		}
	}
	return facts
}

// ParseReceiptDate parses an 8-digit YYYYMMDD date. Anything that is not a
// valid calendar date yields the zero time.
func ParseReceiptDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if len(s) != len(receiptDateLayout) {
		return time.Time{}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}
		}
	}
	t, err := time.ParseInLocation(receiptDateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
