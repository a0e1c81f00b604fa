// Package models defines data structures and domain types.
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// RawEvent is a single adverse-event record as returned by the feed.
// Only the fields the dashboard uses are decoded; every one of them may be
// missing or oddly typed on the wire.
type RawEvent struct {
	ReceiptDate string
	Drugs       []RawDrug
}

// RawDrug is one drug sub-record of a RawEvent.
type RawDrug struct {
	MedicinalProduct     string
	DrugCharacterization string
}

type rawDrugWire struct {
	MedicinalProduct     flexString `json:"medicinalproduct"`
	DrugCharacterization flexString `json:"drugcharacterization"`
}

// UnmarshalJSON decodes an event leniently. It never fails: a field of the
// wrong shape decodes as missing, and a drug sub-record that cannot be
// decoded is skipped, so one bad record never spoils a batch.
func (e *RawEvent) UnmarshalJSON(data []byte) error {
	e.ReceiptDate = ""
	e.Drugs = nil

	var fields struct {
		ReceiptDate flexString      `json:"receiptdate"`
		Patient     json.RawMessage `json:"patient"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	e.ReceiptDate = string(fields.ReceiptDate)

	var patient struct {
		Drug json.RawMessage `json:"drug"`
	}
	if len(fields.Patient) == 0 || json.Unmarshal(fields.Patient, &patient) != nil {
		return nil
	}

	var drugs []json.RawMessage
	if len(patient.Drug) == 0 || json.Unmarshal(patient.Drug, &drugs) != nil {
		return nil
	}

	e.Drugs = make([]RawDrug, 0, len(drugs))
	for _, raw := range drugs {
		var d rawDrugWire
		if err := json.Unmarshal(raw, &d); err != nil {
			continue
		}
		e.Drugs = append(e.Drugs, RawDrug{
			MedicinalProduct:     string(d.MedicinalProduct),
			DrugCharacterization: string(d.DrugCharacterization),
		})
	}
	return nil
}

// flexString accepts a JSON string, number, bool or null.
// Objects and arrays decode to the empty string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case '{', '[':
		*f = ""
	case 't', 'f':
		*f = flexString(strconv.FormatBool(data[0] == 't'))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			*f = ""
			return nil
		}
		*f = flexString(n.String())
	}
	return nil
}
