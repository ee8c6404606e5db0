package models

import "strings"

// Show types recorded in document titles.
const (
	ShowTypeTV  = "TV"
	ShowTypePPV = "PPV"
)

// ShowMetadata identifies the wrestling show being documented.
type ShowMetadata struct {
	EventDate string `json:"event_date"` // YYYY-MM-DD
	Promotion string `json:"promotion"`
	ShowName  string `json:"show_name"`
	ShowType  string `json:"show_type"` // TV or PPV
}

// DocTitle builds the document title: {date}_{PROMOTION}_{TYPE}_{SHOW},
// uppercased, whitespace runs collapsed to underscores.
func (m ShowMetadata) DocTitle() string {
	return m.EventDate +
		"_" + slugField(m.Promotion, "PROMO") +
		"_" + slugField(m.ShowType, ShowTypeTV) +
		"_" + slugField(m.ShowName, "SHOW")
}

func slugField(value, fallback string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return fallback
	}
	return strings.ToUpper(strings.Join(fields, "_"))
}
