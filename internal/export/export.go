// Package export renders caller-selected notice items as Excel-compatible
// CSV or as an ICS calendar of submission deadlines.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"
)

// Item is one previously returned notice selected for export. Field names
// match the search API JSON so the UI can post items back verbatim.
type Item struct {
	Title        string  `json:"title"`
	Href         string  `json:"href"`
	DateISO      *string `json:"date_iso"`
	DeadlineISO  *string `json:"deadline_iso"`
	Buyer        *string `json:"buyer"`
	BuyerAddress *string `json:"buyer_address"`
}

var csvHeader = []string{"Intitule", "Lien", "Date_limite", "Nom_Adresse_Acheteur"}

// CSV renders the items as semicolon-separated CSV with a UTF-8 BOM so Excel
// opens it with the right encoding.
func CSV(items []Item) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")

	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range items {
		addr := deref(it.BuyerAddress)
		if addr == "" {
			addr = deref(it.Buyer)
		}
		row := []string{it.Title, it.Href, deref(it.DeadlineISO), addr}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ICS renders the items as an all-day-event calendar of deadlines. Items
// without a parsable deadline (or publication date) yield events without a
// date rather than being dropped.
func ICS(items []Item) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//BOAMP Search//FR",
	}
	for _, it := range items {
		deadline := icsDate(firstNonEmpty(deref(it.DeadlineISO), deref(it.DateISO)))
		lines = append(lines, "BEGIN:VEVENT")
		lines = append(lines, "SUMMARY:"+icsText(it.Title))
		switch {
		case len(deadline) == 8:
			lines = append(lines,
				"DTSTART;VALUE=DATE:"+deadline,
				"DTEND;VALUE=DATE:"+deadline,
			)
		case deadline != "":
			lines = append(lines, "DTSTART:"+deadline)
		}
		if it.Href != "" {
			lines = append(lines, "URL:"+it.Href)
		}
		if addr := deref(it.BuyerAddress); addr != "" {
			lines = append(lines, "DESCRIPTION:"+icsText(addr))
		}
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR")
	return []byte(strings.Join(lines, "\r\n"))
}

// icsDate formats a calendar-date string for ICS: YYYYMMDD for plain dates,
// a UTC timestamp for full timestamps, empty when unparsable.
func icsDate(s string) string {
	if s == "" {
		return ""
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d.Format("20060102")
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d.UTC().Format("20060102T150405Z")
	}
	return ""
}

func icsText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
