package app

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
)

var (
	// ErrUnknownFormat is returned for an output format without exporter
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrInvalidReminder is returned for a reminder time that is not HH:MM
	ErrInvalidReminder = errors.New("invalid reminder time, expected HH:MM")
)

// ExportOptions tune the exporters. Zero values are valid.
type ExportOptions struct {
	// Remind adds a reminder at this HH:MM on the day before each ICS event
	Remind string
	// Now stamps ICS events, time.Now when zero
	Now time.Time
}

// Exporter renders a report in one format
type Exporter func(w io.Writer, report *Report, opts ExportOptions) error

var exporters = map[string]Exporter{
	FormatText: GenerateText,
	FormatJSON: GenerateJSON,
	FormatCSV:  GenerateCSV,
	FormatICS:  GenerateICS,
	FormatYAML: GenerateYAML,
}

// Export renders report in the named format
func Export(w io.Writer, format string, report *Report, opts ExportOptions) error {
	exporter, ok := exporters[format]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return exporter(w, report, opts)
}

// GenerateText renders the report for the terminal
func GenerateText(w io.Writer, report *Report, _ ExportOptions) error {
	ew := &errWriter{w: w}

	if report.IsEmpty() {
		ew.printf("No collection dates found for %s in %d.\n", report.Address, report.Year)
	} else {
		ew.printf("Available waste streams for %s in %d:\n", report.Address, report.Year)
	}
	if len(report.Weekdays) > 0 {
		ew.printf("Weekdays: %s\n", strings.Join(report.Weekdays, ", "))
	}

	for _, stream := range report.Streams {
		ew.printf("\n%s (ID: %d)\n", DisplayName(stream.Name), stream.CatalogID)
		for _, d := range stream.Dates {
			if d.Holiday != "" {
				ew.printf("  %s  %-9s  %s\n", d.Date, d.Weekday, d.Holiday)
				continue
			}
			ew.printf("  %s  %s\n", d.Date, d.Weekday)
		}
	}

	if len(report.Unmatched) > 0 {
		titles := make([]string, 0, len(report.Unmatched))
		for _, u := range report.Unmatched {
			titles = append(titles, fmt.Sprintf("%s (%d)", u.Title, u.ID))
		}
		ew.printf("\nNot in catalog: %s\n", strings.Join(titles, ", "))
	}
	return ew.err
}

// GenerateJSON renders the report as indented JSON
func GenerateJSON(w io.Writer, report *Report, _ ExportOptions) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

// GenerateYAML renders the report as YAML
func GenerateYAML(w io.Writer, report *Report, _ ExportOptions) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	return enc.Close()
}

// GenerateCSV renders one row per pickup date
func GenerateCSV(w io.Writer, report *Report, _ ExportOptions) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"catalog_id", "stream", "date", "weekday", "holiday"}); err != nil {
		return err
	}
	for _, stream := range report.Streams {
		for _, d := range stream.Dates {
			row := []string{strconv.Itoa(stream.CatalogID), stream.Name, d.Date, d.Weekday, d.Holiday}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// GenerateICS renders all-day iCalendar events, with an optional reminder
// the evening before
func GenerateICS(w io.Writer, report *Report, opts ExportOptions) error {
	var remindAt time.Duration
	if opts.Remind != "" {
		var err error
		if remindAt, err = ParseReminder(opts.Remind); err != nil {
			return err
		}
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	stamp := now.UTC().Format("20060102T150405Z")

	ew := &errWriter{w: w}
	ew.line("BEGIN:VCALENDAR")
	ew.line("VERSION:2.0")
	ew.line("PRODID:" + ICSProductID)
	ew.line(fmt.Sprintf("X-WR-CALNAME:Ophaaldagen %s %d", report.Address, report.Year))
	ew.line("X-WR-TIMEZONE:" + ICSTimezone)
	ew.line("CALSCALE:GREGORIAN")

	for _, stream := range report.Streams {
		name := DisplayName(stream.Name)
		for _, d := range stream.Dates {
			eventDate, err := time.Parse(reconcile.DateLayout, d.Date)
			if err != nil {
				continue
			}

			ew.line("BEGIN:VEVENT")
			ew.line("UID:" + eventUID(report.Address.BagID, stream.CatalogID, d.Date))
			ew.line("DTSTAMP:" + stamp)
			ew.line("DTSTART;VALUE=DATE:" + eventDate.Format("20060102"))
			ew.line("DTEND;VALUE=DATE:" + eventDate.AddDate(0, 0, 1).Format("20060102"))
			ew.line("SUMMARY:" + escapeText(name))
			ew.line("DESCRIPTION:" + escapeText(fmt.Sprintf("Ophaaldag %s voor %s", name, report.Address)))
			ew.line("LOCATION:" + escapeText(report.Address.String()))
			if opts.Remind != "" {
				writeAlarm(ew, remindAt, name)
			}
			ew.line("END:VEVENT")
		}
	}

	ew.line("END:VCALENDAR")
	return ew.err
}

// ParseReminder parses HH:MM into an offset from midnight
func ParseReminder(hhmm string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidReminder, hhmm)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// writeAlarm adds a display alarm at the given time of the day before an
// all-day event
func writeAlarm(ew *errWriter, at time.Duration, description string) {
	// the event starts at midnight, so the trigger is negative
	before := 24*time.Hour - at
	totalMinutes := int(before.Minutes())
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	ew.line("BEGIN:VALARM")
	ew.line("ACTION:DISPLAY")
	ew.line("DESCRIPTION:" + escapeText("Morgen ophaaldag: "+description))
	ew.line(fmt.Sprintf("TRIGGER:-PT%dH%dM", hours, minutes))
	ew.line("END:VALARM")
}

// eventUID is stable across exports so calendar apps update events in place
func eventUID(bagID string, catalogID int, date string) string {
	sum := blake2b.Sum256([]byte(bagID + "|" + strconv.Itoa(catalogID) + "|" + date))
	return hex.EncodeToString(sum[:16]) + "@" + ICSUIDDomain
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

func escapeText(s string) string {
	return icsEscaper.Replace(s)
}

// errWriter keeps the first write error
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) line(s string) {
	e.printf("%s\r\n", s)
}
