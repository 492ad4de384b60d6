// Package export renders entity lists as CSV for the admin download surface
// and the export command.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/models"
)

// Testers writes a header row followed by one row per tester.
func Testers(w io.Writer, testers []models.Tester) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"uid", "email", "display_name", "joined_at", "play_store_email", "app_id"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range testers {
		row := []string{t.UID, t.Email, t.DisplayName, t.JoinedAt, t.PlayStoreEmail, t.AppID}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Subscribers writes a header row followed by one row per subscriber.
func Subscribers(w io.Writer, subs []models.Subscriber) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"uid", "email", "joined_at"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, s := range subs {
		if err := cw.Write([]string{s.UID, s.Email, s.JoinedAt}); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
