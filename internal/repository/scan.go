package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/grave-assignment/internal/model"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func formatDate(t time.Time) string {
	return t.UTC().Format(model.DateLayout)
}

func datePtr(nt sql.NullTime) *string {
	if !nt.Valid {
		return nil
	}
	s := formatDate(nt.Time)
	return &s
}

func parseDate(field, v string) (time.Time, error) {
	t, err := time.ParseInLocation(model.DateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

func nullDate(field string, v *string) (sql.NullTime, error) {
	if v == nil || *v == "" {
		return sql.NullTime{}, nil
	}
	t, err := parseDate(field, *v)
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}
