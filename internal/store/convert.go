package store

import (
	"database/sql"
	"strings"

	"github.com/dukerupert/menuboard/internal/schedule"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullClock(c *schedule.Clock) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: c.String(), Valid: true}
}

func parseNullClock(ns sql.NullString) (*schedule.Clock, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	c, err := schedule.ParseClock(ns.String)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func nullDate(d *schedule.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(ns sql.NullString) (*schedule.Date, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := schedule.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
