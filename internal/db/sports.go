package db

import "context"

const ensureSport = `
INSERT INTO sports (sport_key, half_length_sec, overtime_length_sec)
VALUES ($1, $2, $3)
ON CONFLICT (sport_key) DO UPDATE SET
	half_length_sec = EXCLUDED.half_length_sec,
	overtime_length_sec = EXCLUDED.overtime_length_sec
RETURNING id, sport_key, half_length_sec, overtime_length_sec
`

type EnsureSportParams struct {
	SportKey          string
	HalfLengthSec     int
	OvertimeLengthSec int
}

// EnsureSport upserts the sport reference row and returns it. Idempotent, so
// dependent writes can call it unconditionally instead of lazily creating the
// row on first use.
func (q *Queries) EnsureSport(ctx context.Context, arg EnsureSportParams) (Sport, error) {
	row := q.db.QueryRowContext(ctx, ensureSport, arg.SportKey, arg.HalfLengthSec, arg.OvertimeLengthSec)
	var s Sport
	err := row.Scan(&s.ID, &s.SportKey, &s.HalfLengthSec, &s.OvertimeLengthSec)
	return s, err
}

const getSport = `
SELECT id, sport_key, half_length_sec, overtime_length_sec
FROM sports
WHERE id = $1
`

// GetSport returns a sport row by id.
func (q *Queries) GetSport(ctx context.Context, id int) (Sport, error) {
	row := q.db.QueryRowContext(ctx, getSport, id)
	var s Sport
	err := row.Scan(&s.ID, &s.SportKey, &s.HalfLengthSec, &s.OvertimeLengthSec)
	return s, err
}
