package store

import (
	"database/sql"
	"time"

	"github.com/baltix/meteostation/internal/altitude"
	"github.com/baltix/meteostation/internal/solar"
	"github.com/baltix/meteostation/internal/station"
	"github.com/baltix/meteostation/internal/wind"
)

type Store struct {
	db  *sql.DB
	loc *time.Location
}

func New(db *sql.DB, loc *time.Location) *Store {
	return &Store{db: db, loc: loc}
}

func (s *Store) InsertSnapshot(snap station.Snapshot) error {
	_, err := s.db.Exec(`
		INSERT INTO snapshots (sampled_at, temp, pressure_hpa, pressure_valid, humidity, humidity_temp, humidity_fault,
			alt_uncompensated, alt_compensated, alt_average,
			sun_elevation, sun_azimuth, sun_adj_elevation, sun_adj_azimuth, sun_level,
			wind_speed, wind_dir, latitude, longitude, cycle_faults)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snap.Time.UTC(), snap.Temperature, snap.PressureHPa, snap.PressureValid,
		snap.Humidity, snap.HumidityTemp, snap.HumidityFault,
		snap.Altitude.Uncompensated, snap.Altitude.Compensated, snap.Altitude.Average,
		snap.Sun.Elevation, snap.Sun.Azimuth, snap.Sun.AdjElevation, snap.Sun.AdjAzimuth, snap.Sun.SunLevel,
		snap.Wind.Speed, snap.Wind.Direction, snap.Latitude, snap.Longitude, snap.CycleFaults)
	return err
}

const snapshotColumns = `sampled_at, temp, pressure_hpa, pressure_valid, humidity, humidity_temp, humidity_fault,
	alt_uncompensated, alt_compensated, alt_average,
	sun_elevation, sun_azimuth, sun_adj_elevation, sun_adj_azimuth, sun_level,
	wind_speed, wind_dir, latitude, longitude, cycle_faults`

func scanSnapshot(row interface{ Scan(...any) error }) (station.Snapshot, error) {
	var snap station.Snapshot
	var alt altitude.Triple
	var sun solar.Angles
	var w wind.State
	err := row.Scan(&snap.Time, &snap.Temperature, &snap.PressureHPa, &snap.PressureValid,
		&snap.Humidity, &snap.HumidityTemp, &snap.HumidityFault,
		&alt.Uncompensated, &alt.Compensated, &alt.Average,
		&sun.Elevation, &sun.Azimuth, &sun.AdjElevation, &sun.AdjAzimuth, &sun.SunLevel,
		&w.Speed, &w.Direction, &snap.Latitude, &snap.Longitude, &snap.CycleFaults)
	if err != nil {
		return snap, err
	}
	snap.Pressure = snap.PressureHPa * 100
	snap.Altitude = alt
	snap.Sun = sun
	snap.Wind = w
	snap.WindName = w.DirectionName()
	return snap, nil
}

func (s *Store) LatestSnapshot() (*station.Snapshot, error) {
	row := s.db.QueryRow(`
		SELECT ` + snapshotColumns + `
		FROM snapshots
		ORDER BY sampled_at DESC
		LIMIT 1
	`)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Store) GetSnapshots(start, end time.Time) ([]station.Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE sampled_at >= ? AND sampled_at <= ?
		ORDER BY sampled_at ASC
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []station.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

type DayStats struct {
	TempMin     sql.NullFloat64
	TempMax     sql.NullFloat64
	HumidityAvg sql.NullFloat64
	PressureAvg sql.NullFloat64
	WindMax     sql.NullInt64
}

// GetDayStats aggregates the snapshots of one local calendar day.
func (s *Store) GetDayStats(date time.Time) (*DayStats, error) {
	localDate := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)
	y, m, d := localDate.Date()

	startUTC := localDate.UTC()
	endUTC := time.Date(y, m, d+1, 0, 0, 0, 0, s.loc).UTC()

	var stats DayStats
	err := s.db.QueryRow(`
		SELECT MIN(temp), MAX(temp), AVG(humidity), AVG(pressure_hpa), MAX(wind_speed)
		FROM snapshots
		WHERE sampled_at >= ? AND sampled_at < ?
	`, startUTC, endUTC).Scan(&stats.TempMin, &stats.TempMax, &stats.HumidityAvg, &stats.PressureAvg, &stats.WindMax)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// PruneBefore deletes snapshots sampled before the cutoff and returns how
// many rows were removed.
func (s *Store) PruneBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM snapshots WHERE sampled_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
