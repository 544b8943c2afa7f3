package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quickbite/models"
)

// AgentRepository stores agent availability records. Records are created
// lazily on first write; reads of an unknown agent return the default
// profile (offline, no location, zero counters) without persisting it.
type AgentRepository struct {
	db *sql.DB
}

func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

const agentColumns = `uid, vehicle_type, license_plate, status, current_lat, current_lng, location_updated_at,
total_deliveries, total_earnings, rating, last_delivery_at, created_at, updated_at`

// Get fetches an agent record. Returns nil, nil when no record exists yet.
func (r *AgentRepository) Get(ctx context.Context, uid string) (*models.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE uid = ?`, uid)
	a, err := scanAgent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// GetOrDefault fetches an agent record, substituting the default profile
// when none exists. The default is not persisted.
func (r *AgentRepository) GetOrDefault(ctx context.Context, uid string) (*models.Agent, error) {
	a, err := r.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return models.DefaultAgent(uid), nil
	}
	return a, nil
}

// UpsertStatus unconditionally sets the agent's availability, creating the
// record with defaults on first write. Location is stored with its own
// updated timestamp when supplied.
func (r *AgentRepository) UpsertStatus(ctx context.Context, uid string, status models.AgentStatus, loc *models.Location, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ts := models.FormatTime(now)
	if loc != nil {
		_, err := r.db.ExecContext(ctx, `INSERT INTO agents (uid, status, current_lat, current_lng, location_updated_at, created_at, updated_at)
VALUES (?,?,?,?,?,?,?)
ON CONFLICT(uid) DO UPDATE SET
status = excluded.status,
current_lat = excluded.current_lat,
current_lng = excluded.current_lng,
location_updated_at = excluded.location_updated_at,
updated_at = excluded.updated_at`,
			uid, string(status), loc.Lat, loc.Lng, ts, ts, ts)
		return err
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO agents (uid, status, created_at, updated_at)
VALUES (?,?,?,?)
ON CONFLICT(uid) DO UPDATE SET
status = excluded.status,
updated_at = excluded.updated_at`,
		uid, string(status), ts, ts)
	return err
}

// UpdateProfile updates the agent-owned profile fields, creating the record
// with defaults when absent. Nil fields are left untouched.
func (r *AgentRepository) UpdateProfile(ctx context.Context, uid string, vehicleType, licensePlate *string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ts := models.FormatTime(now)
	_, err := r.db.ExecContext(ctx, `INSERT INTO agents (uid, vehicle_type, license_plate, created_at, updated_at)
VALUES (?, COALESCE(?, 'bike'), COALESCE(?, ''), ?, ?)
ON CONFLICT(uid) DO UPDATE SET
vehicle_type = COALESCE(?, agents.vehicle_type),
license_plate = COALESCE(?, agents.license_plate),
updated_at = ?`,
		uid, vehicleType, licensePlate, ts, ts,
		vehicleType, licensePlate, ts)
	return err
}

// RecordDelivery increments the agent's delivery counters by one completed
// order. Called by the lifecycle engine only, on the delivered transition.
func (r *AgentRepository) RecordDelivery(ctx context.Context, uid string, fee float64, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ts := models.FormatTime(now)
	_, err := r.db.ExecContext(ctx, `INSERT INTO agents (uid, total_deliveries, total_earnings, last_delivery_at, created_at, updated_at)
VALUES (?, 1, ?, ?, ?, ?)
ON CONFLICT(uid) DO UPDATE SET
total_deliveries = agents.total_deliveries + 1,
total_earnings = agents.total_earnings + ?,
last_delivery_at = ?,
updated_at = ?`,
		uid, fee, ts, ts, ts,
		fee, ts, ts)
	return err
}

func scanAgent(s scanner) (*models.Agent, error) {
	var a models.Agent
	var status string
	var lat, lng sql.NullFloat64
	var locUpdated, lastDelivery sql.NullString
	err := s.Scan(&a.UID, &a.VehicleType, &a.LicensePlate, &status, &lat, &lng, &locUpdated,
		&a.TotalDeliveries, &a.TotalEarnings, &a.Rating, &lastDelivery, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = models.AgentStatus(status)
	if lat.Valid && lng.Valid {
		a.CurrentLocation = &models.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	a.LocationUpdatedAt = nullStr(locUpdated)
	a.LastDeliveryAt = nullStr(lastDelivery)
	return &a, nil
}
