package db

import (
	"database/sql"
	"fmt"
)

// SeedFixtures populates the reference tables with a demo property so the
// engine can be exercised from the CLI. IDs are explicit so fixtures can be
// referenced from docs and tests.
func SeedFixtures(database *sql.DB) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()

	hotels := []struct {
		id         int64
		code, name string
		active     bool
	}{
		{1, "GRD", "Grand Harbour Hotel", true},
		{2, "SEA", "Seaside Resort", true},
		{3, "OLD", "Old Town Inn", false},
	}
	for _, h := range hotels {
		if _, err := tx.Exec(
			"INSERT INTO hotels (id, code, name, is_active) VALUES (?, ?, ?, ?)",
			h.id, h.code, h.name, h.active,
		); err != nil {
			return fmt.Errorf("seed hotels: %w", err)
		}
	}

	departments := []struct {
		id, hotelID int64
		name        string
	}{
		{1, 1, "Engineering"},
		{2, 1, "Housekeeping"},
		{3, 1, "Front Office"},
		{4, 2, "Engineering"},
	}
	for _, d := range departments {
		if _, err := tx.Exec(
			"INSERT INTO departments (id, hotel_id, name) VALUES (?, ?, ?)",
			d.id, d.hotelID, d.name,
		); err != nil {
			return fmt.Errorf("seed departments: %w", err)
		}
	}

	locations := []struct {
		id, hotelID, parentID int64
		name, floor           string
	}{
		{1, 1, 0, "Main Building", ""},
		{2, 1, 1, "Room 101", "1"},
		{3, 1, 1, "Lobby", "G"},
		{4, 1, 1, "Kitchen", "G"},
		{5, 2, 0, "Pool Deck", "G"},
	}
	for _, l := range locations {
		if _, err := tx.Exec(
			"INSERT INTO locations (id, hotel_id, parent_id, name, floor) VALUES (?, ?, ?, ?, ?)",
			l.id, l.hotelID, nullInt(l.parentID), l.name, l.floor,
		); err != nil {
			return fmt.Errorf("seed locations: %w", err)
		}
	}

	items := []struct {
		id, hotelID, locationID int64
		name, serial            string
	}{
		{1, 1, 2, "Air conditioning unit", "AC-101-A"},
		{2, 1, 4, "Dishwasher", "DW-K-01"},
		{3, 2, 5, "Pool pump", "PP-01"},
	}
	for _, i := range items {
		if _, err := tx.Exec(
			"INSERT INTO items (id, hotel_id, location_id, name, serial_number) VALUES (?, ?, ?, ?, ?)",
			i.id, i.hotelID, i.locationID, i.name, i.serial,
		); err != nil {
			return fmt.Errorf("seed items: %w", err)
		}
	}

	users := []struct {
		id, hotelID, deptID int64
		name, email         string
		available           bool
	}{
		{1, 1, 3, "Front Desk Manager", "frontdesk@grand.example", true},
		{2, 1, 1, "Chief Engineer", "chief@grand.example", true},
		{3, 1, 1, "Technician On Shift", "tech1@grand.example", true},
		{4, 1, 1, "Technician On Leave", "tech2@grand.example", false},
		{5, 2, 4, "Resort Engineer", "eng@seaside.example", true},
	}
	for _, u := range users {
		if _, err := tx.Exec(
			"INSERT INTO users (id, hotel_id, department_id, name, email, is_available) VALUES (?, ?, ?, ?, ?, ?)",
			u.id, u.hotelID, u.deptID, u.name, u.email, u.available,
		); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	slas := []struct {
		hotelID              int64
		priority             string
		response, resolution int
	}{
		{1, "critical", 15, 120},
		{1, "high", 30, 240},
		{1, "medium", 120, 1440},
		{2, "critical", 30, 240},
	}
	for _, s := range slas {
		if _, err := tx.Exec(
			"INSERT INTO sla_configurations (hotel_id, priority, response_time_minutes, resolution_time_minutes) VALUES (?, ?, ?, ?)",
			s.hotelID, s.priority, s.response, s.resolution,
		); err != nil {
			return fmt.Errorf("seed sla_configurations: %w", err)
		}
	}

	parts := []struct {
		id, hotelID     int64
		number, name    string
		onHand, minimum int
		unitCost        string
	}{
		{1, 1, "FLT-20", "AC filter", 10, 2, "10.00"},
		{2, 1, "BLT-05", "Fan belt", 4, 1, "25.50"},
		{3, 1, "SEAL-DW", "Dishwasher door seal", 0, 1, "42.00"},
		{4, 2, "IMP-PP", "Pump impeller", 2, 1, "180.00"},
	}
	for _, p := range parts {
		if _, err := tx.Exec(
			"INSERT INTO spare_parts (id, hotel_id, part_number, name, quantity_on_hand, minimum_quantity, unit_cost) VALUES (?, ?, ?, ?, ?, ?, ?)",
			p.id, p.hotelID, p.number, p.name, p.onHand, p.minimum, p.unitCost,
		); err != nil {
			return fmt.Errorf("seed spare_parts: %w", err)
		}
	}

	return tx.Commit()
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
