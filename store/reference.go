// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/models"
)

func (q *Queries) InsertFaculty(ctx context.Context, f models.Faculty) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO faculty (id, name, code) VALUES ($1, $2, $3)
	`, f.ID, f.Name, f.Code)
	if err != nil {
		return insertErr(err, "faculty")
	}
	return nil
}

func (q *Queries) InsertDepartment(ctx context.Context, d models.Department) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO department (id, faculty_id, name, code) VALUES ($1, $2, $3, $4)
	`, d.ID, d.FacultyID, d.Name, d.Code)
	if err != nil {
		return insertErr(err, "department")
	}
	return nil
}

func (q *Queries) InsertProgramme(ctx context.Context, p models.Programme) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO programme (id, department_id, name, code) VALUES ($1, $2, $3, $4)
	`, p.ID, p.DepartmentID, p.Name, p.Code)
	if err != nil {
		return insertErr(err, "programme")
	}
	return nil
}

const departmentColumns = `d.id, d.name, d.code, f.id, f.name`

func scanDepartment(row interface{ Scan(...any) error }) (models.Department, error) {
	var d models.Department
	err := row.Scan(&d.ID, &d.Name, &d.Code, &d.FacultyID, &d.FacultyName)
	return d, err
}

func (q *Queries) GetDepartment(ctx context.Context, id string) (models.Department, error) {
	d, err := scanDepartment(q.q.QueryRowContext(ctx, `
		SELECT `+departmentColumns+`
		FROM department d JOIN faculty f ON f.id = d.faculty_id
		WHERE d.id = $1
	`, id))
	if err != nil {
		return models.Department{}, notFound(err, "department")
	}
	return d, nil
}

// ResolveDepartment walks voter → programme → department → faculty.
// A voter without a programme has no department and yields ErrNotFound.
func (q *Queries) ResolveDepartment(ctx context.Context, voterID string) (models.Department, error) {
	d, err := scanDepartment(q.q.QueryRowContext(ctx, `
		SELECT `+departmentColumns+`
		FROM voter v
		JOIN programme p ON p.id = v.programme_id
		JOIN department d ON d.id = p.department_id
		JOIN faculty f ON f.id = d.faculty_id
		WHERE v.id = $1
	`, voterID))
	if err != nil {
		return models.Department{}, notFound(err, "voter department")
	}
	return d, nil
}

// ListDepartments returns the departments of one faculty, or all of them when
// facultyID is empty.
func (q *Queries) ListDepartments(ctx context.Context, facultyID string) ([]models.Department, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+departmentColumns+`
		FROM department d JOIN faculty f ON f.id = d.faculty_id
		WHERE $1 = '' OR d.faculty_id = $1
		ORDER BY f.name, d.name, d.id
	`, facultyID)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var departments []models.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// Voters

const voterColumns = `id, registration_number, first_name, last_name, email, programme_id,
	is_active, secret_hash, last_login_ip, created_at`

func scanVoter(row interface{ Scan(...any) error }) (models.Voter, error) {
	var v models.Voter
	err := row.Scan(&v.ID, &v.RegistrationNumber, &v.FirstName, &v.LastName, &v.Email,
		&v.ProgrammeID, &v.IsActive, &v.SecretHash, &v.LastLoginIP, &v.CreatedAt)
	return v, err
}

func (q *Queries) InsertVoter(ctx context.Context, v models.Voter) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO voter (id, registration_number, first_name, last_name, email, programme_id,
			is_active, secret_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, v.ID, v.RegistrationNumber, v.FirstName, v.LastName, v.Email, v.ProgrammeID,
		v.IsActive, v.SecretHash, v.CreatedAt)
	if err != nil {
		return insertErr(err, "voter")
	}
	return nil
}

func (q *Queries) GetVoter(ctx context.Context, id string) (models.Voter, error) {
	v, err := scanVoter(q.q.QueryRowContext(ctx, `
		SELECT `+voterColumns+` FROM voter WHERE id = $1
	`, id))
	if err != nil {
		return models.Voter{}, notFound(err, "voter")
	}
	return v, nil
}

func (q *Queries) GetVoterByRegistration(ctx context.Context, registrationNumber string) (models.Voter, error) {
	v, err := scanVoter(q.q.QueryRowContext(ctx, `
		SELECT `+voterColumns+` FROM voter WHERE registration_number = $1
	`, registrationNumber))
	if err != nil {
		return models.Voter{}, notFound(err, "voter")
	}
	return v, nil
}

// SetVoterActive soft-activates or deactivates a voter. Voters are never deleted.
func (q *Queries) SetVoterActive(ctx context.Context, id string, active bool) error {
	res, err := q.q.ExecContext(ctx, `UPDATE voter SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("update voter: %w", err)
	}
	return requireRow(res, "voter")
}

func (q *Queries) UpdateLastLoginIP(ctx context.Context, id, ip string) error {
	_, err := q.q.ExecContext(ctx, `UPDATE voter SET last_login_ip = $1 WHERE id = $2`, ip, id)
	if err != nil {
		return fmt.Errorf("update last login ip: %w", err)
	}
	return nil
}

// Parties

func (q *Queries) InsertParty(ctx context.Context, p models.Party) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO party (id, name, acronym, description, color_code, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Name, p.Acronym, p.Description, p.ColorCode, p.IsActive, p.CreatedAt)
	if err != nil {
		return insertErr(err, "party")
	}
	return nil
}

func (q *Queries) GetParty(ctx context.Context, id string) (models.Party, error) {
	var p models.Party
	err := q.q.QueryRowContext(ctx, `
		SELECT id, name, acronym, description, color_code, is_active, created_at
		FROM party WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Acronym, &p.Description, &p.ColorCode, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return models.Party{}, notFound(err, "party")
	}
	return p, nil
}

// LockParty takes a row lock on the party for the rest of the transaction so
// capacity counts for that party are serialized. SQLite write transactions
// already hold the database lock from BEGIN IMMEDIATE.
func (q *Queries) LockParty(ctx context.Context, id string) error {
	query := `SELECT 1 FROM party WHERE id = $1`
	if q.dialect == db.Postgres {
		query += ` FOR UPDATE`
	}

	found, err := q.exists(ctx, query, id)
	if err != nil {
		return fmt.Errorf("lock party: %w", err)
	}
	if !found {
		return fmt.Errorf("party: %w", ErrNotFound)
	}
	return nil
}

// Positions

func (q *Queries) ListPositions(ctx context.Context) ([]models.Position, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT id, name, display_name, display_order FROM position ORDER BY display_order
	`)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.Name, &p.DisplayName, &p.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (q *Queries) GetPositionByName(ctx context.Context, name string) (models.Position, error) {
	var p models.Position
	err := q.q.QueryRowContext(ctx, `
		SELECT id, name, display_name, display_order FROM position WHERE name = $1
	`, name).Scan(&p.ID, &p.Name, &p.DisplayName, &p.DisplayOrder)
	if err != nil {
		return models.Position{}, notFound(err, "position")
	}
	return p, nil
}
