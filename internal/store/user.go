package store

import (
	"database/sql"
	"fmt"

	"github.com/doraapp/dora/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `id, email, password_hash, full_name, role, legal_status, destination_country,
	latitude, longitude, location_city, location_country, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var lat, lon sql.NullFloat64
	var city, country sql.NullString

	err := scanner.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.LegalStatus,
		&u.DestinationCountry, &lat, &lon, &city, &country, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lon.Valid {
		u.Location = &model.Location{
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
			City:      city.String,
			Country:   country.String,
		}
	}
	return &u, nil
}

func (s *UserStore) Create(email, passwordHash, fullName, legalStatus, destination string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (email, password_hash, full_name, legal_status, destination_country) VALUES (?, ?, ?, ?, ?)`,
		email, passwordHash, fullName, legalStatus, destination,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) List() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) UpdateProfile(id int64, fullName, legalStatus, destination string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET full_name = ?, legal_status = ?, destination_country = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		fullName, legalStatus, destination, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) SetLocation(id int64, loc model.Location) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET latitude = ?, longitude = ?, location_city = ?, location_country = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		loc.Latitude, loc.Longitude, loc.City, loc.Country, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set location: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
