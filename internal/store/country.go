package store

import (
	"database/sql"
	"fmt"

	"github.com/doraapp/dora/internal/model"
)

type CountryStore struct {
	db *sql.DB
}

func NewCountryStore(db *sql.DB) *CountryStore {
	return &CountryStore{db: db}
}

const countryCols = `code, name, flag, region, visa_required, visa_free_stay_days,
	processing_fee, currency, description, created_at, updated_at`

func scanCountry(scanner interface{ Scan(...any) error }) (*model.Country, error) {
	var c model.Country
	var visaRequired int

	err := scanner.Scan(
		&c.Code, &c.Name, &c.Flag, &c.Region, &visaRequired, &c.VisaFreeStay,
		&c.ProcessingFee, &c.Currency, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.VisaRequired = visaRequired != 0
	return &c, nil
}

func (s *CountryStore) Upsert(c model.Country) (*model.Country, error) {
	visaRequired := 0
	if c.VisaRequired {
		visaRequired = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO countries (code, name, flag, region, visa_required, visa_free_stay_days, processing_fee, currency, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
		   name = excluded.name, flag = excluded.flag, region = excluded.region,
		   visa_required = excluded.visa_required, visa_free_stay_days = excluded.visa_free_stay_days,
		   processing_fee = excluded.processing_fee, currency = excluded.currency,
		   description = excluded.description, updated_at = CURRENT_TIMESTAMP`,
		c.Code, c.Name, c.Flag, c.Region, visaRequired, c.VisaFreeStay,
		c.ProcessingFee, c.Currency, c.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert country: %w", err)
	}
	return s.GetByCode(c.Code)
}

func (s *CountryStore) GetByCode(code string) (*model.Country, error) {
	row := s.db.QueryRow(`SELECT `+countryCols+` FROM countries WHERE code = ?`, code)
	c, err := scanCountry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get country: %w", err)
	}
	return c, nil
}

func (s *CountryStore) List() ([]model.Country, error) {
	rows, err := s.db.Query(`SELECT ` + countryCols + ` FROM countries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	var countries []model.Country
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, *c)
	}
	return countries, rows.Err()
}

func (s *CountryStore) Delete(code string) error {
	_, err := s.db.Exec(`DELETE FROM countries WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("delete country: %w", err)
	}
	return nil
}
