package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doraapp/dora/internal/model"
)

type ApplicationStore struct {
	db *sql.DB
}

func NewApplicationStore(db *sql.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

const appCols = `id, user_id, destination_country, visa_type, status, current_step,
	total_steps, progress_percentage, documents_info, submitted_at, created_at, updated_at`

func scanApplication(scanner interface{ Scan(...any) error }) (*model.VisaApplication, error) {
	var a model.VisaApplication
	var docs string
	var submittedAt sql.NullTime

	err := scanner.Scan(
		&a.ID, &a.UserID, &a.DestinationCountry, &a.VisaType, &a.Status,
		&a.CurrentStep, &a.TotalSteps, &a.ProgressPercentage, &docs,
		&submittedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if docs != "" {
		if err := json.Unmarshal([]byte(docs), &a.DocumentsInfo); err != nil {
			return nil, fmt.Errorf("decode documents_info: %w", err)
		}
	}
	if submittedAt.Valid {
		a.SubmittedAt = &submittedAt.Time
	}
	return &a, nil
}

func (s *ApplicationStore) Create(userID int64, destination, visaType string, totalSteps int) (*model.VisaApplication, error) {
	if totalSteps < 1 {
		totalSteps = 1
	}
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO visa_applications (id, user_id, destination_country, visa_type, status, current_step, total_steps, progress_percentage, documents_info)
		 VALUES (?, ?, ?, ?, ?, 1, ?, 0, '{}')`,
		id, userID, destination, visaType, model.AppDraft, totalSteps,
	)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return s.GetByID(id)
}

func (s *ApplicationStore) GetByID(id string) (*model.VisaApplication, error) {
	row := s.db.QueryRow(`SELECT `+appCols+` FROM visa_applications WHERE id = ?`, id)
	a, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

func (s *ApplicationStore) ListByUser(userID int64) ([]model.VisaApplication, error) {
	rows, err := s.db.Query(
		`SELECT `+appCols+` FROM visa_applications WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []model.VisaApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// Update applies the mutable fields of an application. Progress is always
// recomputed from current_step and total_steps so the stored percentage
// cannot drift from the invariant.
func (s *ApplicationStore) Update(a *model.VisaApplication) (*model.VisaApplication, error) {
	if !model.ValidAppStatus(a.Status) {
		return nil, fmt.Errorf("invalid application status %q", a.Status)
	}

	docs, err := json.Marshal(a.DocumentsInfo)
	if err != nil {
		return nil, fmt.Errorf("encode documents_info: %w", err)
	}
	if a.DocumentsInfo == nil {
		docs = []byte("{}")
	}

	var submittedAt sql.NullTime
	if a.SubmittedAt != nil {
		submittedAt = sql.NullTime{Time: *a.SubmittedAt, Valid: true}
	}

	_, err = s.db.Exec(
		`UPDATE visa_applications SET destination_country = ?, visa_type = ?, status = ?,
		   current_step = ?, total_steps = ?, progress_percentage = ?, documents_info = ?,
		   submitted_at = ?, updated_at = ?
		 WHERE id = ?`,
		a.DestinationCountry, a.VisaType, a.Status, a.CurrentStep, a.TotalSteps,
		model.Progress(a.CurrentStep, a.TotalSteps), string(docs), submittedAt,
		time.Now().UTC(), a.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	return s.GetByID(a.ID)
}

// UpdateStep moves an application to the given step, deriving progress and
// status. Reaching the final step stamps submitted_at.
func (s *ApplicationStore) UpdateStep(id string, step int, docs map[string]bool) (*model.VisaApplication, error) {
	a, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}

	a.CurrentStep = step
	a.Status = model.StatusForStep(step, a.TotalSteps, a.Status)
	if a.Status == model.AppSubmitted && a.SubmittedAt == nil {
		now := time.Now().UTC()
		a.SubmittedAt = &now
	}
	if docs != nil {
		if a.DocumentsInfo == nil {
			a.DocumentsInfo = make(map[string]bool)
		}
		for k, v := range docs {
			a.DocumentsInfo[k] = v
		}
	}
	return s.Update(a)
}

func (s *ApplicationStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM visa_applications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return nil
}
