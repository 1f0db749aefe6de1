package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository"
	"github.com/jwalitptl/optica-admin/pkg/collection"
)

const patientColumns = `id, first_name, last_name, identification, to_char(birth_date, 'YYYY-MM-DD') AS birth_date,
	gender, email, phone, address, city, country, occupation, allergies, medical_notes, photo_url,
	status, created_at, updated_at`

var PatientList = ListSpec{
	Select: patientColumns,
	From:   "patients",
	Search: map[string]string{
		"first_name":     "first_name",
		"last_name":      "last_name",
		"identification": "identification",
		"email":          "email",
		"phone":          "phone",
	},
	Filters: map[string]string{
		"status": "status",
		"gender": "gender",
		"city":   "city",
	},
	Sorts: map[string]string{
		"first_name": "first_name",
		"last_name":  "last_name",
		"created_at": "created_at",
	},
	Order: "last_name ASC, first_name ASC, id ASC",
}

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) List(ctx context.Context, q collection.Query) ([]model.Patient, int, error) {
	var patients []model.Patient
	total, err := r.list(ctx, &patients, PatientList, q)
	if err != nil {
		return nil, 0, mapError(err, "patients", "patient")
	}
	return patients, total, nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, "SELECT "+patientColumns+" FROM patients WHERE id = $1", id); err != nil {
		return nil, mapError(err, "patients", "patient")
	}
	return &patient, nil
}

func (r *patientRepository) Create(ctx context.Context, p *model.Patient) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO patients (
				first_name, last_name, identification, birth_date, gender, email, phone,
				address, city, country, occupation, allergies, medical_notes, photo_url,
				status, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW()
			)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query,
			p.FirstName, p.LastName, p.Identification, p.BirthDate, p.Gender, p.Email, p.Phone,
			p.Address, p.City, p.Country, p.Occupation, p.Allergies, p.MedicalNotes, p.PhotoURL,
			p.Status,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		return r.emit(ctx, tx, "patients", "create", model.EntityPayload{ID: p.ID})
	})
	return mapError(err, "patients", "patient")
}

func (r *patientRepository) Update(ctx context.Context, p *model.Patient) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE patients SET
				first_name = $1, last_name = $2, identification = $3, birth_date = $4, gender = $5,
				email = $6, phone = $7, address = $8, city = $9, country = $10, occupation = $11,
				allergies = $12, medical_notes = $13, photo_url = $14, status = $15, updated_at = NOW()
			WHERE id = $16
			RETURNING created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query,
			p.FirstName, p.LastName, p.Identification, p.BirthDate, p.Gender, p.Email, p.Phone,
			p.Address, p.City, p.Country, p.Occupation, p.Allergies, p.MedicalNotes, p.PhotoURL,
			p.Status, p.ID,
		).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		return r.emit(ctx, tx, "patients", "update", model.EntityPayload{ID: p.ID})
	})
	return mapError(err, "patients", "patient")
}

func (r *patientRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "patients", "patient", id)
}
