package model

const (
	GenderFemale = "female"
	GenderMale   = "male"
	GenderOther  = "other"
)

type Patient struct {
	Base
	FirstName      string  `json:"first_name" db:"first_name"`
	LastName       string  `json:"last_name" db:"last_name"`
	Identification string  `json:"identification" db:"identification"`
	BirthDate      *string `json:"birth_date" db:"birth_date"`
	Gender         *string `json:"gender" db:"gender"`
	Email          string  `json:"email" db:"email"`
	Phone          string  `json:"phone" db:"phone"`
	Address        *string `json:"address" db:"address"`
	City           *string `json:"city" db:"city"`
	Country        *string `json:"country" db:"country"`
	Occupation     *string `json:"occupation" db:"occupation"`
	Allergies      *string `json:"allergies" db:"allergies"`
	MedicalNotes   *string `json:"medical_notes" db:"medical_notes"`
	PhotoURL       *string `json:"photo_url" db:"photo_url"`
	Status         string  `json:"status" db:"status"`
}

func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// PatientInput is the multi-step patient form. The console wizard groups its
// fields with PatientSteps.
type PatientInput struct {
	FirstName      string  `json:"first_name" validate:"required,max=100"`
	LastName       string  `json:"last_name" validate:"required,max=100"`
	Identification string  `json:"identification" validate:"required,max=20"`
	BirthDate      *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Gender         *string `json:"gender" validate:"omitempty,oneof=female male other"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          string  `json:"phone" validate:"required,max=30"`
	Address        *string `json:"address" validate:"omitempty,max=255"`
	City           *string `json:"city" validate:"omitempty,max=100"`
	Country        *string `json:"country" validate:"omitempty,max=100"`
	Occupation     *string `json:"occupation" validate:"omitempty,max=100"`
	Allergies      *string `json:"allergies" validate:"omitempty,max=1000"`
	MedicalNotes   *string `json:"medical_notes" validate:"omitempty,max=2000"`
	PhotoURL       *string `json:"photo_url" validate:"omitempty,url"`
	Status         string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

// PatientStep names one tab of the patient form and the fields it owns.
type PatientStep struct {
	ID     string
	Title  string
	Fields []string
}

var PatientSteps = []PatientStep{
	{ID: "personal", Title: "Personal", Fields: []string{"first_name", "last_name", "identification", "birth_date", "gender"}},
	{ID: "contact", Title: "Contact", Fields: []string{"email", "phone"}},
	{ID: "location", Title: "Location", Fields: []string{"address", "city", "country"}},
	{ID: "health", Title: "Health", Fields: []string{"occupation", "allergies", "medical_notes"}},
	{ID: "photo", Title: "Photo", Fields: []string{"photo_url"}},
}
