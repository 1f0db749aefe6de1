package patient

import (
	"strings"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository"
	"github.com/jwalitptl/optica-admin/internal/service/crud"
)

type Service = crud.Service[model.Patient, model.PatientInput]

func NewService(repo repository.PatientRepository) *Service {
	return crud.NewService[model.Patient, model.PatientInput](repo, crud.Mapper[model.Patient, model.PatientInput]{
		New: func(in model.PatientInput) model.Patient {
			p := model.Patient{}
			apply(&p, in)
			return p
		},
		Apply: apply,
	})
}

func apply(p *model.Patient, in model.PatientInput) {
	p.FirstName = strings.TrimSpace(in.FirstName)
	p.LastName = strings.TrimSpace(in.LastName)
	p.Identification = strings.TrimSpace(in.Identification)
	p.BirthDate = optional(in.BirthDate)
	p.Gender = optional(in.Gender)
	p.Email = strings.ToLower(strings.TrimSpace(in.Email))
	p.Phone = strings.TrimSpace(in.Phone)
	p.Address = optional(in.Address)
	p.City = optional(in.City)
	p.Country = optional(in.Country)
	p.Occupation = optional(in.Occupation)
	p.Allergies = optional(in.Allergies)
	p.MedicalNotes = optional(in.MedicalNotes)
	p.PhotoURL = optional(in.PhotoURL)
	p.Status = model.StatusOrDefault(in.Status)
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
