package inbound

import "github.com/shandysiswandi/gopatient/internal/patient/usecase"

type CreatePatientRequest struct {
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	DateOfBirth         string  `json:"date_of_birth" example:"1985-07-01"`
	MedicalRecordNumber string  `json:"medical_record_number" example:"MRN-000123"`
	Email               *string `json:"email,omitempty"`
	PhoneNumber         *string `json:"phone_number,omitempty" example:"+6281234567890"`
}

func (r CreatePatientRequest) command() usecase.CreatePatientCommand {
	return usecase.CreatePatientCommand{
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		DateOfBirth:         r.DateOfBirth,
		MedicalRecordNumber: r.MedicalRecordNumber,
		Email:               r.Email,
		PhoneNumber:         r.PhoneNumber,
	}
}

type ExportPatientsRequest struct {
	Format string `json:"format" example:"csv"`
}
