package event

import "time"

const PatientRegisteredDestination string = "patient_registered"

type PatientRegisteredMessage struct {
	PatientID           int64     `json:"patient_id,string"`
	MedicalRecordNumber string    `json:"medical_record_number"`
	FullName            string    `json:"full_name"`
	RegisteredAt        time.Time `json:"registered_at"`
}
