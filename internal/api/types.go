package api

import (
	"encoding/json"
	"time"
)

// User is the signed-in clinician.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
}

// AuthResponse is returned by login.
type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	User        json.RawMessage `json:"user"`
}

// RegisterRequest creates a clinician account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Patient is a backend patient record.
type Patient struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender,omitempty"`
	Age       int    `json:"age,omitempty"`
}

// FullName joins first and last name.
func (p Patient) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// NoteStatus is the lifecycle state of a SOAP note.
type NoteStatus string

// Note statuses.
const (
	StatusDraft     NoteStatus = "draft"
	StatusPending   NoteStatus = "pending"
	StatusCompleted NoteStatus = "completed"
)

// SoapNoteInput is the create/update payload.
type SoapNoteInput struct {
	PatientID           string `json:"patientId,omitempty"`
	Symptoms            string `json:"symptoms"`
	PhysicalExamination string `json:"physicalExamination"`
	LabInvestigations   string `json:"labInvestigations"`
	Imaging             string `json:"imaging"`
	Diagnosis           string `json:"diagnosis"`
	Management          string `json:"management"`
	Icd10Code           string `json:"icd10Code,omitempty"`
	Icd10Description    string `json:"icd10Description,omitempty"`
}

// SoapNote is a stored note.
type SoapNote struct {
	SoapNoteInput
	ID               string     `json:"id"`
	Status           NoteStatus `json:"status,omitempty"`
	Patient          *Patient   `json:"patient,omitempty"`
	PatientName      string     `json:"patientName,omitempty"`
	CreatedBy        string     `json:"createdBy,omitempty"`
	LastEditedByName string     `json:"lastEditedByName,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// NoteList is one page of notes.
type NoteList struct {
	Data  []SoapNote `json:"data"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// PatientList is one page of patients.
type PatientList struct {
	Data  []Patient `json:"data"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

// NoteQuery filters ListSoapNotes. Zero fields are omitted.
type NoteQuery struct {
	Page        int
	Limit       int
	Status      NoteStatus
	PatientName string
	SortBy      string
	SortOrder   string
}

// NoteStatistics summarizes the clinician's notes.
type NoteStatistics struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Today     int `json:"today"`
}

// PatientHistory is every note recorded for one patient.
type PatientHistory struct {
	Patient   Patient    `json:"patient"`
	SoapNotes []SoapNote `json:"soapNotes"`
}

// Icd10Code is one ICD-10 lookup result.
type Icd10Code struct {
	Code             string `json:"code"`
	ShortDescription string `json:"short_description"`
	UsageCount       int    `json:"usage_count"`
}
