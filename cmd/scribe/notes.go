package main

import (
	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/scribe"
)

// noteFromAPI loads a stored note into the editor's representation.
func noteFromAPI(n *api.SoapNote) scribe.Note {
	patientID := n.PatientID
	if patientID == "" && n.Patient != nil {
		patientID = n.Patient.ID
	}

	// a half-filled code is dropped rather than loaded
	icd, _ := scribe.NewIcdCodeSelection(n.Icd10Code, n.Icd10Description)

	return scribe.Note{
		ID:        n.ID,
		PatientID: patientID,
		Sections: map[scribe.Label]string{
			scribe.Symptoms:            n.Symptoms,
			scribe.PhysicalExamination: n.PhysicalExamination,
			scribe.LabInvestigations:   n.LabInvestigations,
			scribe.Imaging:             n.Imaging,
			scribe.Diagnosis:           n.Diagnosis,
			scribe.Management:          n.Management,
		},
		Icd10: icd,
	}
}

// noteInput is the create/update payload for a draft.
func noteInput(n scribe.Note) api.SoapNoteInput {
	return api.SoapNoteInput{
		PatientID:           n.PatientID,
		Symptoms:            n.Text(scribe.Symptoms),
		PhysicalExamination: n.Text(scribe.PhysicalExamination),
		LabInvestigations:   n.Text(scribe.LabInvestigations),
		Imaging:             n.Text(scribe.Imaging),
		Diagnosis:           n.Text(scribe.Diagnosis),
		Management:          n.Text(scribe.Management),
		Icd10Code:           n.Icd10.Code,
		Icd10Description:    n.Icd10.ShortDescription,
	}
}
