// Package scribe coordinates dictation into a SOAP note: one microphone
// recording at a time bound to a section, asynchronous transcription whose
// result lands in the section that was recording, and per-section LLM
// formatting layered on top.
package scribe

import (
	"fmt"
	"strings"
)

// Label identifies one section of a note. The set is closed; see Labels.
type Label string

// Sections in clinical document order.
const (
	Symptoms            Label = "symptoms"
	PhysicalExamination Label = "physicalExamination"
	LabInvestigations   Label = "labInvestigations"
	Imaging             Label = "imaging"
	Diagnosis           Label = "diagnosis"
	Management          Label = "management"
)

var labels = []Label{Symptoms, PhysicalExamination, LabInvestigations, Imaging, Diagnosis, Management}

var titles = map[Label]string{
	Symptoms:            "Symptoms",
	PhysicalExamination: "Physical Examination",
	LabInvestigations:   "Lab Investigations",
	Imaging:             "Imaging",
	Diagnosis:           "Diagnosis",
	Management:          "Management",
}

// Labels returns every section label in document order.
func Labels() []Label {
	out := make([]Label, len(labels))
	copy(out, labels)
	return out
}

// Valid reports whether l is one of the known sections.
func (l Label) Valid() bool {
	_, ok := titles[l]
	return ok
}

// Title is the human-readable section name.
func (l Label) Title() string {
	if t, ok := titles[l]; ok {
		return t
	}
	return string(l)
}

func (l Label) String() string {
	return string(l)
}

// ParseLabel accepts a section key or title, case-insensitively, with
// spaces, dashes and underscores ignored ("physical-examination" works).
func ParseLabel(s string) (Label, error) {
	want := normalize(s)
	for _, l := range labels {
		if normalize(string(l)) == want || normalize(l.Title()) == want {
			return l, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// SectionBuffer is the text of one section.
type SectionBuffer struct {
	Label Label
	Text  string
	// IsFormatting is true only while a format request for this section is
	// in flight.
	IsFormatting bool
}

// Blank reports whether the section has no non-whitespace text.
func (b SectionBuffer) Blank() bool {
	return strings.TrimSpace(b.Text) == ""
}

// AppendTranscript adds a transcript to existing section text, separated by
// a blank line when the section already has text.
func AppendTranscript(existing, transcript string) string {
	if existing == "" {
		return transcript
	}

	return existing + "\n\n" + transcript
}

// IcdCodeSelection is the ICD-10 code attached to the diagnosis. Code and
// ShortDescription are both set or both empty.
type IcdCodeSelection struct {
	Code             string
	ShortDescription string
}

// NewIcdCodeSelection validates and builds a selection.
func NewIcdCodeSelection(code, description string) (IcdCodeSelection, error) {
	code, description = strings.TrimSpace(code), strings.TrimSpace(description)
	if code == "" || description == "" {
		return IcdCodeSelection{}, fmt.Errorf("%w: code and description are both required", ErrInvalidIcd10)
	}

	return IcdCodeSelection{Code: code, ShortDescription: description}, nil
}

// IsZero reports whether no code is selected.
func (s IcdCodeSelection) IsZero() bool {
	return s.Code == ""
}

func (s IcdCodeSelection) String() string {
	if s.IsZero() {
		return ""
	}
	return s.Code + " - " + s.ShortDescription
}

// Note is the content of one note-editing context.
type Note struct {
	ID        string
	PatientID string
	Sections  map[Label]string
	Icd10     IcdCodeSelection
}

// Text returns the text of one section.
func (n Note) Text(l Label) string {
	return n.Sections[l]
}
