package formatting

import "fmt"

const baseSystemPrompt = `You are a clinical documentation assistant. You receive raw dictated text for one section of a SOAP note and return the same content as clean, well-organized clinical prose.

Rules:
- ONLY include information that is explicitly present in the input
- DO NOT add suggestions, recommendations, typical treatments, tests or medications that were not mentioned
- DO NOT write "Not documented", "N/A", "-" or any placeholder text
- Preserve exact medication names, dosages, frequencies and measured values
- Use standard medical abbreviations where appropriate (HTN, DM, SOB, BP, HR, RR, SpO2)
- Remove filler words and repetitions from dictation
- Return only the formatted section text with no heading, preamble or commentary`

type sectionPrompt struct {
	title    string
	guidance string
}

var sectionPrompts = map[string]sectionPrompt{
	"symptoms": {
		title:    "Symptoms",
		guidance: "Organize as presenting complaint, history of presenting illness, and relevant negatives.",
	},
	"physicalExamination": {
		title:    "Physical Examination",
		guidance: "List vital signs first when present, then findings grouped by system.",
	},
	"labInvestigations": {
		title:    "Lab Investigations",
		guidance: "List each test with its result and units; include reference ranges only if dictated.",
	},
	"imaging": {
		title:    "Imaging",
		guidance: "Name each study, then its findings and impression.",
	},
	"diagnosis": {
		title:    "Diagnosis",
		guidance: "State the primary diagnosis first, then differentials if dictated.",
	},
	"management": {
		title:    "Management",
		guidance: "Use a numbered plan: medications with dose and frequency, procedures, follow-up, patient education.",
	},
}

// SectionTitle returns the display title for a section key.
func SectionTitle(section string) string {
	if p, ok := sectionPrompts[section]; ok {
		return p.title
	}

	return section
}

// SystemPrompt returns the system prompt for a section.
func SystemPrompt(section string) string {
	p, ok := sectionPrompts[section]
	if !ok {
		return baseSystemPrompt
	}

	return fmt.Sprintf("%s\n\nThis is the %s section. %s", baseSystemPrompt, p.title, p.guidance)
}

// UserPrompt wraps the dictated text.
func UserPrompt(section, text string) string {
	return fmt.Sprintf("%s section, dictated text:\n\n%s", SectionTitle(section), text)
}
