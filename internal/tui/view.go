package tui

import (
	"strings"

	"github.com/alkime/scribe/internal/scribe"
	"github.com/alkime/scribe/internal/tui/style"
	"github.com/alkime/scribe/pkg/uictl"
)

// View renders the editor.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.header())
	sb.WriteString("\n")
	sb.WriteString(m.status())
	sb.WriteString("\n")
	if line := m.message(); line != "" {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	for i, buf := range m.state.Sections {
		sb.WriteString(m.section(i, buf))
		sb.WriteString("\n")
	}

	if m.editing {
		sb.WriteString(m.help.View(editKeys{m.keys}))
	} else {
		sb.WriteString(m.help.View(m.keys))
	}

	return sb.String()
}

func (m Model) header() string {
	out := style.Title.Render("Scribe")
	patient := m.cfg.PatientName
	if patient == "" {
		patient = m.state.PatientID
	}
	if patient != "" {
		out += "  " + style.Label.Render("Patient:") + " " + patient
	}
	if m.state.NoteID != "" {
		out += "  " + style.Muted.Render("note "+m.state.NoteID)
	}
	if !m.state.Icd10.IsZero() {
		out += "  " + style.Label.Render("ICD-10:") + " " + m.state.Icd10.String()
	}
	return out
}

func (m Model) status() string {
	st := m.state

	switch {
	case st.IsRecording():
		level := uictl.DialFunc[float64](func() float64 { return st.Level })
		return style.Error.Render("● Recording "+st.ActiveLabel.Title()) +
			"  " + style.Subtitle.Render(scribe.FormatDuration(st.Elapsed)) +
			"  " + m.meter.ViewAs(uictl.Fraction[float64](level)) +
			"\n" + m.wave.View()

	case st.IsTranscribing():
		return m.spinner.ViewWithDetail(st.ActiveLabel.Title() + " " + scribe.FormatDuration(st.Elapsed))

	case st.FormattingAll:
		sp := m.spinner
		sp.Title = "Formatting all sections"
		return sp.View()
	}

	out := style.Subtitle.Render("Ready")
	if st.CanRetry {
		out += "  " + style.Warning.Render("transcription for "+st.RetryLabel.Title()+" can be retried (R)")
	}
	if st.LastTranscript != "" {
		out += "\n" + style.Subtitle.Render("Unapplied transcript: "+st.LastTranscript)
	}
	return out
}

func (m Model) message() string {
	switch {
	case m.err != nil:
		return style.Error.Render(m.err.Error())
	case m.notice == nil:
		return ""
	case m.notice.IsError():
		return style.Error.Render(m.notice.Message)
	case m.notice.Kind == scribe.NoticeNoSpeech || m.notice.Kind == scribe.NoticeTranscriptDiscarded:
		return style.Warning.Render(m.notice.Message)
	default:
		return style.Success.Render(m.notice.Message)
	}
}

func (m Model) section(i int, buf scribe.SectionBuffer) string {
	frame := style.Section
	recording := m.state.Status != scribe.Idle && m.state.ActiveLabel == buf.Label
	switch {
	case recording:
		frame = style.Recording
	case i == m.cursor:
		frame = style.Selected
	}
	frame = frame.Width(max(20, m.width-4))

	title := style.Label.Render(buf.Label.Title())
	if recording {
		title += " " + style.Error.Render("● "+m.state.Status.String())
	}
	if buf.IsFormatting {
		title += " " + style.Progress.Render("formatting…")
	}

	var body string
	switch {
	case m.editing && i == m.cursor:
		body = m.editor.View()
	case buf.Text == "":
		body = style.Muted.Render("(empty)")
	default:
		body = buf.Text
	}

	return frame.Render(title + "\n" + body)
}
