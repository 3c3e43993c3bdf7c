package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alkime/scribe/internal/api"
	"github.com/alkime/scribe/internal/scribe"
	"github.com/alkime/scribe/internal/tui/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// LoginCmd signs in and stores the session in the keychain.
type LoginCmd struct {
	Email    string `arg:"" required:"" help:"Account email"`
	Password string `flag:"" required:"" env:"SCRIBE_PASSWORD" help:"Account password"`
}

// Run executes the login command.
func (c *LoginCmd) Run(app *App) error {
	resp, err := app.Client.Login(context.Background(), c.Email, c.Password)
	if err != nil {
		return err
	}
	app.Logger.Debug("signed in", "user_bytes", len(resp.User))

	fmt.Println(style.Success.Render("Signed in as " + c.Email))

	return nil
}

// LogoutCmd forgets the stored session.
type LogoutCmd struct{}

// Run executes the logout command.
func (c *LogoutCmd) Run(app *App) error {
	if err := app.Client.Logout(); err != nil {
		return err
	}
	fmt.Println("Signed out")

	return nil
}

// RegisterCmd creates a clinician account.
type RegisterCmd struct {
	Email     string `arg:"" required:"" help:"Account email"`
	FirstName string `flag:"" required:"" name:"first-name" help:"First name"`
	LastName  string `flag:"" required:"" name:"last-name" help:"Last name"`
	Password  string `flag:"" required:"" env:"SCRIBE_PASSWORD" help:"Account password"`
}

// Run executes the register command.
func (c *RegisterCmd) Run(app *App) error {
	user, err := app.Client.Register(context.Background(), api.RegisterRequest{
		Email:     c.Email,
		Password:  c.Password,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s. Run 'scribe login %s' to sign in.\n", user.Email, user.Email)

	return nil
}

// ForgotPasswordCmd requests a password reset email.
type ForgotPasswordCmd struct {
	Email string `arg:"" required:"" help:"Account email"`
}

// Run executes the forgot-password command.
func (c *ForgotPasswordCmd) Run(app *App) error {
	if err := app.Client.ForgotPassword(context.Background(), c.Email); err != nil {
		return err
	}
	fmt.Println("If the account exists, a reset email is on its way.")

	return nil
}

// ResetPasswordCmd sets a new password.
type ResetPasswordCmd struct {
	Token    string `arg:"" required:"" help:"Reset token from the email"`
	Password string `flag:"" required:"" env:"SCRIBE_PASSWORD" help:"New password"`
}

// Run executes the reset-password command.
func (c *ResetPasswordCmd) Run(app *App) error {
	if err := app.Client.ResetPassword(context.Background(), c.Token, c.Password); err != nil {
		return err
	}
	fmt.Println(style.Success.Render("Password updated"))

	return nil
}

// PatientsCmd groups patient lookups.
type PatientsCmd struct {
	Search  PatientSearchCmd  `cmd:"" help:"Search patients by name or patient id"`
	Recent  PatientRecentCmd  `cmd:"" help:"List recently seen patients"`
	History PatientHistoryCmd `cmd:"" help:"Show every note for a patient"`
}

// PatientSearchCmd searches patients.
type PatientSearchCmd struct {
	Query string `arg:"" required:"" help:"Name or patient id"`
}

// Run executes the patient search command.
func (c *PatientSearchCmd) Run(app *App) error {
	if len(strings.TrimSpace(c.Query)) < api.MinPatientQuery {
		return fmt.Errorf("query must be at least %d characters", api.MinPatientQuery)
	}

	patients, err := app.Client.SearchPatients(context.Background(), c.Query)
	if err != nil {
		return err
	}
	printPatients(patients)

	return nil
}

// PatientRecentCmd lists recent patients.
type PatientRecentCmd struct {
	Limit int `flag:"" default:"10" help:"How many patients to list"`
}

// Run executes the recent patients command.
func (c *PatientRecentCmd) Run(app *App) error {
	patients, err := app.Client.RecentPatients(context.Background(), c.Limit)
	if err != nil {
		return err
	}
	printPatients(patients)

	return nil
}

// PatientHistoryCmd shows a patient's notes.
type PatientHistoryCmd struct {
	ID string `arg:"" required:"" help:"Patient id"`
}

// Run executes the patient history command.
func (c *PatientHistoryCmd) Run(app *App) error {
	history, err := app.Client.PatientHistory(context.Background(), c.ID)
	if err != nil {
		return err
	}

	fmt.Println(style.Title.Render(history.Patient.FullName()))
	printNotes(history.SoapNotes)

	return nil
}

// NotesCmd groups note management.
type NotesCmd struct {
	List   NotesListCmd   `cmd:"" help:"List notes"`
	Show   NotesShowCmd   `cmd:"" help:"Print one note"`
	Delete NotesDeleteCmd `cmd:"" help:"Delete a note"`
	Status NotesStatusCmd `cmd:"" help:"Change a note's status"`
	Stats  NotesStatsCmd  `cmd:"" help:"Summarize your notes"`
}

// NotesListCmd lists notes.
type NotesListCmd struct {
	Page    int    `flag:"" default:"1" help:"Page number"`
	Limit   int    `flag:"" default:"20" help:"Notes per page"`
	Status  string `flag:"" optional:"" help:"Only notes with this status: draft, pending or completed"`
	Patient string `flag:"" optional:"" help:"Only notes for patients matching this name"`
}

// Run executes the notes list command.
func (c *NotesListCmd) Run(app *App) error {
	switch api.NoteStatus(c.Status) {
	case "", api.StatusDraft, api.StatusPending, api.StatusCompleted:
	default:
		return fmt.Errorf("unknown status %q", c.Status)
	}

	list, err := app.Client.ListSoapNotes(context.Background(), api.NoteQuery{
		Page:        c.Page,
		Limit:       c.Limit,
		Status:      api.NoteStatus(c.Status),
		PatientName: c.Patient,
		SortBy:      "updatedAt",
		SortOrder:   "desc",
	})
	if err != nil {
		return err
	}

	printNotes(list.Data)
	fmt.Println(style.Help.Render(fmt.Sprintf("page %d, %d of %d notes", list.Page, len(list.Data), list.Total)))

	return nil
}

// NotesShowCmd prints one note section by section.
type NotesShowCmd struct {
	ID string `arg:"" required:"" help:"Note id"`
}

// Run executes the notes show command.
func (c *NotesShowCmd) Run(app *App) error {
	note, err := app.Client.GetSoapNote(context.Background(), c.ID)
	if err != nil {
		return err
	}

	fmt.Println(renderNote(note))

	return nil
}

// NotesDeleteCmd deletes a note.
type NotesDeleteCmd struct {
	ID string `arg:"" required:"" help:"Note id"`
}

// Run executes the notes delete command.
func (c *NotesDeleteCmd) Run(app *App) error {
	if err := app.Client.DeleteSoapNote(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted note %s\n", c.ID)

	return nil
}

// NotesStatusCmd moves a note through its lifecycle.
type NotesStatusCmd struct {
	ID     string `arg:"" required:"" help:"Note id"`
	Status string `arg:"" required:"" enum:"draft,pending,completed" help:"New status"`
}

// Run executes the notes status command.
func (c *NotesStatusCmd) Run(app *App) error {
	note, err := app.Client.UpdateSoapNoteStatus(context.Background(), c.ID, api.NoteStatus(c.Status))
	if err != nil {
		return err
	}
	fmt.Printf("Note %s is now %s\n", note.ID, note.Status)

	return nil
}

// NotesStatsCmd summarizes notes.
type NotesStatsCmd struct{}

// Run executes the notes stats command.
func (c *NotesStatsCmd) Run(app *App) error {
	stats, err := app.Client.SoapNoteStatistics(context.Background())
	if err != nil {
		return err
	}

	t := newTable("Total", "Draft", "Pending", "Completed", "Today").Row(
		strconv.Itoa(stats.Total),
		strconv.Itoa(stats.Draft),
		strconv.Itoa(stats.Pending),
		strconv.Itoa(stats.Completed),
		strconv.Itoa(stats.Today),
	)
	fmt.Println(t)

	return nil
}

// IcdCmd groups ICD-10 lookups.
type IcdCmd struct {
	Search  IcdSearchCmd  `cmd:"" help:"Search ICD-10 codes"`
	Popular IcdPopularCmd `cmd:"" help:"List the most used ICD-10 codes"`
}

// IcdSearchCmd searches ICD-10 codes.
type IcdSearchCmd struct {
	Query string `arg:"" required:"" help:"Code or description"`
	Limit int    `flag:"" default:"10" help:"Maximum results"`
}

// Run executes the icd search command.
func (c *IcdSearchCmd) Run(app *App) error {
	if strings.TrimSpace(c.Query) == "" {
		return errors.New("query cannot be empty")
	}

	codes, err := app.Client.SearchIcd10(context.Background(), c.Query, c.Limit)
	if err != nil {
		return err
	}
	printCodes(codes)

	return nil
}

// IcdPopularCmd lists popular ICD-10 codes.
type IcdPopularCmd struct {
	Limit int `flag:"" default:"10" help:"Maximum results"`
}

// Run executes the icd popular command.
func (c *IcdPopularCmd) Run(app *App) error {
	codes, err := app.Client.PopularIcd10(context.Background(), c.Limit)
	if err != nil {
		return err
	}
	printCodes(codes)

	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(style.Muted).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return style.Label.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func printPatients(patients []api.Patient) {
	if len(patients) == 0 {
		fmt.Println("No patients found")
		return
	}

	t := newTable("ID", "Patient ID", "Name", "Gender", "Age")
	for _, p := range patients {
		age := ""
		if p.Age > 0 {
			age = strconv.Itoa(p.Age)
		}
		t.Row(p.ID, p.PatientID, p.FullName(), p.Gender, age)
	}
	fmt.Println(t)
}

func printNotes(notes []api.SoapNote) {
	if len(notes) == 0 {
		fmt.Println("No notes found")
		return
	}

	t := newTable("ID", "Patient", "Status", "ICD-10", "Updated")
	for _, n := range notes {
		t.Row(n.ID, notePatientName(n), string(n.Status), n.Icd10Code, n.UpdatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println(t)
}

func printCodes(codes []api.Icd10Code) {
	if len(codes) == 0 {
		fmt.Println("No codes found")
		return
	}

	t := newTable("Code", "Description", "Uses")
	for _, code := range codes {
		t.Row(code.Code, code.ShortDescription, strconv.Itoa(code.UsageCount))
	}
	fmt.Println(t)
}

func notePatientName(n api.SoapNote) string {
	if n.Patient != nil {
		return n.Patient.FullName()
	}
	return n.PatientName
}

// renderNote lays out a note the way the editor shows it.
func renderNote(n *api.SoapNote) string {
	note := noteFromAPI(n)

	var b strings.Builder
	b.WriteString(style.Title.Render(notePatientName(*n)))
	if n.Status != "" {
		b.WriteString(" " + style.Subtitle.Render(string(n.Status)))
	}
	b.WriteString("\n")
	if !note.Icd10.IsZero() {
		b.WriteString(style.Label.Render("ICD-10: ") + note.Icd10.String() + "\n")
	}

	for _, l := range scribe.Labels() {
		text := note.Text(l)
		if strings.TrimSpace(text) == "" {
			text = style.Muted.Render("(empty)")
		}
		b.WriteString("\n" + style.Label.Render(l.Title()) + "\n" + text + "\n")
	}

	return b.String()
}
