package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MinPatientQuery is the shortest query SearchPatients sends to the backend.
const MinPatientQuery = 2

// Login signs in and persists the token and user profile.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.Request(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	if resp.AccessToken == "" {
		return nil, errors.New("failed to log in: no access token in response")
	}

	if c.session != nil {
		if err := c.session.SaveToken(resp.AccessToken); err != nil {
			return nil, err
		}
		if len(resp.User) > 0 {
			if err := c.session.SaveUser(resp.User); err != nil {
				return nil, err
			}
		}
	}

	return &resp, nil
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := c.Request(ctx, http.MethodPost, "/auth/register", req, &user); err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	return &user, nil
}

// Logout forgets the stored session.
func (c *Client) Logout() error {
	if c.session == nil {
		return nil
	}

	return c.session.ClearAll()
}

// ForgotPassword asks the backend to email a reset token.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := c.Request(ctx, http.MethodPost, "/auth/forgot-password", body, nil); err != nil {
		return fmt.Errorf("failed to request password reset: %w", err)
	}

	return nil
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "newPassword": password}
	if err := c.Request(ctx, http.MethodPost, "/auth/reset-password", body, nil); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	return nil
}

// SearchPatients searches by name or patient ID. Queries shorter than
// MinPatientQuery return no results without contacting the backend.
func (c *Client) SearchPatients(ctx context.Context, query string) ([]Patient, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinPatientQuery {
		return []Patient{}, nil
	}

	var patients []Patient
	if err := c.Request(ctx, http.MethodGet, "/patients/search?q="+url.QueryEscape(query), nil, &patients); err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}

	return patients, nil
}

// RecentPatients lists recently seen patients.
func (c *Client) RecentPatients(ctx context.Context, limit int) ([]Patient, error) {
	var patients []Patient
	if err := c.Request(ctx, http.MethodGet, "/patients/recent?limit="+strconv.Itoa(limit), nil, &patients); err != nil {
		return nil, fmt.Errorf("failed to list recent patients: %w", err)
	}

	return patients, nil
}

// ListPatients pages through all patients.
func (c *Client) ListPatients(ctx context.Context, page, limit int) (*PatientList, error) {
	var list PatientList
	path := fmt.Sprintf("/patients?page=%d&limit=%d", page, limit)
	if err := c.Request(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	return &list, nil
}

// GetPatient fetches one patient.
func (c *Client) GetPatient(ctx context.Context, id string) (*Patient, error) {
	var patient Patient
	if err := c.Request(ctx, http.MethodGet, "/patients/"+url.PathEscape(id), nil, &patient); err != nil {
		return nil, fmt.Errorf("failed to get patient %s: %w", id, err)
	}

	return &patient, nil
}

// PatientHistory fetches a patient with all their notes.
func (c *Client) PatientHistory(ctx context.Context, id string) (*PatientHistory, error) {
	var history PatientHistory
	if err := c.Request(ctx, http.MethodGet, "/patients/"+url.PathEscape(id)+"/history", nil, &history); err != nil {
		return nil, fmt.Errorf("failed to get history for patient %s: %w", id, err)
	}

	return &history, nil
}

// CreateSoapNote saves a new note.
func (c *Client) CreateSoapNote(ctx context.Context, note SoapNoteInput) (*SoapNote, error) {
	var created SoapNote
	if err := c.Request(ctx, http.MethodPost, "/soap-notes", note, &created); err != nil {
		return nil, fmt.Errorf("failed to create soap note: %w", err)
	}

	return &created, nil
}

// ListSoapNotes pages through notes.
func (c *Client) ListSoapNotes(ctx context.Context, q NoteQuery) (*NoteList, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		params.Set("status", string(q.Status))
	}
	if q.PatientName != "" {
		params.Set("patientName", q.PatientName)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sortOrder", q.SortOrder)
	}

	path := "/soap-notes"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var list NoteList
	if err := c.Request(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list soap notes: %w", err)
	}

	return &list, nil
}

// GetSoapNote fetches one note.
func (c *Client) GetSoapNote(ctx context.Context, id string) (*SoapNote, error) {
	var note SoapNote
	if err := c.Request(ctx, http.MethodGet, "/soap-notes/"+url.PathEscape(id), nil, &note); err != nil {
		return nil, fmt.Errorf("failed to get soap note %s: %w", id, err)
	}

	return &note, nil
}

// UpdateSoapNote replaces a note's sections.
func (c *Client) UpdateSoapNote(ctx context.Context, id string, note SoapNoteInput) (*SoapNote, error) {
	var updated SoapNote
	if err := c.Request(ctx, http.MethodPatch, "/soap-notes/"+url.PathEscape(id), note, &updated); err != nil {
		return nil, fmt.Errorf("failed to update soap note %s: %w", id, err)
	}

	return &updated, nil
}

// UpdateSoapNoteStatus moves a note through its lifecycle.
func (c *Client) UpdateSoapNoteStatus(ctx context.Context, id string, status NoteStatus) (*SoapNote, error) {
	var updated SoapNote
	body := map[string]NoteStatus{"status": status}
	if err := c.Request(ctx, http.MethodPatch, "/soap-notes/"+url.PathEscape(id)+"/status", body, &updated); err != nil {
		return nil, fmt.Errorf("failed to update status of soap note %s: %w", id, err)
	}

	return &updated, nil
}

// DeleteSoapNote removes a note.
func (c *Client) DeleteSoapNote(ctx context.Context, id string) error {
	if err := c.Request(ctx, http.MethodDelete, "/soap-notes/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete soap note %s: %w", id, err)
	}

	return nil
}

// SoapNoteStatistics summarizes notes.
func (c *Client) SoapNoteStatistics(ctx context.Context) (*NoteStatistics, error) {
	var stats NoteStatistics
	if err := c.Request(ctx, http.MethodGet, "/soap-notes/statistics", nil, &stats); err != nil {
		return nil, fmt.Errorf("failed to get soap note statistics: %w", err)
	}

	return &stats, nil
}

// SearchIcd10 searches ICD-10 codes.
func (c *Client) SearchIcd10(ctx context.Context, query string, limit int) ([]Icd10Code, error) {
	var codes []Icd10Code
	path := fmt.Sprintf("/icd10/search?q=%s&limit=%d", url.QueryEscape(query), limit)
	if err := c.Request(ctx, http.MethodGet, path, nil, &codes); err != nil {
		return nil, fmt.Errorf("failed to search icd-10 codes: %w", err)
	}

	return codes, nil
}

// PopularIcd10 lists the most used ICD-10 codes.
func (c *Client) PopularIcd10(ctx context.Context, limit int) ([]Icd10Code, error) {
	var codes []Icd10Code
	if err := c.Request(ctx, http.MethodGet, "/icd10/popular?limit="+strconv.Itoa(limit), nil, &codes); err != nil {
		return nil, fmt.Errorf("failed to list popular icd-10 codes: %w", err)
	}

	return codes, nil
}
