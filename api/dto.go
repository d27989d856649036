/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes for the HTTP surface, decoupled from the domain types.
  Dates travel as YYYY-MM-DD strings, times-of-day as HH:MM, timestamps
  as RFC3339, hours as decimal strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Handlers convert these into typed service inputs; domain validation
  lives in the availability package, parse errors are handled here.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/availability-engine/availability"
)

// =============================================================================
// WORKERS
// =============================================================================

type WorkerDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

type CreateWorkerRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active *bool  `json:"active,omitempty"` // defaults to true
}

func workerDTO(w availability.Worker) WorkerDTO {
	return WorkerDTO{ID: string(w.ID), Name: w.Name, Role: string(w.Role), Active: w.Active}
}

// =============================================================================
// PATTERNS
// =============================================================================

type PatternDTO struct {
	WorkerID      string  `json:"worker_id"`
	DayOfWeek     int     `json:"day_of_week"`
	IsAvailable   bool    `json:"is_available"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	MaxHours      *string `json:"max_hours,omitempty"`
	EffectiveFrom *string `json:"effective_from,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

type UpsertPatternRequest struct {
	DayOfWeek     int     `json:"day_of_week"`
	IsAvailable   bool    `json:"is_available"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	MaxHours      *string `json:"max_hours,omitempty"`
	EffectiveFrom *string `json:"effective_from,omitempty"`
}

type ApplyPresetRequest struct {
	Preset string `json:"preset"`
}

func patternDTO(p availability.WeeklyPattern) PatternDTO {
	dto := PatternDTO{
		WorkerID:    string(p.WorkerID),
		DayOfWeek:   p.DayOfWeek,
		IsAvailable: p.IsAvailable,
	}
	if p.StartTime != nil {
		dto.StartTime = strPtr(p.StartTime.String())
	}
	if p.EndTime != nil {
		dto.EndTime = strPtr(p.EndTime.String())
	}
	if p.MaxHours != nil {
		dto.MaxHours = strPtr(p.MaxHours.String())
	}
	if p.EffectiveFrom != nil {
		dto.EffectiveFrom = strPtr(p.EffectiveFrom.String())
	}
	if !p.UpdatedAt.IsZero() {
		dto.UpdatedAt = p.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// EXCEPTIONS
// =============================================================================

type SubmitOverrideRequest struct {
	Date        string  `json:"override_date"`
	IsAvailable bool    `json:"is_available"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

type OverrideDTO struct {
	ID          string  `json:"id"`
	WorkerID    string  `json:"worker_id"`
	Date        string  `json:"override_date"`
	IsAvailable bool    `json:"is_available"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Status      string  `json:"status"`
	AdminNotes  string  `json:"admin_notes,omitempty"`
	ApprovedBy  string  `json:"approved_by,omitempty"`
	ApprovedAt  *string `json:"approved_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type CreateTimeOffBody struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Type      string `json:"request_type"`
	Reason    string `json:"reason,omitempty"`
}

type TimeOffDTO struct {
	ID            string  `json:"id"`
	WorkerID      string  `json:"worker_id"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Type          string  `json:"request_type"`
	Reason        string  `json:"reason,omitempty"`
	DaysRequested int     `json:"days_requested"`
	Status        string  `json:"status"`
	AdminNotes    string  `json:"admin_notes,omitempty"`
	ApprovedBy    string  `json:"approved_by,omitempty"`
	ApprovedAt    *string `json:"approved_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type DecideRequest struct {
	Decision string `json:"decision"`
	AdminID  string `json:"admin_id"`
	Notes    string `json:"notes,omitempty"`
}

type PendingQueueDTO struct {
	Overrides []OverrideDTO `json:"overrides"`
	TimeOff   []TimeOffDTO  `json:"time_off"`
}

func overrideDTO(o availability.Override) OverrideDTO {
	dto := OverrideDTO{
		ID:          o.ID,
		WorkerID:    string(o.WorkerID),
		Date:        o.Date.String(),
		IsAvailable: o.IsAvailable,
		Reason:      o.Reason,
		Status:      string(o.Status),
		AdminNotes:  o.AdminNotes,
		ApprovedBy:  o.ApprovedBy,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.Format(time.RFC3339),
	}
	if o.StartTime != nil {
		dto.StartTime = strPtr(o.StartTime.String())
	}
	if o.EndTime != nil {
		dto.EndTime = strPtr(o.EndTime.String())
	}
	if o.ApprovedAt != nil {
		dto.ApprovedAt = strPtr(o.ApprovedAt.Format(time.RFC3339))
	}
	return dto
}

func timeOffDTO(r availability.TimeOffRequest) TimeOffDTO {
	dto := TimeOffDTO{
		ID:            r.ID,
		WorkerID:      string(r.WorkerID),
		StartDate:     r.StartDate.String(),
		EndDate:       r.EndDate.String(),
		Type:          string(r.Type),
		Reason:        r.Reason,
		DaysRequested: r.DaysRequested,
		Status:        string(r.Status),
		AdminNotes:    r.AdminNotes,
		ApprovedBy:    r.ApprovedBy,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
	if r.ApprovedAt != nil {
		dto.ApprovedAt = strPtr(r.ApprovedAt.Format(time.RFC3339))
	}
	return dto
}

// =============================================================================
// RESOLUTION AND SNAPSHOTS
// =============================================================================

type StatusDTO struct {
	Status string  `json:"status"`
	Source string  `json:"source"`
	Detail string  `json:"detail"`
	Window *string `json:"window,omitempty"`
}

type WorkerStatusDTO struct {
	Worker WorkerDTO `json:"worker"`
	Status StatusDTO `json:"status"`
}

type SnapshotDTO struct {
	Date             string            `json:"date"`
	TotalWorkers     int               `json:"total_workers"`
	AvailableCount   int               `json:"available_count"`
	UnavailableCount int               `json:"unavailable_count"`
	TimeOffCount     int               `json:"time_off_count"`
	OverrideCount    int               `json:"override_count"`
	ScheduledHours   string            `json:"scheduled_hours"`
	Workers          []WorkerStatusDTO `json:"workers"`
}

func statusDTO(st availability.AvailabilityStatus) StatusDTO {
	dto := StatusDTO{
		Status: string(st.Status),
		Source: string(st.Source),
		Detail: st.Detail,
	}
	if st.Window != nil {
		dto.Window = strPtr(st.Window.String())
	}
	return dto
}

func snapshotDTO(snap availability.TeamSnapshot) SnapshotDTO {
	dto := SnapshotDTO{
		Date:             snap.Date.String(),
		TotalWorkers:     snap.TotalWorkers,
		AvailableCount:   snap.AvailableCount,
		UnavailableCount: snap.UnavailableCount,
		TimeOffCount:     snap.TimeOffCount,
		OverrideCount:    snap.OverrideCount,
		ScheduledHours:   snap.ScheduledHours.String(),
		Workers:          make([]WorkerStatusDTO, 0, len(snap.Workers)),
	}
	for _, ws := range snap.Workers {
		dto.Workers = append(dto.Workers, WorkerStatusDTO{
			Worker: workerDTO(ws.Worker),
			Status: statusDTO(ws.Status),
		})
	}
	return dto
}

func strPtr(s string) *string { return &s }
