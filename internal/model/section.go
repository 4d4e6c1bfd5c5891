package model

import "time"

// Section is a named subdivision of the cemetery.  TotalPlots and
// AvailablePlots are the counters declared by the administrator; the
// assignment engine decrements AvailablePlots when it occupies a grave in
// the section.  The Graves* fields are derived from grave rows and are only
// populated by listing queries.
//
// Fields:
//  SectionID       – caller-assigned unique identifier.
//  SectionName     – display name.
//  TotalPlots      – declared plot capacity.
//  AvailablePlots  – declared free plots.
//  Description     – optional free text.
//  CreatedAt       – creation timestamp.
type Section struct {
    SectionID      string    `json:"section_id"`      // cemetery_sections.section_id
    SectionName    string    `json:"section_name"`    // cemetery_sections.section_name
    TotalPlots     int       `json:"total_plots"`     // cemetery_sections.total_plots
    AvailablePlots int       `json:"available_plots"` // cemetery_sections.available_plots
    Description    *string   `json:"description"`     // cemetery_sections.description (nullable)
    CreatedAt      time.Time `json:"created_at"`      // cemetery_sections.created_at
}

// SectionSummary is a Section together with counts computed from its grave
// rows.
type SectionSummary struct {
    Section
    TotalGraves     int `json:"total_graves"`
    AvailableGraves int `json:"available_graves"`
    OccupiedGraves  int `json:"occupied_graves"`
}
