package model

import "time"

// GraveStatus is the lifecycle state of a grave.
type GraveStatus string

const (
    GraveAvailable   GraveStatus = "available"
    GraveOccupied    GraveStatus = "occupied"
    GraveMaintenance GraveStatus = "maintenance"
)

// Valid reports whether s is one of the known statuses.
func (s GraveStatus) Valid() bool {
    switch s {
    case GraveAvailable, GraveOccupied, GraveMaintenance:
        return true
    }
    return false
}

// Grave is an individually addressable burial plot.  A grave is created
// available and becomes occupied only through the assignment engine.
//
// Fields:
//  GraveID     – unique identifier, e.g. "A-1-01".
//  Section     – owning section (FK to cemetery_sections.section_id).
//  GraveRow    – 1-based row within the section.
//  GravePlot   – 1-based plot within the row.
//  Status      – available, occupied or maintenance.
//  SectionName – joined from the owning section when listing.
//  CreatedAt   – creation timestamp.
type Grave struct {
    GraveID     string      `json:"grave_id"`               // graves.grave_id
    Section     string      `json:"section"`                // graves.section
    GraveRow    int         `json:"grave_row"`              // graves.grave_row
    GravePlot   int         `json:"grave_plot"`             // graves.grave_plot
    Status      GraveStatus `json:"status"`                 // graves.status
    SectionName *string     `json:"section_name,omitempty"` // cemetery_sections.section_name
    CreatedAt   time.Time   `json:"created_at"`             // graves.created_at
}

// IsAvailable reports whether the grave can receive an assignment.
func (g *Grave) IsAvailable() bool {
    return g.Status == GraveAvailable
}
