package model

// SectionStatistics aggregates grave statuses of one section.
type SectionStatistics struct {
    SectionID           string  `json:"section_id"`
    SectionName         string  `json:"section_name"`
    TotalGraves         int     `json:"total_graves"`
    AvailableGraves     int     `json:"available_graves"`
    OccupiedGraves      int     `json:"occupied_graves"`
    MaintenanceGraves   int     `json:"maintenance_graves"`
    OccupancyPercentage float64 `json:"occupancy_percentage"`
}

// OverallStatistics aggregates deceased records and assignments.
type OverallStatistics struct {
    TotalDeceased    int `json:"total_deceased"`
    TotalAssignments int `json:"total_assignments"`
    CompletedBurials int `json:"completed_burials"`
    PendingBurials   int `json:"pending_burials"`
}

// Statistics is the payload of the statistics endpoint.
type Statistics struct {
    Sections []SectionStatistics `json:"sections"`
    Overall  OverallStatistics   `json:"overall"`
}
