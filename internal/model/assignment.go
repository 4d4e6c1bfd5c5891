package model

import "time"

// Assignment links one deceased person to one grave together with the
// burial schedule.  BurialCompleted only ever moves from false to true.
//
// Fields:
//  AssignmentID    – store-assigned identifier.
//  DeceasedID      – assigned deceased person.
//  GraveID         – assigned grave.
//  AssignedBy      – name of the staff member who made the assignment.
//  BurialDate      – scheduled burial date (YYYY-MM-DD).
//  BurialTime      – scheduled burial time (HH:MM:SS).
//  Notes           – optional notes.
//  BurialCompleted – whether the burial took place.
//  AssignmentDate  – server timestamp of the assignment.
type Assignment struct {
    AssignmentID    uint64    `json:"assignment_id"`    // grave_assignments.assignment_id
    DeceasedID      uint64    `json:"deceased_id"`      // grave_assignments.deceased_id
    GraveID         string    `json:"grave_id"`         // grave_assignments.grave_id
    AssignedBy      string    `json:"assigned_by"`      // grave_assignments.assigned_by
    BurialDate      string    `json:"burial_date"`      // grave_assignments.burial_date
    BurialTime      string    `json:"burial_time"`      // grave_assignments.burial_time
    Notes           *string   `json:"notes"`            // grave_assignments.notes (nullable)
    BurialCompleted bool      `json:"burial_completed"` // grave_assignments.burial_completed
    AssignmentDate  time.Time `json:"assignment_date"`  // grave_assignments.assignment_date
}

// AssignmentDetail is an assignment joined with the deceased person, the
// grave and its section, as returned by the listing endpoints.
type AssignmentDetail struct {
    Assignment
    FullNameArabic  string  `json:"full_name_arabic"`
    FullNameEnglish *string `json:"full_name_english"`
    EID             string  `json:"eid"`
    Gender          string  `json:"gender"`
    DateOfDeath     string  `json:"date_of_death"`
    Section         string  `json:"section"`
    GraveRow        int     `json:"grave_row"`
    GravePlot       int     `json:"grave_plot"`
    SectionName     string  `json:"section_name"`
}
