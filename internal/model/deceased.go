package model

import "time"

// DateLayout is the calendar-date format used on the wire.
const DateLayout = "2006-01-02"

// Deceased is a deceased person's record.  Records are immutable once
// created.  Dates are carried as YYYY-MM-DD strings.
//
// Fields:
//  DeceasedID      – store-assigned identifier.
//  FullNameArabic  – required Arabic name.
//  FullNameEnglish – optional English name.
//  EID             – Emirates ID, unique.
//  AgeAtDeath      – age in years.
//  Gender          – male or female.
//  DateOfDeath     – date of death.
//  DateOfBurial    – optional date of burial.
//  Nationality     – optional nationality.
//  SpecialRequests – optional family requests.
//  CreatedAt       – creation timestamp.
type Deceased struct {
    DeceasedID      uint64    `json:"deceased_id"`       // deceased_persons.deceased_id
    FullNameArabic  string    `json:"full_name_arabic"`  // deceased_persons.full_name_arabic
    FullNameEnglish *string   `json:"full_name_english"` // deceased_persons.full_name_english (nullable)
    EID             string    `json:"eid"`               // deceased_persons.eid
    AgeAtDeath      int       `json:"age_at_death"`      // deceased_persons.age_at_death
    Gender          string    `json:"gender"`            // deceased_persons.gender
    DateOfDeath     string    `json:"date_of_death"`     // deceased_persons.date_of_death
    DateOfBurial    *string   `json:"date_of_burial"`    // deceased_persons.date_of_burial (nullable)
    Nationality     *string   `json:"nationality"`       // deceased_persons.nationality (nullable)
    SpecialRequests *string   `json:"special_requests"`  // deceased_persons.special_requests (nullable)
    CreatedAt       time.Time `json:"created_at"`        // deceased_persons.created_at
}
