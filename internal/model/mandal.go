package model

import "time"

// Mandal represents a community organization registered in the
// festival directory.  A mandal is created in a single atomic write
// when the registration wizard submits; it is never updated or
// deleted afterwards.  This struct corresponds to a row in the
// `mandals` table.
//
// Fields:
//  ID                – primary key identifier.
//  RegisteredBy      – user ID of the registering organizer.
//  Name              – public name of the mandal.
//  EstablishedYear   – year the mandal was founded.
//  Location          – short locality name shown on the map.
//  Address           – full street address.
//  ContactName       – name of the contact person.
//  ContactPhone      – phone (or email) of the contact person.
//  UpiID             – UPI identifier prasad payments are addressed to.
//  Description       – free-form description.
//  Specialties       – prasad specialties offered.
//  DeliveryAvailable – whether home delivery of prasad is offered.
//  PandalTheme       – decoration theme of the pandal this year.
//  CulturalPrograms  – cultural programs hosted by the mandal.
//  PreviousAwards    – awards won in previous years.
//  CreatedAt         – timestamp of registration.
type Mandal struct {
	ID                uint64    // mandals.id
	RegisteredBy      uint64    // mandals.registered_by
	Name              string    // mandals.name
	EstablishedYear   string    // mandals.established_year
	Location          string    // mandals.location
	Address           string    // mandals.address
	ContactName       string    // mandals.contact_name
	ContactPhone      string    // mandals.contact_phone
	UpiID             string    // mandals.upi_id
	Description       string    // mandals.description
	Specialties       string    // mandals.specialties
	DeliveryAvailable bool      // mandals.delivery_available
	PandalTheme       string    // mandals.pandal_theme
	CulturalPrograms  string    // mandals.cultural_programs
	PreviousAwards    string    // mandals.previous_awards
	CreatedAt         time.Time // mandals.created_at
}
