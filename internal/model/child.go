package model

import "time"

// Child is one attending child's safeguarding record.  Rows are created
// exactly once per booking by the completion workflow; a second submission
// is rejected outright.  There is no amend path in the core.
//
// Fields:
//  ID                    – primary key identifier.
//  BookingID             – owning booking.
//  FirstName             – child's first name.
//  LastName              – child's last name.
//  DateOfBirth           – child's date of birth.
//  Allergies             – free-text allergy information.
//  MedicalNotes          – free-text medical information.
//  EmergencyContactName  – person to call in an emergency.
//  EmergencyContactPhone – their phone number.
//  PickupAuthorization   – names authorized to collect the child.
//  PhotoConsent          – whether photos of the child may be taken.
//  CreatedAt             – creation timestamp.
type Child struct {
	ID                    uint64    // children.id
	BookingID             uint64    // children.booking_id
	FirstName             string    // children.first_name
	LastName              string    // children.last_name
	DateOfBirth           time.Time // children.date_of_birth
	Allergies             *string   // children.allergies (nullable)
	MedicalNotes          *string   // children.medical_notes (nullable)
	EmergencyContactName  string    // children.emergency_contact_name
	EmergencyContactPhone string    // children.emergency_contact_phone
	PickupAuthorization   *string   // children.pickup_authorization (nullable)
	PhotoConsent          bool      // children.photo_consent
	CreatedAt             time.Time // children.created_at
}
