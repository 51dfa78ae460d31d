package domain

import "time"

// Member is a person record. The RFID tag is the physical-access identity;
// Username is an optional login alias for the admin interface.
type Member struct {
	ID        string
	RFID      string
	Username  string // optional, unique when set
	FullName  string
	Active    bool
	MMSID     string // external membership-system reference, optional
	Phone     string
	Email     string
	EntryType string
	Notes     string

	// Credential storage. PasswordType is the persisted codec tag
	// (e.g. "bcrypt_12"); both fields are empty for members with no
	// login credential.
	PasswordType    string
	EncodedPassword string

	JoinDate time.Time
	EndDate  *time.Time
}
