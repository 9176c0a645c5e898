package domain

// Gender values carried by drivers and by address-level driver requirements.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Address is a delivery location selected for an optimization run.
// Coordinates are expected to be geocoded before the address reaches
// the engine; the geocoding collaborator is external to this service.
type Address struct {
	ID            int64
	Street        string
	City          string
	State         string
	PostalCode    string
	RecipientName string
	Phone         string
	Notes         string

	Lat float64
	Lon float64

	ServiceTimeMinutes int // minutes spent at the door, default 5

	// Preferred delivery window, "HH:MM" or empty.
	PreferredTimeStart string
	PreferredTimeEnd   string

	// Soft preference: bonus for this driver, never a hard restriction.
	PreferredDriverID int64

	// Hard requirement: only drivers of this gender may serve the stop.
	// Empty means no requirement.
	RequiredDriverGender string

	IsActive bool
}

// Coord returns the address location as Coordinates.
func (a Address) Coord() Coordinates { return Coordinates{Lat: a.Lat, Lon: a.Lon} }
