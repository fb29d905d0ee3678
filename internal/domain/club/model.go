package club

import "fmt"

// Club is one club accessible to the current user, with the boolean
// permission flags granted on it.
type Club struct {
	ID          string
	Name        string
	Permissions map[string]bool
}

func (c Club) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("club id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("club name is required")
	}

	return nil
}

// FindByID returns the club with the given id from an accessible set.
func FindByID(clubs []Club, clubID string) (Club, bool) {
	for _, c := range clubs {
		if c.ID == clubID {
			return c, true
		}
	}
	return Club{}, false
}
