package models

// Room is a row of room.csv.
type Room struct {
	ID   string `json:"room_id"`
	Name string `json:"room_name"`
}

// DisplayName falls back to the identifier when the name column is blank.
func (r Room) DisplayName() string {
	if r.Name == "" {
		return r.ID
	}
	return r.Name
}
