package domain

// Defense is a three-monster team composition, read-only on the board.
type Defense struct {
	ID            string   `json:"id"`
	LeaderMonster string   `json:"leaderMonster"`
	Monster2      string   `json:"monster2"`
	Monster3      string   `json:"monster3"`
	Tags          []string `json:"tags,omitempty"`
}

// Monsters returns leader, second and third monster in display order.
func (d Defense) Monsters() [3]string {
	return [3]string{d.LeaderMonster, d.Monster2, d.Monster3}
}

// User is a guild member that can be assigned to a defense.
type User struct {
	ID         string  `json:"id"`
	Name       *string `json:"name"`
	Identifier string  `json:"identifier"`
}

// DisplayName returns the name, or the identifier when no name is set.
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Identifier
}

// EligibleAssignment lists the users allowed to play a defense.
type EligibleAssignment struct {
	DefenseID string  `json:"defenseId"`
	Defense   Defense `json:"defense"`
	Users     []User  `json:"users"`
}

// AssignmentsResponse is the body of GET /api/gestion/assignments.
type AssignmentsResponse struct {
	Assignments []EligibleAssignment `json:"assignments"`
}

// ErrorResponse is the body of every 4xx/5xx answer of the collaborator API.
type ErrorResponse struct {
	Error string `json:"error"`
}
