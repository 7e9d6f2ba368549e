package domain

// TowerUpdate is the body of PUT /api/map/towers/{id}: the non-geometric
// fields edited in the tower configuration.
type TowerUpdate struct {
	TowerNumber string `json:"towerNumber" validate:"required,oneof=QG 1 2 3 4 5 6 7 8 9 10 11 12"`
	Stars       int    `json:"stars" validate:"oneof=4 5"`
	Color       Color  `json:"color" validate:"omitempty,oneof=blue red yellow"`
	DefenseIDs  string `json:"defenseIds" validate:"required"`
}

// GeometryUpdate is the body of PATCH /api/map/towers/{id}/geometry. Nil
// fields are left unchanged; width is always derived from height.
type GeometryUpdate struct {
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Height *float64 `json:"height,omitempty" validate:"omitempty,gte=1"`
}

// CreateTowerRequest is the body of POST /api/map/towers.
type CreateTowerRequest struct {
	MapName     string  `json:"mapName" validate:"required,max=200"`
	TowerNumber string  `json:"towerNumber" validate:"required,oneof=QG 1 2 3 4 5 6 7 8 9 10 11 12"`
	Stars       int     `json:"stars" validate:"oneof=4 5"`
	Color       Color   `json:"color" validate:"omitempty,oneof=blue red yellow"`
	X           float64 `json:"x" validate:"gte=0"`
	Y           float64 `json:"y" validate:"gte=0"`
	Height      float64 `json:"height" validate:"gte=1"`
}

// CreateDefenseRequest is the body of POST /api/defenses.
type CreateDefenseRequest struct {
	LeaderMonster string   `json:"leaderMonster" validate:"required,max=100"`
	Monster2      string   `json:"monster2" validate:"required,max=100"`
	Monster3      string   `json:"monster3" validate:"required,max=100"`
	Tags          []string `json:"tags,omitempty"`
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Identifier string  `json:"identifier" validate:"required,max=100"`
}

// EligibilityRequest is the body of PUT /api/gestion/assignments/{defenseId}.
type EligibilityRequest struct {
	UserIDs []string `json:"userIds"`
}
