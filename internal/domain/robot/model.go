package robot

// Type is the closed set of robot categories.
type Type string

const (
	TypeIndustrial  Type = "industrial"
	TypeService     Type = "service"
	TypeMedical     Type = "medical"
	TypeEducational Type = "educational"
	TypeOther       Type = "other"
)

// Types returns every valid robot type in display order.
func Types() []Type {
	return []Type{TypeIndustrial, TypeService, TypeMedical, TypeEducational, TypeOther}
}

// Valid reports whether t belongs to the closed set.
func (t Type) Valid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// Robot is the single record managed by both stores.
type Robot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Label     string `json:"label"`
	Year      int    `json:"year"`
	Type      Type   `json:"type"`
	CreatedAt int64  `json:"created_at,omitempty"`
	UpdatedAt int64  `json:"updated_at,omitempty"`
	Archived  bool   `json:"archived"`
}

// Input carries the user-supplied fields of a robot.
type Input struct {
	Name  string `json:"name" validate:"required,min=2,max=50"`
	Label string `json:"label" validate:"required,min=3,max=100"`
	Year  int    `json:"year" validate:"min=1950,notfuture"`
	Type  Type   `json:"type" validate:"required,robottype"`
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Name  *string `json:"name,omitempty" validate:"omitnil,min=2,max=50"`
	Label *string `json:"label,omitempty" validate:"omitnil,min=3,max=100"`
	Year  *int    `json:"year,omitempty" validate:"omitnil,min=1950,notfuture"`
	Type  *Type   `json:"type,omitempty" validate:"omitnil,robottype"`
}

// Empty reports whether the patch touches no field.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Label == nil && p.Year == nil && p.Type == nil
}

// InputOf strips generated fields from a stored robot.
func InputOf(r Robot) Input {
	return Input{Name: r.Name, Label: r.Label, Year: r.Year, Type: r.Type}
}
