package mcp

import "github.com/rpggio/robolab/internal/domain/robot"

type CreateRobotParams struct {
	Name  string `json:"name" jsonschema:"display name, 2 to 50 characters, unique among active robots"`
	Label string `json:"label" jsonschema:"short description, 3 to 100 characters"`
	Year  int    `json:"year" jsonschema:"year of manufacture, 1950 to the current year"`
	Type  string `json:"type" jsonschema:"one of industrial, service, medical, educational, other"`
}

type UpdateRobotParams struct {
	ID    string  `json:"id"`
	Name  *string `json:"name,omitempty"`
	Label *string `json:"label,omitempty"`
	Year  *int    `json:"year,omitempty"`
	Type  *string `json:"type,omitempty"`
}

type RobotIDParams struct {
	ID string `json:"id"`
}

type GetRobotParams struct {
	ID              string `json:"id"`
	IncludeArchived bool   `json:"include_archived,omitempty"`
}

type ListRobotsParams struct {
	Q               string `json:"q,omitempty" jsonschema:"substring matched against name"`
	Sort            string `json:"sort,omitempty" jsonschema:"name, year or created_at"`
	Order           string `json:"order,omitempty" jsonschema:"ASC or DESC"`
	Limit           int    `json:"limit,omitempty"`
	Offset          int    `json:"offset,omitempty"`
	IncludeArchived bool   `json:"include_archived,omitempty"`
}

type CountRobotsParams struct {
	IncludeArchived bool `json:"include_archived,omitempty"`
}

type NameAvailableParams struct {
	Name      string `json:"name"`
	ExcludeID string `json:"exclude_id,omitempty"`
}

type ExportRobotsParams struct {
	IncludeArchived bool `json:"include_archived,omitempty"`
}

type RobotResult struct {
	Robot robot.Robot `json:"robot"`
}

type GetRobotResult struct {
	Found bool         `json:"found"`
	Robot *robot.Robot `json:"robot,omitempty"`
}

type ListRobotsResult struct {
	Robots []robot.Robot `json:"robots"`
}

type CountResult struct {
	Count int `json:"count"`
}

type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

type NameAvailableResult struct {
	Available bool `json:"available"`
}

type ExportResult struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
	Bytes int    `json:"bytes"`
}

func (p CreateRobotParams) input() robot.Input {
	return robot.Input{Name: p.Name, Label: p.Label, Year: p.Year, Type: robot.Type(p.Type)}
}

func (p UpdateRobotParams) patch() robot.Patch {
	patch := robot.Patch{Name: p.Name, Label: p.Label, Year: p.Year}
	if p.Type != nil {
		t := robot.Type(*p.Type)
		patch.Type = &t
	}
	return patch
}

func (p ListRobotsParams) options() robot.ListOptions {
	return robot.ListOptions{
		Q:               p.Q,
		Sort:            robot.SortField(p.Sort),
		Order:           robot.SortOrder(p.Order),
		Limit:           p.Limit,
		Offset:          p.Offset,
		IncludeArchived: p.IncludeArchived,
	}
}
