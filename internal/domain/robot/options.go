package robot

import "strings"

// SortField selects the list ordering column.
type SortField string

const (
	SortName      SortField = "name"
	SortYear      SortField = "year"
	SortCreatedAt SortField = "created_at"
)

// SortOrder is the list ordering direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// ListOptions provides filtering options for listing robots.
type ListOptions struct {
	Q               string    `json:"q,omitempty"`
	Sort            SortField `json:"sort,omitempty"`
	Order           SortOrder `json:"order,omitempty"`
	Limit           int       `json:"limit,omitempty"`
	Offset          int       `json:"offset,omitempty"`
	IncludeArchived bool      `json:"include_archived,omitempty"`
}

// Normalized applies defaults. Unknown sort fields fall back to name and
// unknown orders to ascending.
func (o ListOptions) Normalized() ListOptions {
	o.Q = strings.TrimSpace(o.Q)

	switch SortField(strings.ToLower(string(o.Sort))) {
	case SortYear:
		o.Sort = SortYear
	case SortCreatedAt:
		o.Sort = SortCreatedAt
	default:
		o.Sort = SortName
	}

	if strings.EqualFold(string(o.Order), string(OrderDesc)) {
		o.Order = OrderDesc
	} else {
		o.Order = OrderAsc
	}

	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
