package services

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ordering is an explicit allow-list of request ordering keys for one endpoint.
// Unknown keys are dropped; when nothing is left the default applies.
type Ordering struct {
	columns  map[string]string
	defaults []clause.OrderByColumn
	tiebreak string
}

// ProfileOrdering covers the profiles list: id, username and the per-author post count.
var ProfileOrdering = Ordering{
	columns: map[string]string{
		"id":           "users.id",
		"username":     "users.username",
		"posts_count":  "users.post_count",
		"posts__count": "users.post_count",
	},
	defaults: []clause.OrderByColumn{{Column: clause.Column{Name: "users.id", Raw: true}}},
	tiebreak: "users.id",
}

// FeedOrdering defaults to newest first.
var FeedOrdering = Ordering{
	columns: map[string]string{
		"created": "posts.created_at",
		"title":   "posts.title",
	},
	defaults: []clause.OrderByColumn{
		{Column: clause.Column{Name: "posts.created_at", Raw: true}, Desc: true},
		{Column: clause.Column{Name: "posts.id", Raw: true}, Desc: true},
	},
	tiebreak: "posts.id",
}

// Resolve turns a raw "?ordering=" value such as "-posts_count,username" into order columns.
func (o Ordering) Resolve(raw string) []clause.OrderByColumn {
	var out []clause.OrderByColumn
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		key := strings.TrimSpace(part)
		desc := strings.HasPrefix(key, "-")
		key = strings.TrimPrefix(key, "-")
		col, ok := o.columns[key]
		if !ok || seen[col] {
			continue
		}
		seen[col] = true
		out = append(out, clause.OrderByColumn{Column: clause.Column{Name: col, Raw: true}, Desc: desc})
	}
	if len(out) == 0 {
		return o.defaults
	}
	if o.tiebreak != "" && !seen[o.tiebreak] {
		desc := len(o.defaults) > 0 && o.defaults[len(o.defaults)-1].Desc
		out = append(out, clause.OrderByColumn{Column: clause.Column{Name: o.tiebreak, Raw: true}, Desc: desc})
	}
	return out
}

func applyOrder(q *gorm.DB, cols []clause.OrderByColumn) *gorm.DB {
	for _, c := range cols {
		q = q.Order(c)
	}
	return q
}

// SeenFilter restricts the feed to posts with the given computed seen flag when Set.
type SeenFilter struct {
	Set   bool
	Value bool
}

// ParseSeenFilter accepts the forms strconv.ParseBool does; anything else disables filtering.
func ParseSeenFilter(raw string) SeenFilter {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SeenFilter{}
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return SeenFilter{}
	}
	return SeenFilter{Set: true, Value: v}
}
