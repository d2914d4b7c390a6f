package change

import "strings"

// Action is what a change does to one file.
type Action int

const (
	Add Action = iota
	Edit
	Delete
	Integrate
	Branch
	Purge
	Move
	MoveAdd
	MoveDelete
)

type actionInfo struct {
	name     string
	hasDepot bool
	hasLocal bool
}

// actions is indexed by Action. Branch has a source revision on the server,
// but describe does not name it, so there is nothing to fetch for the old side.
var actions = [...]actionInfo{
	Add:        {"add", false, true},
	Edit:       {"edit", true, true},
	Delete:     {"delete", true, false},
	Integrate:  {"integrate", true, true},
	Branch:     {"branch", false, true},
	Purge:      {"purge", false, false},
	Move:       {"move", false, false},
	MoveAdd:    {"move/add", false, true},
	MoveDelete: {"move/delete", true, false},
}

// ParseAction resolves a raw p4 action such as "edit" or "move/add". Unknown
// actions resolve to Edit.
func ParseAction(s string) Action {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "/")
	for a, info := range actions {
		if info.name == s {
			return Action(a)
		}
	}
	return Edit
}

// HasDepotSide reports whether a prior, server-held version of the file exists.
func (a Action) HasDepotSide() bool { return actions[a].hasDepot }

// HasLocalSide reports whether a current, working-copy version of the file exists.
func (a Action) HasLocalSide() bool { return actions[a].hasLocal }

// HasContent reports whether either side carries content.
func (a Action) HasContent() bool { return a.HasDepotSide() || a.HasLocalSide() }

func (a Action) String() string {
	if a < 0 || int(a) >= len(actions) {
		return "unknown"
	}
	return actions[a].name
}
