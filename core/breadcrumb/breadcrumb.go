// Package breadcrumb derives the navigation trail of a frontend route.
package breadcrumb

import (
	"net/url"
	"strings"

	"github.com/SaramshGautam/collaBoard/core"
)

const homeLabel = "Home"

// Crumb is one link of the trail.
type Crumb struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Derive returns the trail of path for a user of the given role. It always starts at the role's home.
func Derive(path, role string) []Crumb {
	home := core.HomePath(role)
	if path == home {
		return []Crumb{{Label: homeLabel, Path: home}}
	}

	segs := split(path)
	switch {
	case len(segs) == 4 && segs[0] == "whiteboard":
		return whiteboard(home, path, segs)
	case len(segs) >= 2 && segs[0] == "classroom":
		if role == core.RoleTeacher {
			return teacherClassroom(home, segs)
		}
		return classroom(home, segs)
	default:
		return generic(home, segs, false)
	}
}

func whiteboard(home, path string, segs []string) []Crumb {
	class, proj, team := segs[1], segs[2], segs[3]
	return []Crumb{
		{Label: homeLabel, Path: home},
		{Label: decode(class), Path: "/classroom/" + class},
		{Label: decode(proj), Path: "/classroom/" + class + "/project/" + proj},
		{Label: decode(team), Path: "/classroom/" + class + "/project/" + proj + "/team/" + team},
		{Label: "whiteboard", Path: path},
	}
}

func teacherClassroom(home string, segs []string) []Crumb {
	class := segs[1]
	base := "/classroom/" + class
	crumbs := []Crumb{
		{Label: homeLabel, Path: home},
		{Label: decode(class), Path: base},
	}
	if len(segs) == 2 {
		return crumbs
	}

	switch segs[2] {
	case "add-project":
		return append(crumbs, Crumb{Label: "Add Project", Path: base + "/add-project"})
	case "add-student":
		return append(crumbs,
			Crumb{Label: "Manage Students", Path: base + "/manage-students"},
			Crumb{Label: "Add Student", Path: base + "/add-student"},
		)
	case "edit":
		return append(crumbs, Crumb{Label: "Edit Classroom", Path: base + "/edit"})
	case "manage-students":
		crumbs = append(crumbs, Crumb{Label: "Manage Students", Path: base + "/manage-students"})
		switch {
		case len(segs) >= 4 && segs[3] == "add-student":
			crumbs = append(crumbs, Crumb{Label: "Add Student", Path: base + "/manage-students/add-student"})
		case len(segs) >= 5 && segs[4] == "edit":
			crumbs = append(crumbs, Crumb{Label: "Edit Student", Path: base + "/manage-students/" + segs[3] + "/edit"})
		}
		return crumbs
	case "project":
		if len(segs) < 4 {
			break
		}
		proj := segs[3]
		projPath := base + "/project/" + proj
		crumbs = append(crumbs, Crumb{Label: decode(proj), Path: projPath})
		if len(segs) == 4 {
			return crumbs
		}
		switch segs[4] {
		case "edit":
			crumbs = append(crumbs, Crumb{Label: "Edit Project", Path: projPath + "/edit"})
		case "manage-teams":
			crumbs = append(crumbs, Crumb{Label: "Manage Teams", Path: projPath + "/manage-teams"})
		case "team":
			if len(segs) >= 6 {
				crumbs = append(crumbs, Crumb{Label: decode(segs[5]), Path: projPath + "/team/" + segs[5]})
			}
		}
		return crumbs
	}
	return generic(home, segs, true)
}

// classroom is the student trail: every segment after the classroom id except the "project" keyword.
func classroom(home string, segs []string) []Crumb {
	crumbs := []Crumb{
		{Label: homeLabel, Path: home},
		{Label: decode(segs[1]), Path: "/classroom/" + segs[1]},
	}
	for i := 2; i < len(segs); i++ {
		if keyword(segs[i]) {
			continue
		}
		crumbs = append(crumbs, Crumb{Label: decode(segs[i]), Path: "/" + strings.Join(segs[:i+1], "/")})
	}
	return crumbs
}

// generic adds one crumb per segment, linking to the path up to it.
func generic(home string, segs []string, skipKeywords bool) []Crumb {
	crumbs := []Crumb{{Label: homeLabel, Path: home}}
	cumulative := ""
	for _, s := range segs {
		cumulative += "/" + s
		if skipKeywords && keyword(s) {
			continue
		}
		crumbs = append(crumbs, Crumb{Label: decode(s), Path: cumulative})
	}
	return crumbs
}

func keyword(seg string) bool {
	seg = strings.ToLower(seg)
	return seg == "classroom" || seg == "project"
}

func split(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// decode unescapes a path segment. Malformed escapes are shown as is.
func decode(seg string) string {
	if s, err := url.PathUnescape(seg); err == nil {
		return s
	}
	return seg
}
