package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	Tag      string
	Revision string
	BuildAt  string
	Dirty    bool
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			Revision = s.Value
		case "vcs.time":
			BuildAt = s.Value
		case "vcs.modified":
			Dirty = s.Value == "true"
		}
	}
}

func String() string {
	if Revision == "" {
		// go run
		return "dev"
	}

	rev := Revision
	if len(rev) > 7 {
		rev = rev[:7]
	}
	buildAt := BuildAt
	if t, err := time.Parse(time.RFC3339, BuildAt); err == nil {
		buildAt = t.Format("2006-01-02 15:04:05")
	}

	s := fmt.Sprintf("%s %s at %s", Tag, rev, buildAt)
	if Dirty {
		s += " dirty"
	}
	return s
}
