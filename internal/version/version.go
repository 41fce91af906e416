package version

import (
	"runtime/debug"

	"github.com/samber/lo"
)

// Revision returns the VCS revision the binary was built from, or "unknown".
func Revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	setting := lo.FindOrElse(info.Settings, debug.BuildSetting{Value: "unknown"}, func(s debug.BuildSetting) bool {
		return s.Key == "vcs.revision"
	})
	return setting.Value
}

func UserAgent() string {
	return "ideo/" + Revision()
}
