package version

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Info identifies the build that produced a binary. It's stored with every
// migration record that the binary writes.
type Info struct {
	Arch         string `json:"arch"`
	Revision     string `json:"revision"`
	RevisionTime string `json:"revision_time"`
	Version      string `json:"version"`
}

func (i *Info) String() string {
	if i.Revision == "" {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, i.Revision)
}

func GetInfo() (*Info, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, errors.New("could not read build info")
	}
	var revision, revisionTime, arch string
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			revisionTime = setting.Value
		case "vcs.modified":
			if setting.Value == "true" {
				revision += "+dirty"
			}
		case "GOARCH":
			arch = setting.Value
		}
	}
	return &Info{
		Version:      buildInfo.Main.Version,
		Revision:     revision,
		RevisionTime: revisionTime,
		Arch:         arch,
	}, nil
}
