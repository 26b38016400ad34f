// Package platform names the package subdirectories a channel publishes (linux-64, osx-arm64, ...).
package platform

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/conn-castle/globalenv/internal/messages"
)

// ErrUnsupported indicates a platform string genv does not know.
var ErrUnsupported = errors.New("unsupported platform")

// Platform is a channel subdirectory name.
type Platform string

// Known platforms.
const (
	Linux64      Platform = "linux-64"
	LinuxAarch64 Platform = "linux-aarch64"
	Osx64        Platform = "osx-64"
	OsxArm64     Platform = "osx-arm64"
	Win64        Platform = "win-64"
	NoArch       Platform = "noarch"
)

var known = []Platform{Linux64, LinuxAarch64, Osx64, OsxArm64, Win64, NoArch}

// All returns every known platform.
func All() []Platform {
	out := make([]Platform, len(known))
	copy(out, known)
	return out
}

// Parse validates s as a known platform.
func Parse(s string) (Platform, error) {
	for _, p := range known {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: "+messages.PlatformUnknownFmt, ErrUnsupported, s)
}

// Current detects the platform of the running process.
func Current() (Platform, error) {
	return detect(runtime.GOOS, runtime.GOARCH)
}

func detect(goos string, goarch string) (Platform, error) {
	switch goos + "/" + goarch {
	case "linux/amd64":
		return Linux64, nil
	case "linux/arm64":
		return LinuxAarch64, nil
	case "darwin/amd64":
		return Osx64, nil
	case "darwin/arm64":
		return OsxArm64, nil
	case "windows/amd64":
		return Win64, nil
	}
	return "", fmt.Errorf("%w: "+messages.PlatformUndetectedFmt, ErrUnsupported, goos, goarch)
}

// String returns the subdirectory name.
func (p Platform) String() string {
	return string(p)
}

// IsWindows reports whether executables on p need Windows conventions.
func (p Platform) IsWindows() bool {
	return p == Win64
}

// Set implements pflag.Value.
func (p *Platform) Set(s string) error {
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Type implements pflag.Value.
func (p *Platform) Type() string {
	return "platform"
}
