package api

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/user"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Fingerprint identifies this machine and user. It is a hash of host name,
// platform, architecture and OS user name, recomputed on every run.
func Fingerprint() string {
	hostname, platform := "", runtime.GOOS
	if info, err := host.Info(); err == nil {
		hostname = info.Hostname
		if info.Platform != "" {
			platform = info.OS + "/" + info.Platform
		}
	}
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	sum := sha256.Sum256([]byte(strings.Join([]string{hostname, platform, runtime.GOARCH, username}, "|")))
	return hex.EncodeToString(sum[:])
}
