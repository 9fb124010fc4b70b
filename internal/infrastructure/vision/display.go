package vision

import (
	"os"
	"runtime"
)

// hasDisplay сообщает, можно ли открыть окно. На Linux без X11/Wayland показ пропускается.
func hasDisplay() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return true
	default:
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	}
}
