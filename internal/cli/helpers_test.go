package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture is a config whose sources read canned text from files in dir.
type fixture struct {
	dir      string
	config   string
	frame    string
	fallback string
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// newFixture writes source files and a config pointing at them, then sets
// the --config flag for the duration of the test.
func newFixture(t *testing.T, driver string) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:      dir,
		config:   filepath.Join(dir, "inkdash.yaml"),
		frame:    filepath.Join(dir, "frame.png"),
		fallback: filepath.Join(dir, "fallback.png"),
	}

	writeFile(t, filepath.Join(dir, "temp.txt"), "temp=48.3'C\n")
	writeFile(t, filepath.Join(dir, "mem.txt"),
		"              total        used        free\nMem:           1000         500         400\n")
	writeFile(t, filepath.Join(dir, "df.txt"),
		"Filesystem     1K-blocks     Used Available Use% Mounted on\n"+
			"/dev/root       30000000 12000000  16000000  43% /\n"+
			"tmpfs             100000        0    100000   0% /dev/shm\n")
	writeFile(t, filepath.Join(dir, "wifi.txt"),
		"wlan0     IEEE 802.11  ESSID:\"home\"\n          Link Quality=70/70  Signal level=-42 dBm\n")
	writeFile(t, filepath.Join(dir, "uptime"), "172800.00 460800.00\n")

	cfg := fmt.Sprintf(`version: 1
interval: 1m
metric_timeout: 5s
workers: 2
fallback_path: %[1]s/fallback.png
display:
  driver: %[2]s
  output_path: %[1]s/frame.png
sources:
  temperature_command: cat %[1]s/temp.txt
  memory_command: cat %[1]s/mem.txt
  disk_command: cat %[1]s/df.txt
  wifi_command: cat %[1]s/wifi.txt
  wifi_backend: iwconfig
  uptime_path: %[1]s/uptime
  uptime_cores: 4
  ip_route_addr: 127.0.0.1:9
lock:
  dir: %[1]s/lock
  timeout: 1s
`, dir, driver)
	writeFile(t, f.config, cfg)

	orig := cfgFile
	cfgFile = f.config
	t.Cleanup(func() { cfgFile = orig })
	return f
}
