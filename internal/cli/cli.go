package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardnew/nibblemouse/bridge"
	"github.com/ardnew/nibblemouse/internal/prof"
	"github.com/ardnew/nibblemouse/pkg"
)

// CLI is the nibblemouse-sim command line.
type CLI struct {
	Config string      `help:"Configuration file (JSON, YAML or TOML)" env:"NIBBLEMOUSE_CONFIG"`
	Log    LogConfig   `embed:"" prefix:"log."`
	Prof   prof.Config `embed:"" prefix:"prof."`

	Run       RunCmd        `cmd:"" help:"Run the bridge against a virtual USB mouse and a simulated legacy port"`
	Hidraw    HidrawCmd     `cmd:"" help:"Run the bridge against a Linux hidraw mouse and a simulated legacy port"`
	ConfigCmd ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}

// LogConfig selects log verbosity, format and destination.
type LogConfig struct {
	Level  string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"NIBBLEMOUSE_LOG_LEVEL"`
	Format string `help:"Log format" enum:"text,json" default:"text" env:"NIBBLEMOUSE_LOG_FORMAT"`
	File   string `help:"Write logs to this file instead of stderr" env:"NIBBLEMOUSE_LOG_FILE"`
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup configures the package logger. Logs go to stderr unless a file is
// set. The returned closer closes that file.
func (l LogConfig) Setup(stderr io.Writer) (io.Closer, error) {
	w := stderr
	var closer io.Closer = nopCloser{}
	if l.File != "" {
		f, err := os.OpenFile(l.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}
	pkg.SetLogLevel(pkg.ParseLevel(l.Level))
	pkg.SetLogOutput(w, pkg.ParseLogFormat(l.Format))
	return closer, nil
}

// RunCmd runs the bridge with the loopback virtual mouse.
type RunCmd struct {
	Bridge      bridge.Config `embed:"" prefix:"bridge."`
	Strobe      time.Duration `help:"Half period of the simulated strobe clock" default:"500us" env:"NIBBLEMOUSE_STROBE"`
	Script      string        `help:"Scenario file (YAML or TOML) played through the virtual mouse" env:"NIBBLEMOUSE_SCRIPT"`
	Interactive bool          `help:"Move the virtual mouse from the keyboard (WASD or arrows, space and enter for buttons, q to quit)"`
	Duration    time.Duration `help:"Stop after this long; 0 runs until interrupted or the script ends" default:"0s"`
}

// HidrawCmd runs the bridge with a real mouse read through hidraw.
type HidrawCmd struct {
	Bridge   bridge.Config `embed:"" prefix:"bridge."`
	Strobe   time.Duration `help:"Half period of the simulated strobe clock" default:"500us" env:"NIBBLEMOUSE_STROBE"`
	Device   string        `help:"hidraw device node" default:"/dev/hidraw0" env:"NIBBLEMOUSE_HIDRAW"`
	ReportID bool          `help:"Strip a leading report ID byte from each report" env:"NIBBLEMOUSE_REPORT_ID"`
}
