// internal/platform/config/flags.go
package config

import (
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// Options son los valores que llegan por línea de comandos.
type Options struct {
	ConfigPath   string
	OutputFile   string
	LogLevel     string
	Quiet        bool
	PrintVersion bool
	PrintHelp    bool
	Targets      []string
}

// ParseFlags parsea args (sin el nombre del programa) con un FlagSet propio,
// de modo que los tests no tocan el estado global de pflag.
func ParseFlags(args []string, stderr io.Writer) (Options, error) {
	var opts Options

	fs := pflag.NewFlagSet("reconpipe", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { PrintHelp(stderr) }

	fs.StringVarP(&opts.ConfigPath, "config", "c", "", "Settings file (default: config/settings.yaml)")
	fs.StringVarP(&opts.OutputFile, "out", "o", "", "Report path (overrides report.output_file)")
	fs.StringVarP(&opts.LogLevel, "log-level", "l", "", "Log level: debug, info, warn, error")
	fs.BoolVarP(&opts.Quiet, "quiet", "q", false, "Disable terminal progress output")
	fs.BoolVarP(&opts.PrintVersion, "version", "v", false, "Print version information and exit")
	fs.BoolVarP(&opts.PrintHelp, "help", "h", false, "Show this help message")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	for _, a := range fs.Args() {
		if a = strings.TrimSpace(a); a != "" {
			opts.Targets = append(opts.Targets, a)
		}
	}
	return opts, nil
}

// Apply aplica los overrides de flags sobre settings ya cargados (flags > ENV > fichero).
func (o Options) Apply(cfg *Settings) {
	if o.OutputFile != "" {
		cfg.Report.OutputFile = o.OutputFile
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
}
