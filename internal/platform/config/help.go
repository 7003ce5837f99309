// internal/platform/config/help.go
package config

import (
	"fmt"
	"io"
	"runtime"
)

const helpText = `
reconpipe - Sequential Reconnaissance Pipeline

USAGE:
  reconpipe [options] <target1> [<target2> ...]

  Targets are IPv4 literals (10.0.0.1) or hostnames (example.com).

OPTIONS:
  -c, --config string      Settings file (default: "config/settings.yaml")
  -o, --out string         Report path (default: "report.json")
  -l, --log-level string   Log level: debug, info, warn, error (default: "info")
  -q, --quiet              Disable terminal progress output

INFO:
  -v, --version            Print version information and exit
  -h, --help               Show this help message

STAGES (fixed order):
  SubdomainEnum    subfinder and/or wordlist prefixes
  DNSAnalysis      MX / NS / TXT records
  MasscanScanner   fast port scan
  NmapScanner      service and version detection
  WAFDetector      header heuristics           (waf_detector.enabled)
  SSLScanner       certificate inspection      (ssl_scanner.enabled)
  WebScanner       HTTP probing and dirsearch  (web_scanner.enabled)
  VulnScanner      banner lookups              (vuln_scanner.enabled)
  BreachLookup     breach provider lookups     (breach_lookup.enabled)

ENVIRONMENT VARIABLES:
  RECONPIPE_CONFIG=path            Settings file
  RECONPIPE_LOG_LEVEL=debug        Log level
  RECONPIPE_OUTPUT=path            Report path
  RECONPIPE_TOOLS_TIMEOUT=300      External tool timeout in seconds

  Note: CLI flags override environment variables, which override the file.

EXIT CODES:
  0   report written (stage failures are recorded, not fatal)
  1   no targets given or bad flags
  2   report could not be written
  3   stage list could not be built (an empty report is still written)
`

// PrintHelp escribe la ayuda en w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, helpText)
}

// PrintVersion escribe la información de versión en w.
func PrintVersion(w io.Writer, version, commit, date string) {
	fmt.Fprintf(w, "reconpipe %s\n", version)
	fmt.Fprintf(w, "  Commit:  %s\n", commit)
	fmt.Fprintf(w, "  Built:   %s\n", date)
	fmt.Fprintf(w, "  Go:      %s\n", runtime.Version())
}
