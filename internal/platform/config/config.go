// internal/platform/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"reconpipe/internal/platform/errors"
)

const (
	DefaultConfigPath = "config/settings.yaml"
	DefaultReportPath = "report.json"
)

// Settings es el árbol completo de configuración. Todas las claves son opcionales.
type Settings struct {
	SubdomainEnum SubdomainEnum `yaml:"subdomain_enum"`
	DNSAnalysis   DNSAnalysis   `yaml:"dns_analysis"`
	Scanning      Scanning      `yaml:"scanning"`
	WAFDetector   Toggle        `yaml:"waf_detector"`
	SSLScanner    Toggle        `yaml:"ssl_scanner"`
	WebScanner    WebScanner    `yaml:"web_scanner"`
	VulnScanner   VulnScanner   `yaml:"vuln_scanner"`
	BreachLookup  BreachLookup  `yaml:"breach_lookup"`
	Tools         Tools         `yaml:"tools"`
	Report        Report        `yaml:"report"`
	Logging       Logging       `yaml:"logging"`
}

type SubdomainEnum struct {
	Mode            string        `yaml:"mode"` // passive | active | both
	Wordlist        string        `yaml:"wordlist"`
	Threads         int           `yaml:"threads"` // cap only, execution is sequential
	SubfinderBinary string        `yaml:"subfinder_binary"`
	SubfinderArgs   Args          `yaml:"subfinder_args"`
	Delay           time.Duration `yaml:"delay"`
	ResolveActive   bool          `yaml:"resolve_active"`
}

type DNSAnalysis struct {
	CheckMX  bool `yaml:"check_mx"`
	CheckNS  bool `yaml:"check_ns"`
	CheckTXT bool `yaml:"check_txt"`
}

type Scanning struct {
	MasscanBinary  string `yaml:"masscan_binary"`
	Ports          string `yaml:"ports"`
	Rate           int    `yaml:"rate"`
	AdditionalArgs Args   `yaml:"additional_args"`
	OutputFile     string `yaml:"output_file"`
	NmapBinary     string `yaml:"nmap_binary"`
	NmapPorts      string `yaml:"nmap_ports"`
	NmapArguments  Args   `yaml:"nmap_arguments"`
}

// Toggle covers sections whose only key is "enabled".
type Toggle struct {
	Enabled bool `yaml:"enabled"`
}

type WebScanner struct {
	Enabled         bool   `yaml:"enabled"`
	DirsearchBinary string `yaml:"dirsearch_binary"`
	DirsearchArgs   Args   `yaml:"dirsearch_args"`
}

type VulnScanner struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
}

type BreachLookup struct {
	Enabled   bool   `yaml:"enabled"`
	Provider  string `yaml:"provider"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

type Tools struct {
	Timeout time.Duration `yaml:"timeout"`
}

type Report struct {
	OutputFile string `yaml:"output_file"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// Args is an argument vector. In YAML it may be written either as a sequence
// or as a single whitespace-separated string ("-sV --open").
type Args []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (a *Args) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*a = Args(strings.Fields(node.Value))
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		out := make(Args, 0, len(items))
		for _, it := range items {
			if it = strings.TrimSpace(it); it != "" {
				out = append(out, it)
			}
		}
		*a = out
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
}

// DefaultSettings retorna la configuración por defecto.
func DefaultSettings() Settings {
	return Settings{
		SubdomainEnum: SubdomainEnum{
			Mode:            "passive",
			Threads:         50,
			SubfinderBinary: "subfinder",
			Delay:           1 * time.Second,
		},
		DNSAnalysis: DNSAnalysis{
			CheckMX:  true,
			CheckNS:  true,
			CheckTXT: true,
		},
		Scanning: Scanning{
			MasscanBinary: "masscan",
			Ports:         "1-1000",
			Rate:          100,
			OutputFile:    "masscan_results.txt",
			NmapBinary:    "nmap",
			NmapPorts:     "1-1000",
			NmapArguments: Args{"-sV", "--open"},
		},
		WebScanner: WebScanner{
			DirsearchArgs: Args{},
		},
		VulnScanner: VulnScanner{
			Provider: "banner",
		},
		BreachLookup: BreachLookup{
			Provider: "none",
		},
		Tools: Tools{
			Timeout: 300 * time.Second,
		},
		Report: Report{
			OutputFile: DefaultReportPath,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load lee el fichero YAML sobre los defaults y aplica después las variables
// de entorno. Un fichero ausente o ilegible no es fatal: se devuelven los
// defaults junto con un error ErrConfiguration para que el llamador lo registre.
func Load(path string) (Settings, error) {
	cfg := DefaultSettings()

	var loadErr error
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err != nil:
			loadErr = errors.Wrapf(errors.ErrConfiguration, "read %s: %v", path, err)
		default:
			parsed := DefaultSettings()
			if err := yaml.Unmarshal(data, &parsed); err != nil {
				loadErr = errors.Wrapf(errors.ErrConfiguration, "parse %s: %v", path, err)
			} else {
				cfg = parsed
			}
		}
	}

	loadFromEnv(&cfg)
	normalize(&cfg)

	return cfg, loadErr
}

// ResolvePath elige la ruta del fichero: flag explícito, luego RECONPIPE_CONFIG, luego el default.
func ResolvePath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if p := getenv("RECONPIPE_CONFIG", ""); p != "" {
		return p
	}
	return DefaultConfigPath
}

// loadFromEnv carga overrides desde variables de entorno.
func loadFromEnv(cfg *Settings) {
	if v := getenv("RECONPIPE_LOG_LEVEL", ""); v != "" {
		cfg.Logging.Level = v
	}
	if v := getenv("RECONPIPE_OUTPUT", ""); v != "" {
		cfg.Report.OutputFile = v
	}
	if v := getenv("RECONPIPE_TOOLS_TIMEOUT", ""); v != "" {
		cfg.Tools.Timeout = time.Duration(parseInt(v, int(cfg.Tools.Timeout.Seconds()))) * time.Second
	}
}

func normalize(c *Settings) {
	c.SubdomainEnum.Mode = strings.ToLower(strings.TrimSpace(c.SubdomainEnum.Mode))
	switch c.SubdomainEnum.Mode {
	case "passive", "active", "both":
	default:
		c.SubdomainEnum.Mode = "passive"
	}
	if c.SubdomainEnum.Threads < 1 {
		c.SubdomainEnum.Threads = 1
	}
	if c.SubdomainEnum.SubfinderBinary == "" {
		c.SubdomainEnum.SubfinderBinary = "subfinder"
	}
	if c.SubdomainEnum.Delay < 0 {
		c.SubdomainEnum.Delay = 0
	}

	if c.Scanning.MasscanBinary == "" {
		c.Scanning.MasscanBinary = "masscan"
	}
	if c.Scanning.NmapBinary == "" {
		c.Scanning.NmapBinary = "nmap"
	}
	if strings.TrimSpace(c.Scanning.Ports) == "" {
		c.Scanning.Ports = "1-1000"
	}
	if strings.TrimSpace(c.Scanning.NmapPorts) == "" {
		c.Scanning.NmapPorts = "1-1000"
	}
	if c.Scanning.Rate < 1 {
		c.Scanning.Rate = 100
	}

	c.VulnScanner.Provider = strings.ToLower(strings.TrimSpace(c.VulnScanner.Provider))
	if c.VulnScanner.Provider == "" {
		c.VulnScanner.Provider = "banner"
	}
	c.BreachLookup.Provider = strings.ToLower(strings.TrimSpace(c.BreachLookup.Provider))
	if c.BreachLookup.Provider == "" {
		c.BreachLookup.Provider = "none"
	}

	if c.Tools.Timeout <= 0 {
		c.Tools.Timeout = 300 * time.Second
	}
	if strings.TrimSpace(c.Report.OutputFile) == "" {
		c.Report.OutputFile = DefaultReportPath
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}
