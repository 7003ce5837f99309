// Package stages assembles the ordered stage list from settings.
package stages

import (
	"context"
	"time"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/core/ports"
	"reconpipe/internal/platform/config"
	"reconpipe/internal/platform/dnsx"
	"reconpipe/internal/platform/execx"
	"reconpipe/internal/platform/httpclient"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/platform/registry"
	"reconpipe/internal/stages/breach"
	"reconpipe/internal/stages/common"
	"reconpipe/internal/stages/dnsanalysis"
	"reconpipe/internal/stages/masscan"
	"reconpipe/internal/stages/nmap"
	"reconpipe/internal/stages/sniff"
	"reconpipe/internal/stages/subdomain"
	"reconpipe/internal/stages/tlsinspect"
	"reconpipe/internal/stages/vuln"
	"reconpipe/internal/stages/waf"
	"reconpipe/internal/stages/web"
)

// Timeouts de las peticiones HTTP de cada stage.
const (
	WAFRequestTimeout = 3 * time.Second
	WebRequestTimeout = 5 * time.Second
)

// ResolveCacheSize limita los nombres recordados por ejecución.
const ResolveCacheSize = 4096

// DNSClient cubre lo que necesitan DNSAnalysis y la enumeración activa.
type DNSClient interface {
	dnsanalysis.Lookup
	subdomain.NameChecker
}

// Scheme decide http/https para un puerto abierto.
type Scheme interface {
	Resolve(ctx context.Context, host string, port int) (sniff.Protocol, bool)
}

// Deps son las dependencias compartidas por los stages.
type Deps struct {
	Runner     execx.Runner
	Resolver   common.Resolver
	DNS        DNSClient
	Scheme     Scheme
	WAFFetcher common.Fetcher
	WebFetcher common.Fetcher
	Logger     logx.Logger
}

// NewDeps builds the production dependencies. Nothing here touches the
// network; clients connect lazily.
func NewDeps(settings config.Settings, logger logx.Logger) Deps {
	wafHTTP := httpclient.DefaultConfig()
	wafHTTP.Timeout = WAFRequestTimeout
	webHTTP := httpclient.DefaultConfig()
	webHTTP.Timeout = WebRequestTimeout

	return Deps{
		Runner:     execx.NewExecRunner(logger, settings.Tools.Timeout),
		Resolver:   common.NewCachingResolver(common.NewNetResolver(), ResolveCacheSize),
		DNS:        dnsx.New(dnsx.Config{}, logger),
		Scheme:     sniff.New(sniff.DefaultTimeout, logger),
		WAFFetcher: httpclient.New(wafHTTP, logger),
		WebFetcher: httpclient.New(webHTTP, logger),
		Logger:     logger,
	}
}

// Build registers every stage with its enabled predicate and returns the
// enabled ones in execution order. The four discovery stages always run.
func Build(settings config.Settings, deps Deps) ([]ports.Stage, error) {
	reg := registry.NewStageRegistry(deps.Logger)
	for _, e := range table(deps) {
		if err := reg.Register(e.kind, e.enabled, e.factory); err != nil {
			return nil, err
		}
	}
	return reg.Build(settings)
}

type catalogEntry struct {
	kind    domain.StageKind
	enabled registry.Predicate
	factory registry.StageFactory
}

func table(d Deps) []catalogEntry {
	return []catalogEntry{
		{domain.StageSubdomainEnum, registry.Always, func(s config.Settings) (ports.Stage, error) {
			return subdomain.New(subdomain.Config{
				Mode:          s.SubdomainEnum.Mode,
				Wordlist:      s.SubdomainEnum.Wordlist,
				Binary:        s.SubdomainEnum.SubfinderBinary,
				Args:          s.SubdomainEnum.SubfinderArgs,
				Delay:         s.SubdomainEnum.Delay,
				ResolveActive: s.SubdomainEnum.ResolveActive,
			}, d.Runner, d.DNS, d.Logger), nil
		}},
		{domain.StageDNSAnalysis, registry.Always, func(s config.Settings) (ports.Stage, error) {
			return dnsanalysis.New(dnsanalysis.Config{
				CheckMX:  s.DNSAnalysis.CheckMX,
				CheckNS:  s.DNSAnalysis.CheckNS,
				CheckTXT: s.DNSAnalysis.CheckTXT,
			}, d.DNS, d.Logger), nil
		}},
		{domain.StageMasscanScanner, registry.Always, func(s config.Settings) (ports.Stage, error) {
			return masscan.New(masscan.Config{
				Binary:         s.Scanning.MasscanBinary,
				Ports:          s.Scanning.Ports,
				Rate:           s.Scanning.Rate,
				AdditionalArgs: s.Scanning.AdditionalArgs,
				OutputFile:     s.Scanning.OutputFile,
			}, d.Runner, d.Resolver, d.Logger), nil
		}},
		{domain.StageNmapScanner, registry.Always, func(s config.Settings) (ports.Stage, error) {
			return nmap.New(nmap.Config{
				Binary:    s.Scanning.NmapBinary,
				Ports:     s.Scanning.NmapPorts,
				Arguments: s.Scanning.NmapArguments,
			}, d.Runner, d.Resolver, d.Logger), nil
		}},
		{domain.StageWAFDetector, func(s config.Settings) bool { return s.WAFDetector.Enabled }, func(config.Settings) (ports.Stage, error) {
			return waf.New(d.WAFFetcher, d.Scheme, nil, d.Logger), nil
		}},
		{domain.StageSSLScanner, func(s config.Settings) bool { return s.SSLScanner.Enabled }, func(config.Settings) (ports.Stage, error) {
			return tlsinspect.New(tlsinspect.Config{}, d.Logger), nil
		}},
		{domain.StageWebScanner, func(s config.Settings) bool { return s.WebScanner.Enabled }, func(s config.Settings) (ports.Stage, error) {
			return web.New(web.Config{
				DirsearchBinary: s.WebScanner.DirsearchBinary,
				DirsearchArgs:   s.WebScanner.DirsearchArgs,
			}, d.WebFetcher, d.Scheme, d.Runner, d.Logger), nil
		}},
		{domain.StageVulnScanner, func(s config.Settings) bool { return s.VulnScanner.Enabled }, func(s config.Settings) (ports.Stage, error) {
			warnIgnoredCredentials(d.Logger, domain.StageVulnScanner, s.VulnScanner.Provider, s.VulnScanner.APIKey != "")
			return vuln.New(s.VulnScanner.Provider, d.Logger), nil
		}},
		{domain.StageBreachLookup, func(s config.Settings) bool { return s.BreachLookup.Enabled }, func(s config.Settings) (ports.Stage, error) {
			warnIgnoredCredentials(d.Logger, domain.StageBreachLookup, s.BreachLookup.Provider,
				s.BreachLookup.APIKey != "" || s.BreachLookup.APISecret != "")
			return breach.New(s.BreachLookup.Provider, d.Logger), nil
		}},
	}
}

// warnIgnoredCredentials avisa cuando se configuran credenciales para un
// proveedor local: se aceptan en el fichero pero ningún proveedor las usa.
func warnIgnoredCredentials(logger logx.Logger, kind domain.StageKind, provider string, set bool) {
	if !set {
		return
	}
	logger.Warn("api credentials configured but the provider is local; ignoring them",
		"stage", string(kind),
		"provider", provider,
	)
}
