// Package web probes every open port that speaks HTTP(S): status, server
// banner, page title, directory listing, and an optional dirsearch run.
package web

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/errors"
	"reconpipe/internal/platform/execx"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/stages/common"
	"reconpipe/internal/stages/sniff"
)

const (
	unknownServer     = "Unknown"
	directoryListing  = "Index of /"
	dirsearchFileBase = "dirsearch"
)

// Scheme elige el esquema de un puerto (sniff.Sniffer).
type Scheme interface {
	Resolve(ctx context.Context, host string, port int) (sniff.Protocol, bool)
}

// Config configura el escaneo web.
type Config struct {
	DirsearchBinary string // vacío = sin fuerza bruta de directorios
	DirsearchArgs   []string
}

// Stage probes the web services found by the fast port scan.
type Stage struct {
	cfg     Config
	fetcher common.Fetcher
	scheme  Scheme
	runner  execx.Runner
	logger  logx.Logger
}

// New crea el stage.
func New(cfg Config, fetcher common.Fetcher, scheme Scheme, runner execx.Runner, logger logx.Logger) *Stage {
	return &Stage{
		cfg:     cfg,
		fetcher: fetcher,
		scheme:  scheme,
		runner:  runner,
		logger:  logger.With("stage", string(domain.StageWebScanner)),
	}
}

// Kind implements ports.Stage.
func (s *Stage) Kind() domain.StageKind {
	return domain.StageWebScanner
}

// Run visits <proto>://<target>:<port> for every open port whose protocol
// can be determined against the resolved IP. Ports with no web protocol are
// skipped.
func (s *Stage) Run(ctx context.Context, _ []domain.Target, store *domain.ResultStore) (domain.StageResult, error) {
	scan := store.PortScan()
	result := make(domain.WebResult)

	var workDir string
	if s.cfg.DirsearchBinary != "" {
		dir, err := os.MkdirTemp("", "reconpipe-dirsearch-")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dir)
		workDir = dir
	}

	for _, target := range scan.Targets() {
		entry := scan[target]
		if entry.Failed() {
			continue
		}

		for _, port := range entry.OpenPorts {
			proto, ok := s.scheme.Resolve(ctx, entry.ResolvedIP, port)
			if !ok {
				s.logger.Debug("no web protocol, skipping port", "target", target, "port", port)
				continue
			}

			url := common.URL(string(proto), target, port)
			web := s.probe(ctx, url)

			if workDir != "" {
				lines, err := s.dirsearch(ctx, workDir, url, len(result))
				if err != nil {
					web.DirsearchError = err.Error()
				} else {
					web.Dirsearch = lines
				}
			}

			result[url] = web
		}
	}

	return result, nil
}

func (s *Stage) probe(ctx context.Context, url string) domain.WebEntry {
	resp, err := s.fetcher.Get(ctx, url, nil)
	if err != nil {
		if errors.IsNoData(err) {
			s.logger.Debug("web probe got no answer", "url", url, "error", err.Error())
		} else {
			s.logger.Warn("web probe failed", "url", url, "error", err.Error())
		}
		return domain.WebEntry{Error: err.Error()}
	}

	server := resp.Header.Get("Server")
	if server == "" {
		server = unknownServer
	}

	entry := domain.WebEntry{
		StatusCode:       resp.StatusCode,
		Server:           server,
		Title:            pageTitle(resp.Body),
		DirectoryListing: bytes.Contains(resp.Body, []byte(directoryListing)),
	}
	s.logger.Debug("web probe", "url", url, "status", entry.StatusCode, "server", entry.Server)
	return entry
}

// pageTitle devuelve el <title> del documento, o "".
func pageTitle(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}

// dirsearch: <bin> -u <url> [args...] -o <file>; el fichero se lee como líneas.
func (s *Stage) dirsearch(ctx context.Context, workDir, url string, seq int) ([]string, error) {
	outFile := filepath.Join(workDir, dirsearchFileBase+"-"+strconv.Itoa(seq)+".txt")

	args := []string{"-u", url}
	args = append(args, s.cfg.DirsearchArgs...)
	args = append(args, "-o", outFile)

	if _, err := s.runner.Run(ctx, s.cfg.DirsearchBinary, args, nil); err != nil {
		s.logger.Warn("dirsearch failed", "url", url, "error", err.Error())
		return nil, err
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		s.logger.Debug("dirsearch produced no output file", "url", url)
		return nil, nil
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
