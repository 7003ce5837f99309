// Package nmap runs the deep service scan and parses nmap's XML output.
package nmap

import (
	"encoding/xml"
	"io"
	"strings"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/errors"
)

// nmapRun es la raíz de la salida -oX.
type nmapRun struct {
	XMLName xml.Name   `xml:"nmaprun"`
	Hosts   []nmapHost `xml:"host"`
}

type nmapHost struct {
	Status    nmapStatus    `xml:"status"`
	Addresses []nmapAddress `xml:"address"`
	Ports     nmapPorts     `xml:"ports"`
}

type nmapStatus struct {
	State string `xml:"state,attr"`
}

type nmapAddress struct {
	Addr     string `xml:"addr,attr"`
	AddrType string `xml:"addrtype,attr"`
}

type nmapPorts struct {
	Ports []nmapPort `xml:"port"`
}

type nmapPort struct {
	Protocol string      `xml:"protocol,attr"`
	PortID   int         `xml:"portid,attr"`
	State    nmapState   `xml:"state"`
	Service  nmapService `xml:"service"`
}

type nmapState struct {
	State string `xml:"state,attr"`
}

type nmapService struct {
	Name    string `xml:"name,attr"`
	Product string `xml:"product,attr"`
	Version string `xml:"version,attr"`
}

const statusHostDown = "host down"

// ParseXML extracts the entry for ip. A host missing from the report, or
// reported down, yields {status: "host down"}. Only open ports are listed.
func ParseXML(r io.Reader, ip string) (domain.ServiceScanEntry, error) {
	var run nmapRun
	if err := xml.NewDecoder(r).Decode(&run); err != nil {
		return domain.ServiceScanEntry{}, errors.Wrapf(errors.ErrParse, "nmap xml: %v", err)
	}

	for _, h := range run.Hosts {
		if !h.hasAddress(ip) {
			continue
		}
		if h.Status.State == "" || h.Status.State == "down" {
			return domain.ServiceScanEntry{Status: statusHostDown}, nil
		}

		entry := domain.ServiceScanEntry{Status: h.Status.State}
		for _, p := range h.Ports.Ports {
			if p.State.State != "" && p.State.State != "open" {
				continue
			}
			service := p.Service.Name
			if service == "" {
				service = "unknown"
			}
			entry.Ports = append(entry.Ports, domain.ServicePort{
				Port:     p.PortID,
				Protocol: p.Protocol,
				Service:  service,
				Version:  strings.TrimSpace(p.Service.Product + " " + p.Service.Version),
			})
		}
		return entry, nil
	}

	return domain.ServiceScanEntry{Status: statusHostDown}, nil
}

func (h nmapHost) hasAddress(ip string) bool {
	for _, a := range h.Addresses {
		if a.Addr == ip {
			return true
		}
	}
	return false
}
