// internal/testutil/dnsserver.go
package testutil

import (
	"net"
	"strings"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

// StartDNSServer levanta un servidor UDP local que responde con los registros
// dados en formato de zona ("example.com. 60 IN MX 10 mx.example.com.").
// Nombres desconocidos devuelven NXDOMAIN. Devuelve host:port.
func StartDNSServer(t *testing.T, records ...string) string {
	t.Helper()

	zone := make(map[string][]dns.RR)
	for _, rec := range records {
		rr, err := dns.NewRR(rec)
		require.NoError(t, err, "bad fixture record %q", rec)
		name := strings.ToLower(rr.Header().Name)
		zone[name] = append(zone[name], rr)
	}

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		for _, q := range req.Question {
			rrs, known := zone[strings.ToLower(q.Name)]
			if !known {
				m.Rcode = dns.RcodeNameError
				continue
			}
			for _, rr := range rrs {
				if rr.Header().Rrtype == q.Qtype {
					m.Answer = append(m.Answer, rr)
				}
			}
		}
		_ = w.WriteMsg(m)
	})

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		Handler:           handler,
		NotifyStartedFunc: func() { close(started) },
	}
	go func() { _ = srv.ActivateAndServe() }()
	<-started

	t.Cleanup(func() { _ = srv.Shutdown() })
	return pc.LocalAddr().String()
}
