// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// Fixture data para tests (sin dependencias de domain)

// GrepableMasscan es una salida -oG real de masscan con dos hosts.
const GrepableMasscan = `# Masscan 1.3.2 scan initiated Sun Jan  1 00:00:00 2023
# Ports scanned: TCP(1000;1-1000) UDP(0;) SCTP(0;) PROTOCOLS(0;)
Timestamp: 1672531200	Host: 10.0.0.1 ()	Ports: 80/open/tcp//http//
Timestamp: 1672531201	Host: 10.0.0.1 ()	Ports: 443/open/tcp//https//
Timestamp: 1672531202	Host: 10.0.0.10 ()	Ports: 22/open/tcp//ssh//
Timestamp: 1672531203	Host: 10.0.0.1 ()	Ports: 80/open/tcp//http//
# Masscan done at Sun Jan  1 00:00:05 2023
`

// NmapXMLUp es una salida -oX de nmap con un host y dos servicios.
const NmapXMLUp = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE nmaprun>
<nmaprun scanner="nmap" args="nmap -sV --open -p 1-1000 -oX - 10.0.0.1" start="1672531200" version="7.94" xmloutputversion="1.05">
<host starttime="1672531200" endtime="1672531210">
<status state="up" reason="syn-ack" reason_ttl="0"/>
<address addr="10.0.0.1" addrtype="ipv4"/>
<ports>
<port protocol="tcp" portid="22"><state state="open" reason="syn-ack" reason_ttl="0"/><service name="ssh" product="OpenSSH" version="8.9p1" method="probed" conf="10"/></port>
<port protocol="tcp" portid="80"><state state="open" reason="syn-ack" reason_ttl="0"/><service name="http" product="Apache httpd" version="2.4.41" method="probed" conf="10"/></port>
<port protocol="tcp" portid="8081"><state state="open" reason="syn-ack" reason_ttl="0"/></port>
</ports>
</host>
<runstats><finished time="1672531210" elapsed="10.00" exit="success"/><hosts up="1" down="0" total="1"/></runstats>
</nmaprun>
`

// NmapXMLDown es la salida de nmap cuando el host no responde.
const NmapXMLDown = `<?xml version="1.0" encoding="UTF-8"?>
<nmaprun scanner="nmap" args="nmap -sV --open -p 1-1000 -oX - 10.0.0.2" start="1672531200" version="7.94" xmloutputversion="1.05">
<runstats><finished time="1672531203" elapsed="3.00" exit="success"/><hosts up="0" down="1" total="1"/></runstats>
</nmaprun>
`

// StaticResolver resuelve nombres desde un mapa fijo. Los literales IPv4 se
// devuelven tal cual; lo demás falla.
type StaticResolver map[string]string

// ResolveIPv4 implements the stages' resolver contract.
func (r StaticResolver) ResolveIPv4(_ context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil && ip.To4() != nil {
		return host, nil
	}
	if ip, ok := r[host]; ok {
		return ip, nil
	}
	return "", fmt.Errorf("no such host: %s", host)
}

// SplitHostPort separa una dirección de servidor de prueba en host y puerto.
func SplitHostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

// ClosedPort devuelve un puerto local en el que nadie escucha.
func ClosedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port := SplitHostPort(t, l.Addr().String())
	require.NoError(t, l.Close())
	return port
}
