package agent

import (
	"net"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// ResolveHostname implements the fallback chain from §6: try the short
// hostname, then the FQDN, then the kernel-reported nodename, preferring
// whichever of those contains a dot (more likely to be a real FQDN);
// falling back to the first value if none does. An explicit override
// always wins and is applied by the caller before this is reached.
func ResolveHostname() string {
	tries := []string{}
	if h, err := os.Hostname(); err == nil && h != "" {
		tries = append(tries, h)
	}
	if fqdn := lookupFQDN(); fqdn != "" {
		tries = append(tries, fqdn)
	}
	if node := nodename(); node != "" {
		tries = append(tries, node)
	}

	for _, candidate := range tries {
		if strings.Contains(candidate, ".") {
			return candidate
		}
	}
	if len(tries) > 0 {
		return tries[0]
	}
	return "localhost"
}

// lookupFQDN best-effort resolves the machine's fully-qualified domain name
// by resolving the short hostname forward then its first address back,
// mirroring what getaddrinfo(AI_CANONNAME) gives the original agent. Any
// failure along the way yields "" rather than an error: hostname resolution
// is never allowed to block startup.
func lookupFQDN() string {
	short, err := os.Hostname()
	if err != nil || short == "" {
		return ""
	}
	addrs, err := net.LookupHost(short)
	if err != nil || len(addrs) == 0 {
		return ""
	}
	names, err := net.LookupAddr(addrs[0])
	if err != nil || len(names) == 0 {
		return ""
	}
	return strings.TrimSuffix(names[0], ".")
}

// nodename reads the kernel's reported nodename via uname(2), the last
// fallback in the chain.
func nodename() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	b := make([]byte, 0, len(uts.Nodename))
	for _, c := range uts.Nodename {
		if c == 0 {
			break
		}
		b = append(b, byte(c))
	}
	return string(b)
}
