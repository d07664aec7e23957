// Package render merges a generated base request with the operator-supplied
// target host, bearer token, and extra headers, producing wire-ready raw
// HTTP/1.1 text. Everything here is a pure function of its inputs and safe to
// call from any goroutine.
package render

import (
	"errors"
	"strconv"
	"strings"
)

// ErrEmptyHost is returned when render is attempted without a target host.
// No placeholder host is ever substituted.
var ErrEmptyHost = errors.New("render: target host is empty")

// Final merges host, token, and extra headers into rawBase and returns the
// CRLF-normalized request text.
//
// The Host line always carries hostField exactly as given (the transport
// host/port pair comes from ParseHostPort instead). A non-empty bearerToken
// overrides any Authorization header present in rawBase. Extra headers
// override same-named existing headers, except a header named Host (any
// case), which is dropped.
func Final(rawBase, hostField, bearerToken string, extra *Headers) (string, error) {
	if strings.TrimSpace(hostField) == "" {
		return "", ErrEmptyHost
	}

	lines := strings.Split(rawBase, "\n")
	requestLine := ""
	if len(lines) > 0 {
		requestLine = lines[0]
	}
	rest := lines[1:]

	// Header/body boundary is the first blank line.
	bodyIndex := -1
	for i, l := range rest {
		if strings.TrimSpace(l) == "" {
			bodyIndex = i
			break
		}
	}
	headerLines := rest
	var bodyLines []string
	if bodyIndex >= 0 {
		headerLines = rest[:bodyIndex]
		bodyLines = rest[bodyIndex+1:]
	}

	merged := NewHeaders()
	for _, l := range headerLines {
		name, value, ok := strings.Cut(l, ":")
		if !ok {
			continue
		}
		merged.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	if bearerToken != "" {
		merged.Set("Authorization", "Bearer "+bearerToken)
	}
	if extra != nil {
		for _, k := range extra.Keys() {
			if strings.EqualFold(k, "host") {
				continue
			}
			v, _ := extra.Get(k)
			merged.Set(k, v)
		}
	}

	out := []string{requestLine, "Host: " + hostField}
	for _, k := range merged.Keys() {
		if strings.EqualFold(k, "host") {
			continue
		}
		v, _ := merged.Get(k)
		out = append(out, k+": "+v)
	}
	out = append(out, "")
	out = append(out, bodyLines...)

	return NormalizeCRLF(strings.Join(out, "\n")), nil
}

// NormalizeCRLF collapses CRLF and lone CR to LF, converts every LF to CRLF,
// and appends a final CRLF when missing so the text always terminates in a
// blank CRLF-terminated line. Normalizing already-normalized text is a no-op.
func NormalizeCRLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", "\r\n")
	if !strings.HasSuffix(s, "\r\n") {
		s += "\r\n"
	}
	return s
}

// ParseHostPort derives the transport (host, port) pair from the raw host
// field: a leading http:// or https:// scheme is stripped, anything from the
// first slash on is dropped, and an explicit port is split off at the last
// colon. Without an explicit (or parseable) port, the default is 443 when
// useHTTPS is set and 80 otherwise.
func ParseHostPort(hostField string, useHTTPS bool) (string, int) {
	host := strings.TrimSpace(hostField)
	// The HTTPS toggle wins over a stripped scheme.
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")
	if i := strings.Index(host, "/"); i >= 0 {
		host = host[:i]
	}

	port := 0
	if i := strings.LastIndex(host, ":"); i >= 0 {
		if p, err := strconv.Atoi(host[i+1:]); err == nil {
			port = p
		}
		host = host[:i]
	}
	if port == 0 {
		if useHTTPS {
			port = 443
		} else {
			port = 80
		}
	}
	return host, port
}
