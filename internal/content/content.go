// Package content detects body formats and pretty prints bodies that are
// not shown as a JSON tree.
package content

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/go-xmlfmt/xmlfmt"
	"github.com/yosssi/gohtml"
)

// Format represents the detected format of response content.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// String returns the string representation of the content format.
func (f Format) String() string {
	return string(f)
}

// Upper returns the uppercase string for display.
func (f Format) Upper() string {
	return strings.ToUpper(string(f))
}

// Detect checks the Content-Type header first, then falls back to sniffing
// the body.
func Detect(contentType string, body string) Format {
	ct := strings.ToLower(contentType)

	switch {
	case strings.Contains(ct, "application/json"),
		strings.Contains(ct, "text/json"),
		strings.Contains(ct, "+json"):
		return FormatJSON
	case strings.Contains(ct, "application/xml"),
		strings.Contains(ct, "text/xml"),
		strings.Contains(ct, "+xml"):
		return FormatXML
	case strings.Contains(ct, "text/html"):
		return FormatHTML
	}

	return detectFromContent(body)
}

var htmlPrefixes = []string{
	"<!doctype html", "<html", "<head", "<body", "<div", "<span", "<p>", "<a ",
	"<script", "<style", "<meta", "<link", "<title",
}

func detectFromContent(body string) Format {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return FormatText
	}

	switch trimmed[0] {
	case '{', '[':
		return FormatJSON
	case '<':
	default:
		return FormatText
	}

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(trimmed, "<?xml") {
		if strings.Contains(lower, "<html") {
			return FormatHTML
		}
		return FormatXML
	}
	for _, prefix := range htmlPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return FormatHTML
		}
	}
	return FormatXML
}

// Pretty reformats body for display. Bodies that cannot be reformatted are
// returned unchanged.
func Pretty(format Format, body string) string {
	if strings.TrimSpace(body) == "" {
		return body
	}

	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(body), "", "  "); err != nil {
			return body
		}
		return buf.String()
	case FormatXML:
		return strings.TrimSpace(xmlfmt.FormatXML(body, "", "  "))
	case FormatHTML:
		return gohtml.Format(body)
	default:
		return body
	}
}
