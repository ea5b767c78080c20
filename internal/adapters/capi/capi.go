// Package capi parses core description files.
//
// Two formats are understood, selected by the first line of the file:
// "CAPI=1" section-style descriptions and "CAPI=2:" YAML descriptions.
package capi

import (
	"bufio"
	"bytes"
	"strings"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	capi1Preamble = "CAPI=1"
	capi2Key      = "CAPI=2"
)

// Parser decodes core descriptions into domain cores.
type Parser struct {
	schema *schema
}

// NewParser creates a Parser with the compiled description schema.
func NewParser() (*Parser, error) {
	s, err := newSchema()
	if err != nil {
		return nil, err
	}
	return &Parser{schema: s}, nil
}

// Parse decodes the description at path from data. It returns the core
// together with non-fatal warnings such as unknown keys inside a section.
func (p *Parser) Parse(path string, data []byte) (*domain.Core, []string, error) {
	switch preamble(data) {
	case capi1Preamble:
		return p.parseCAPI1(path, data)
	case capi2Key + ":":
		return p.parseCAPI2(path, data)
	default:
		return nil, nil, zerr.With(domain.ErrUnknownFileType, "path", path)
	}
}

// preamble returns the first line that is neither blank nor a comment.
func preamble(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.ReplaceAll(line, " ", "")
	}
	return ""
}
