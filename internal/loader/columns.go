// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package loader

import (
	"fmt"
	"strings"
)

// Keyword sets matched as substrings against lower-cased, trimmed headers.
// Sets are tested in this order; a header is assigned to the first set it
// matches.
var (
	partNumberKeywords  = []string{"mpn", "part number", "part_number", "partnumber"}
	descriptionKeywords = []string{"model", "description", "product"}
	quantityKeywords    = []string{"quantity", "qty", "amount"}
)

// unmapped marks a target field with no source column.
const unmapped = -1

// Mapping records the source column index feeding each target field.
type Mapping struct {
	PartNumber  int
	Description int
	Quantity    int

	// Positional is true when the positional fallback filled at least one field.
	Positional bool

	headers []string
}

// Complete reports whether the required fields (part number and
// description) have a source column. Quantity is optional.
func (m Mapping) Complete() bool {
	return m.PartNumber != unmapped && m.Description != unmapped
}

// Missing lists the required fields without a source column.
func (m Mapping) Missing() []string {
	var missing []string
	if m.PartNumber == unmapped {
		missing = append(missing, "part number")
	}
	if m.Description == unmapped {
		missing = append(missing, "description")
	}
	return missing
}

// String renders the mapping as target=header pairs for logging.
func (m Mapping) String() string {
	return fmt.Sprintf("part_number=%s description=%s quantity=%s",
		m.header(m.PartNumber), m.header(m.Description), m.header(m.Quantity))
}

func (m Mapping) header(idx int) string {
	if idx == unmapped || idx >= len(m.headers) {
		return "<none>"
	}
	return fmt.Sprintf("%q", m.headers[idx])
}

// mapColumns identifies the target columns in headers.
//
// Keyword matches always take precedence. When the part number or
// description is still unmapped and at least three columns exist, each
// unmapped field, in the order part number, description, quantity, takes
// the first of the first three columns no other field has claimed.
func mapColumns(headers []string) Mapping {
	m := Mapping{
		PartNumber:  unmapped,
		Description: unmapped,
		Quantity:    unmapped,
		headers:     headers,
	}

	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case containsAny(name, partNumberKeywords):
			if m.PartNumber == unmapped {
				m.PartNumber = i
			}
		case containsAny(name, descriptionKeywords):
			if m.Description == unmapped {
				m.Description = i
			}
		case containsAny(name, quantityKeywords):
			if m.Quantity == unmapped {
				m.Quantity = i
			}
		}
	}

	if m.Complete() || len(headers) < 3 {
		return m
	}

	claimed := map[int]bool{}
	for _, idx := range []int{m.PartNumber, m.Description, m.Quantity} {
		if idx != unmapped {
			claimed[idx] = true
		}
	}
	for _, field := range []*int{&m.PartNumber, &m.Description, &m.Quantity} {
		if *field != unmapped {
			continue
		}
		for pos := 0; pos < 3; pos++ {
			if !claimed[pos] {
				*field = pos
				claimed[pos] = true
				m.Positional = true
				break
			}
		}
	}
	return m
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
