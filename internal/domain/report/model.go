// Package report assembles one accession's full data into a paginated
// document. The same Document drives the JSON, HTML preview, and
// print-ready outputs; only presentation differs.
package report

import (
	"strconv"
	"time"
)

// Row is one line of a test's four-column result table.
type Row struct {
	Parameter   string `json:"parameter"`
	Value       string `json:"value"`
	Unit        string `json:"unit"`
	NormalRange string `json:"normal_range"`
}

// TestBlock is one test's rendered section.
type TestBlock struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Status string  `json:"status"`
	Rows   []Row   `json:"rows"`
	Notes  *string `json:"notes,omitempty"`
}

// Branding is the lab identity stamped on header and footer.
type Branding struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email"`
	Logo    *string `json:"logo,omitempty"`
}

// PatientInfo is the header's patient section.
type PatientInfo struct {
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Gender string  `json:"gender"`
	Phone  *string `json:"phone,omitempty"`
	Doctor *string `json:"doctor,omitempty"`
}

// SampleInfo is the header's sample section.
type SampleInfo struct {
	AccessionNumber string `json:"accession_number"`
	SampleType      string `json:"sample_type"`
	CollectionDate  string `json:"collection_date"`
	CollectionTime  string `json:"collection_time"`
	Priority        string `json:"priority"`
	Status          string `json:"status"`
}

// Footer appears on every page.
type Footer struct {
	Line  string `json:"line"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
}

// Page holds the tests printed on one physical page. Page 1 carries the
// patient and sample header plus the first test; every further test
// starts its own page.
type Page struct {
	Number int         `json:"number"`
	Header bool        `json:"header"`
	Tests  []TestBlock `json:"tests"`
	Footer Footer      `json:"footer"`
}

// Document is the fully composed report.
type Document struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Lab         Branding    `json:"lab"`
	Patient     PatientInfo `json:"patient"`
	Sample      SampleInfo  `json:"sample"`
	QRCode      string      `json:"qr_code,omitempty"`
	Pages       []Page      `json:"pages"`
}

// footerLine builds the branding line shared by every page footer.
func footerLine(b Branding, year int) string {
	line := b.Name + " © " + strconv.Itoa(year)
	if b.Address != "" {
		line += " | " + b.Address
	}
	if b.Phone != "" {
		line += " | Phone: " + b.Phone
	}
	return line
}

// Paginate lays the test blocks out by the fixed rule: header and the
// first test share page 1, every later test gets its own page. A report
// with no tests still yields the single header page.
func Paginate(blocks []TestBlock, branding Branding, year int) []Page {
	total := len(blocks)
	if total == 0 {
		total = 1
	}
	line := footerLine(branding, year)

	pages := make([]Page, 0, total)
	if len(blocks) == 0 {
		pages = append(pages, Page{
			Number: 1,
			Header: true,
			Footer: Footer{Line: line, Page: 1, Pages: 1},
		})
		return pages
	}
	for i, blk := range blocks {
		pages = append(pages, Page{
			Number: i + 1,
			Header: i == 0,
			Tests:  []TestBlock{blk},
			Footer: Footer{Line: line, Page: i + 1, Pages: total},
		})
	}
	return pages
}
