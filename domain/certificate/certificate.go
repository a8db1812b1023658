// Package certificate describes how one club's certificate is produced from
// an enriched row: placeholder substitution, naming, and the per-row outcome.
package certificate

import (
	"context"
	"fmt"
	"strings"

	"club-incentives/domain/incentive"
	"club-incentives/domain/sheet"
)

// Renderer produces a PNG image of a slide template with placeholders substituted
type Renderer interface {
	RenderImage(ctx context.Context, templateID string, substitutions map[string]string) ([]byte, error)
}

// Inspector measures a rendered image
type Inspector interface {
	Inspect(png []byte) (Inspection, error)
}

// Inspection describes a rendered image
type Inspection struct {
	Width  int
	Height int
	// Blank is true when the image has no visible variation, i.e. the slide rendered empty
	Blank bool
}

// Check rejects blank images and images narrower than minWidth (0 disables the width check)
func (i Inspection) Check(minWidth int) error {
	if i.Blank {
		return ErrBlankImage
	}
	if minWidth > 0 && i.Width < minWidth {
		return fmt.Errorf("%w: %dpx wide, need %dpx", ErrImageTooSmall, i.Width, minWidth)
	}
	return nil
}

// Record is the row a certificate is rendered from
type Record interface {
	Value(column string) (any, bool)
}

// Placeholder returns the template marker for a column, e.g. "<<Club Names>>"
func Placeholder(column string) string {
	return "<<" + column + ">>"
}

// Substitutions maps the placeholder of every header to the row's value as text.
// Columns the row lacks substitute to the empty string.
func Substitutions(headers []string, rec Record) map[string]string {
	subs := make(map[string]string, len(headers))
	for _, h := range headers {
		v, _ := rec.Value(h)
		subs[Placeholder(h)] = sheet.Text(v)
	}
	return subs
}

// FolderName is the award folder a certificate is filed under: "<Award Name> - <Award Date>"
func FolderName(rec Record) string {
	name, _ := rec.Value(incentive.ColumnAwardName)
	date, _ := rec.Value(incentive.ColumnAwardDate)
	return fmt.Sprintf("%s - %s", strings.TrimSpace(sheet.Text(name)), sheet.Text(date))
}

// FileName is the stored image name for a club
func FileName(club string) string {
	return club + " Certificate.png"
}

// SlideName is the name of the temporary slide copy for a club
func SlideName(club string) string {
	return club + " Certificate"
}

// Outcome is the result of rendering one row
type Outcome struct {
	SheetRow int
	Club     string
	URL      string
	Err      error
}

// OK reports whether the certificate was produced
func (o Outcome) OK() bool {
	return o.Err == nil && o.URL != ""
}

// Report collects the outcomes of one submission, in row order
type Report []Outcome

// Failed returns the clubs whose rendering failed, in row order
func (r Report) Failed() []string {
	var clubs []string
	for _, o := range r {
		if !o.OK() {
			clubs = append(clubs, o.Club)
		}
	}
	return clubs
}

// Succeeded counts the produced certificates
func (r Report) Succeeded() int {
	n := 0
	for _, o := range r {
		if o.OK() {
			n++
		}
	}
	return n
}
