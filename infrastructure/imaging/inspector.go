//go:build imaging

// Package imaging inspects rendered certificate images with OpenCV.
package imaging

import (
	"fmt"

	"club-incentives/domain/certificate"

	"gocv.io/x/gocv"
)

// Inspector implements certificate.Inspector using GoCV
type Inspector struct {
	// minContrast is the grey-level spread below which an image counts as blank
	minContrast float32
}

// InspectorOption is a functional option for configuring Inspector
type InspectorOption func(*Inspector)

// WithMinContrast sets the grey-level spread below which an image is blank
func WithMinContrast(c float32) InspectorOption {
	return func(i *Inspector) {
		i.minContrast = c
	}
}

// NewInspector creates a new image inspector
func NewInspector(opts ...InspectorOption) *Inspector {
	i := &Inspector{minContrast: 8}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Available reports whether inspection is compiled in
func Available() bool { return true }

// Inspect decodes a PNG and reports its size and whether it is blank
func (i *Inspector) Inspect(png []byte) (certificate.Inspection, error) {
	mat, err := gocv.IMDecode(png, gocv.IMReadGrayScale)
	if err != nil {
		return certificate.Inspection{}, fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return certificate.Inspection{}, fmt.Errorf("failed to decode image: empty result")
	}

	minVal, maxVal, _, _ := gocv.MinMaxLoc(mat)

	return certificate.Inspection{
		Width:  mat.Cols(),
		Height: mat.Rows(),
		Blank:  maxVal-minVal < i.minContrast,
	}, nil
}

// Ensure Inspector implements certificate.Inspector
var _ certificate.Inspector = (*Inspector)(nil)
