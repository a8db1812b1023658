//go:build !imaging

package imaging

import (
	"club-incentives/domain/certificate"
)

// Inspector is a stub when GoCV/OpenCV is not available
type Inspector struct{}

// InspectorOption is a functional option for configuring Inspector
type InspectorOption func(*Inspector)

// WithMinContrast is a no-op in stub mode
func WithMinContrast(c float32) InspectorOption {
	return func(i *Inspector) {}
}

// NewInspector creates a stub inspector (requires building with -tags=imaging)
func NewInspector(opts ...InspectorOption) *Inspector {
	return &Inspector{}
}

// Available reports whether inspection is compiled in
func Available() bool { return false }

// Inspect returns an error indicating inspection is not available
func (i *Inspector) Inspect(png []byte) (certificate.Inspection, error) {
	return certificate.Inspection{}, certificate.ErrInspectionUnavailable
}

// Ensure Inspector implements certificate.Inspector
var _ certificate.Inspector = (*Inspector)(nil)
