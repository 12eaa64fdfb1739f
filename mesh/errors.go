package mesh

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when a path cannot be resolved to a node or configuration.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration is returned for invalid grid settings.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrOutOfDomain is returned when a query position lies outside the indexed region.
	ErrOutOfDomain = errors.New("outside the mesh domain")
)

func newAddressingError(path, reason string) error {
	return errors.Wrapf(ErrNotFound, "cannot resolve %q: %s", path, reason)
}

func newConfigurationError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}
