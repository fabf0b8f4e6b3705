package version

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// UnknownVersionMismatch is returned when the active protocol version asks
// for a feature version this build does not implement. It is fatal.
type UnknownVersionMismatch struct {
	Method        string
	KnownVersions []FeatureVersion
	Received      FeatureVersion
}

func (e UnknownVersionMismatch) Error() string {
	known := make([]string, len(e.KnownVersions))
	for i, v := range e.KnownVersions {
		known[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("unknown version mismatch in %s: known versions [%s], received %d",
		e.Method, strings.Join(known, ", "), e.Received)
}

// IsUnknownVersion reports whether err, or its cause, is an
// UnknownVersionMismatch.
func IsUnknownVersion(err error) bool {
	var mismatch UnknownVersionMismatch
	return errors.As(err, &mismatch)
}

// Registry holds the implementations of one feature, keyed by version.
// Registries are filled at startup and read-only afterwards.
type Registry[T any] struct {
	path  FeaturePath
	impls map[FeatureVersion]T
}

// NewRegistry creates an empty registry for a feature path.
func NewRegistry[T any](path FeaturePath) *Registry[T] {
	return &Registry[T]{
		path:  path,
		impls: make(map[FeatureVersion]T),
	}
}

// Register adds the implementation of version v. Registering a version twice
// is a programming error.
func (r *Registry[T]) Register(v FeatureVersion, impl T) *Registry[T] {
	if _, ok := r.impls[v]; ok {
		panic(fmt.Sprintf("%s: version %d registered twice", r.path, v))
	}
	r.impls[v] = impl
	return r
}

// Path returns the feature path of the registry.
func (r *Registry[T]) Path() FeaturePath {
	return r.path
}

// Versions lists the registered versions in ascending order.
func (r *Registry[T]) Versions() []FeatureVersion {
	vv := make([]FeatureVersion, 0, len(r.impls))
	for v := range r.impls {
		vv = append(vv, v)
	}
	sort.Slice(vv, func(i, j int) bool { return vv[i] < vv[j] })
	return vv
}

// Resolve returns the implementation selected by the platform version.
func (r *Registry[T]) Resolve(pv *PlatformVersion) (T, error) {
	var zero T
	v, err := pv.Feature(r.path)
	if err != nil {
		return zero, err
	}
	return r.ResolveVersion(v)
}

// ResolveVersion returns the implementation of an explicit feature version.
func (r *Registry[T]) ResolveVersion(v FeatureVersion) (T, error) {
	impl, ok := r.impls[v]
	if !ok {
		var zero T
		return zero, UnknownVersionMismatch{
			Method:        string(r.path),
			KnownVersions: r.Versions(),
			Received:      v,
		}
	}
	return impl, nil
}
