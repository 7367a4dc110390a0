package domain

import "fmt"

// APIVersion is the path prefix version of the conditions API.
type APIVersion string

const APIVersionV1 APIVersion = "v1"

var supportedVersions = map[APIVersion]struct{}{
	APIVersionV1: {},
}

// ParseAPIVersion validates s against the supported versions.
func ParseAPIVersion(s string) (APIVersion, error) {
	v := APIVersion(s)
	if _, ok := supportedVersions[v]; !ok {
		return "", fmt.Errorf("unknown API version: %s", s)
	}
	return v, nil
}

func (v APIVersion) String() string { return string(v) }

// Prefix returns the router mount path for the version, e.g. "/v1".
func (v APIVersion) Prefix() string { return "/" + string(v) }
