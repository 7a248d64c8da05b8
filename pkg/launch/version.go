package launch

import (
	"fmt"

	masterminds "github.com/Masterminds/semver/v3"
)

const versionLogPrefix = "launch:version"

// RuntimeVersion is the version of this runtime. Release builds set it with
// -ldflags "-X github.com/morezero/framehost/pkg/launch.RuntimeVersion=...".
var RuntimeVersion = "0.4.0"

// CheckRuntimeVersion verifies version satisfies constraint. An empty
// constraint always passes.
func CheckRuntimeVersion(constraint, version string) error {
	if constraint == "" {
		return nil
	}
	c, err := masterminds.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("%s - invalid runtimeVersion constraint %q: %w", versionLogPrefix, constraint, err)
	}
	v, err := masterminds.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%s - invalid runtime version %q: %w", versionLogPrefix, version, err)
	}
	if ok, errs := c.Validate(v); !ok {
		return fmt.Errorf("%s - runtime %s does not satisfy %q: %v", versionLogPrefix, version, constraint, errs)
	}
	return nil
}
