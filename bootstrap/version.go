package bootstrap

import "fmt"

// Version is a major.minor.patch triple used for application, engine and API
// versions.
type Version struct {
	Major int
	Minor int
	Patch int
}

var (
	Vulkan1_0 = Version{Major: 1}
	Vulkan1_1 = Version{Major: 1, Minor: 1}
	Vulkan1_2 = Version{Major: 1, Minor: 2}
	Vulkan1_3 = Version{Major: 1, Minor: 3}
)

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
