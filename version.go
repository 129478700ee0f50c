package gopublisher

import "fmt"

// Release of the GoPUB library.
const (
	VersionMajor = 0
	VersionMinor = 3
	VersionPatch = 0
)

// LibraryVersion is the full version string of the GoPUB library.
var LibraryVersion = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
