package nebula

import (
	"regexp"
	"runtime"
)

// DeviceTier buckets hosts by expected rendering budget.
type DeviceTier uint8

const (
	TierDesktop DeviceTier = iota // full particle budget
	TierMobile                    // reduced particle budget
)

const (
	desktopAmbientCount = 500
	mobileAmbientCount  = 200
)

// AmbientCount returns the ambient particle count for the tier.
func (t DeviceTier) AmbientCount() int {
	if t == TierMobile {
		return mobileAmbientCount
	}
	return desktopAmbientCount
}

// String returns "desktop" or "mobile".
func (t DeviceTier) String() string {
	if t == TierMobile {
		return "mobile"
	}
	return "desktop"
}

var mobileAgent = regexp.MustCompile(`(?i)android|webos|iphone|ipad|ipod|blackberry|iemobile|opera mini|mobile`)

// DetectDeviceTier classifies a user-agent string.
func DetectDeviceTier(userAgent string) DeviceTier {
	if mobileAgent.MatchString(userAgent) {
		return TierMobile
	}
	return TierDesktop
}

// HostDeviceTier classifies the running host by GOOS.
func HostDeviceTier() DeviceTier {
	switch runtime.GOOS {
	case "android", "ios":
		return TierMobile
	}
	return TierDesktop
}
