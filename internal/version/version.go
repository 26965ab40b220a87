package version

// Version is the current version of tapealert.
// This MUST be incremented for each release that includes changes.
// Use semantic versioning: MAJOR.MINOR.PATCH
const Version = "1.2.0"

// Signature identifies the program in mail trailers and log banners.
const Signature = "tapealert - v" + Version
