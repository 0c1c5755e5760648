package version

// Version is the current release version of wikigraph
const Version = "0.3.0"
