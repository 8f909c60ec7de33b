package learnlog

// Version is the current learnlog release.
const Version = "0.3.0"
