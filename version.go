package inquest

// Version is the library version, stamped at release time.
var Version = "0.1.0"
