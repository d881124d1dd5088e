package env

// Prefix is the environment variable prefix for all command flags,
// e.g. PTAX_OUTPUT for -output
const Prefix = "PTAX"
