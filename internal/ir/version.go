package ir

// ToolVersion is the redsql version reported by the CLI.
const ToolVersion = "0.1.0"
