// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the command lifecycle (run, validate, list,
// info), decoupled from any specific entrypoint like a CLI or server.
package app
