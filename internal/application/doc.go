// Package application wires the resolved settings, logger, router, and HTTP
// server together so the main package stays focused on flag parsing and
// process lifecycle.
package application
