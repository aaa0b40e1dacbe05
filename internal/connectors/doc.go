// Package connectors provides implementations of the Connector interface
// for document sources. The filesystem connector scans and watches a local
// directory for files the extractors can read.
package connectors
