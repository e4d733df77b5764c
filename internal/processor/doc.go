// Package processor contains the core enrichment logic for the catalogue.
// It reconciles the upstream document with previous output, decides which
// records still need translation or image downloads, runs that work across a
// bounded worker pool, and checkpoints progress so an interrupted run can
// resume without repeating anything. This package serves as the main
// coordinator between all other components.
package processor
