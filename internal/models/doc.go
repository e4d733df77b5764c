// Package models provides functionality for listing available OpenAI
// models. It helps users discover which chat models their API key can
// use for catalogue translation.
package models
