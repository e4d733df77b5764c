// Package translation provides Japanese to English translation of catalogue
// records using OpenAI or Gemini. It includes translation caching so re-runs
// and retries never pay twice for the same text, and a worker that translates
// whole records field by field.
package translation
