// Package models lists the translation models slotrans can use: the
// registered backends with their aliases and, given an API key, the OpenAI
// chat models usable with the openai backend.
package models
