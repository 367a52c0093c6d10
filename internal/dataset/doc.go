// Package dataset models NLU training datasets: entities with values and
// synonyms, intents with annotated utterances. An utterance is an ordered
// list of chunks whose texts concatenate to the full utterance text; chunks
// carrying an entity or slot name are slots.
package dataset
