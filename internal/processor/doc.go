// Package processor contains the core business logic of slotrans. The
// Translator walks a dataset, translates entity values and utterances
// through a cached backend and realigns slots on the translated text. The
// Processor drives Translators for single runs, batch jobs and round trips
// and serves as the coordinator between all other components.
package processor
