// Package realign places the slots of a source utterance on an
// independently translated version of its text.
//
// Machine translation gives no token alignment, so every slot value is
// translated on its own and searched for in the translated full text as a
// contiguous run of stems. Longer slots claim their tokens first; a slot
// whose stems are not found on unclaimed tokens is returned as unassigned.
package realign
