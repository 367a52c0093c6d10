package realign

import (
	"sort"
	"unicode/utf8"

	"codeberg.org/snonux/slotrans/internal/dataset"
	"codeberg.org/snonux/slotrans/internal/stem"
	"codeberg.org/snonux/slotrans/internal/tokenize"
)

// Slot is a slot of the source utterance together with the independent
// translation of its value. An empty Translated means the value did not
// translate and the slot cannot be placed.
type Slot struct {
	Text       string
	Translated string
	Entity     string
	SlotName   string
	ID         string
}

// FromChunk creates a slot from an annotated source chunk.
func FromChunk(c dataset.Chunk) Slot {
	return Slot{Text: c.Text, Entity: c.Entity, SlotName: c.SlotName, ID: c.ID}
}

// Engine aligns translated slot values with translated utterance text.
// It holds no mutable state and is safe for concurrent use when its
// stemmer is.
type Engine struct {
	tokenizer tokenize.Tokenizer
	stemmer   stem.Stemmer
}

// New creates an engine. A nil tokenizer defaults to tokenize.Words and a
// nil stemmer to stem.Lower.
func New(tokenizer tokenize.Tokenizer, stemmer stem.Stemmer) *Engine {
	if tokenizer == nil {
		tokenizer = tokenize.Words{}
	}
	if stemmer == nil {
		stemmer = stem.Lower
	}
	return &Engine{tokenizer: tokenizer, stemmer: stemmer}
}

const unclaimed = -1

// group is a run of consecutive tokens with the same owner.
type group struct {
	start, end int // byte offsets
	slot       int // index into slots or unclaimed
}

// Align places slots on translated and returns the annotated utterance
// along with the slots that could not be placed, in input order. The chunk
// texts always concatenate to translated.
func (e *Engine) Align(translated string, slots []Slot) (dataset.Utterance, []Slot) {
	if len(slots) == 0 {
		return plainUtterance(translated), nil
	}

	tokens := e.tokenizer.Tokenize(translated)
	stems := stem.All(e.stemmer, tokenize.Values(tokens))

	slotStems := make([][]string, len(slots))
	for i, s := range slots {
		slotStems[i] = stem.All(e.stemmer, tokenize.Values(e.tokenizer.Tokenize(s.Translated)))
	}

	order := make([]int, len(slots))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(slotStems[order[a]]) > len(slotStems[order[b]])
	})

	owner := make([]int, len(tokens))
	for i := range owner {
		owner[i] = unclaimed
	}
	placed := make([]bool, len(slots))
	for _, si := range order {
		if pos := findUnclaimed(stems, slotStems[si], owner); pos >= 0 {
			for j := range slotStems[si] {
				owner[pos+j] = si
			}
			placed[si] = true
		}
	}

	var unassigned []Slot
	for i, ok := range placed {
		if !ok {
			unassigned = append(unassigned, slots[i])
		}
	}

	groups := groupTokens(tokens, owner, slots)
	if len(groups) == 0 {
		return plainUtterance(translated), unassigned
	}
	return buildUtterance(translated, groups, slots), unassigned
}

// findUnclaimed returns the first position where needle occurs in haystack
// on unclaimed tokens only, or -1. An empty needle never matches.
func findUnclaimed(haystack, needle []string, owner []int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, s := range needle {
			if owner[i+j] != unclaimed || haystack[i+j] != s {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// groupTokens merges consecutive tokens that are both unclaimed or owned by
// slots sharing entity and slot name. A merged slot group keeps the first
// slot as owner.
func groupTokens(tokens []tokenize.Token, owner []int, slots []Slot) []group {
	var groups []group
	for i, tok := range tokens {
		if n := len(groups); n > 0 && sameOwner(groups[n-1].slot, owner[i], slots) {
			groups[n-1].end = tok.End
			continue
		}
		groups = append(groups, group{start: tok.Start, end: tok.End, slot: owner[i]})
	}
	return groups
}

func sameOwner(a, b int, slots []Slot) bool {
	if a == unclaimed || b == unclaimed {
		return a == b
	}
	return slots[a].Entity == slots[b].Entity && slots[a].SlotName == slots[b].SlotName
}

// buildUtterance turns groups into chunks. Whitespace between groups goes
// to an adjacent plain chunk, or becomes its own plain chunk when it sits
// between two slots or at an edge next to a slot.
func buildUtterance(text string, groups []group, slots []Slot) dataset.Utterance {
	var chunks []dataset.Chunk
	appendPlain := func(s string) {
		if n := len(chunks); n > 0 && !chunks[n-1].IsSlot() {
			chunks[n-1].Text += s
			return
		}
		chunks = append(chunks, dataset.Chunk{Text: s})
	}

	pos := 0
	for _, g := range groups {
		gap := text[pos:g.start]
		body := text[g.start:g.end]
		pos = g.end

		if g.slot == unclaimed {
			appendPlain(gap + body)
			continue
		}
		if gap != "" {
			appendPlain(gap)
		}
		s := slots[g.slot]
		chunks = append(chunks, dataset.Chunk{
			Text:     body,
			Entity:   s.Entity,
			SlotName: s.SlotName,
			ID:       s.ID,
		})
	}
	if tail := text[pos:]; tail != "" {
		appendPlain(tail)
	}

	u := dataset.Utterance{Data: chunks}
	SetRanges(&u)
	return u
}

func plainUtterance(text string) dataset.Utterance {
	u := dataset.Utterance{Data: []dataset.Chunk{{Text: text}}}
	SetRanges(&u)
	return u
}

// SetRanges recomputes the character ranges of all chunks left to right.
func SetRanges(u *dataset.Utterance) {
	offset := 0
	for i := range u.Data {
		n := utf8.RuneCountInString(u.Data[i].Text)
		u.Data[i].Range = &dataset.Range{Start: offset, End: offset + n}
		offset += n
	}
}
