package core

import "slices"

// Filter selects the mailbox messages a reactive behavior is interested in.
type Filter func(msg Message) bool

// MatchIntent matches messages carrying any of the given intents.
func MatchIntent(intents ...Intent) Filter {
	return func(msg Message) bool {
		return slices.Contains(intents, msg.Intent)
	}
}

// MatchKind matches messages carrying any of the given protocol kinds.
func MatchKind(kinds ...string) Filter {
	return func(msg Message) bool {
		return slices.Contains(kinds, msg.Kind)
	}
}

// MatchAll matches messages accepted by every filter.
func MatchAll(filters ...Filter) Filter {
	return func(msg Message) bool {
		for _, f := range filters {
			if !f(msg) {
				return false
			}
		}
		return true
	}
}

// MatchAny matches messages accepted by at least one filter.
func MatchAny(filters ...Filter) Filter {
	return func(msg Message) bool {
		for _, f := range filters {
			if f(msg) {
				return true
			}
		}
		return false
	}
}
