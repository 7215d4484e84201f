package ta

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/limaJavier/tacos/pkg/automata"
	"github.com/samber/lo"
)

// SharedActions returns the actions that occur in the alphabet of at least two automata
func SharedActions[L, A cmp.Ordered](components ...*TimedAutomaton[L, A]) []A {
	occurrences := make(map[A]int)
	for _, automaton := range components {
		for _, action := range automaton.Alphabet() {
			occurrences[action]++
		}
	}
	shared := lo.Keys(lo.PickBy(occurrences, func(_ A, count int) bool { return count > 1 }))
	slices.Sort(shared)
	return shared
}

// CollectSynchronizingAlphabets maps every synchronized action to the indexes of the
// alphabets it belongs to
func CollectSynchronizingAlphabets[A cmp.Ordered](synchronized []A, alphabets [][]A) map[A][]int {
	participants := make(map[A][]int, len(synchronized))
	for _, action := range synchronized {
		participants[action] = make([]int, 0)
		for i, alphabet := range alphabets {
			if slices.Contains(alphabet, action) {
				participants[action] = append(participants[action], i)
			}
		}
	}
	return participants
}

// Product composes the automata in parallel. Synchronized actions must be taken jointly by
// every automaton whose alphabet contains them, any other action is interleaved. A nil
// synchronized list synchronizes on the shared actions. Clock names declared by more than one
// automaton are renamed to <clock>_<index>, suffixed further if that name is taken. Product
// locations are named "(l1,l2,...)"
func Product[L, A cmp.Ordered](components []*TimedAutomaton[L, A], synchronized []A) (*TimedAutomaton[string, A], error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("cannot compute the product of zero automata")
	}
	if synchronized == nil {
		synchronized = SharedActions(components...)
	}

	//** Clocks and alphabet
	renamings := renameClocks(components)
	alphabets := lo.Map(components, func(component *TimedAutomaton[L, A], _ int) []A { return component.Alphabet() })
	participants := CollectSynchronizingAlphabets(synchronized, alphabets)

	alphabet := lo.Uniq(lo.Flatten(alphabets))
	slices.Sort(alphabet)
	clocks := lo.Uniq(lo.FlatMap(renamings, func(renaming map[string]string, _ int) []string { return lo.Values(renaming) }))
	slices.Sort(clocks)

	//** Locations
	tuples := locationTuples(components)
	locations := lo.Map(tuples, func(tuple []L, _ int) string { return productLocationName(tuple) })
	finals := lo.FilterMap(tuples, func(tuple []L, _ int) (string, bool) {
		return productLocationName(tuple), lo.EveryBy(lo.Range(len(tuple)), func(i int) bool {
			return components[i].IsFinalLocation(tuple[i])
		})
	})
	initial := productLocationName(lo.Map(components, func(component *TimedAutomaton[L, A], _ int) L { return component.InitialLocation() }))

	//** Transitions
	transitions := make([]Transition[string, A], 0)
	for _, tuple := range tuples {
		for _, action := range alphabet {
			if indexes, ok := participants[action]; ok && len(indexes) > 0 {
				transitions = append(transitions, synchronizedTransitions(components, renamings, tuple, action, indexes)...)
				continue
			}
			for i, component := range components {
				for _, transition := range component.transitions[tuple[i]] {
					if transition.Symbol != action {
						continue
					}
					target := slices.Clone(tuple)
					target[i] = transition.Target
					transitions = append(transitions, Transition[string, A]{
						Source: productLocationName(tuple),
						Symbol: action,
						Target: productLocationName(target),
						Guard:  renameGuard(transition.Guard, renamings[i]),
						Resets: renameResets(transition.Resets, renamings[i]),
					})
				}
			}
		}
	}

	return NewTimedAutomaton(locations, alphabet, initial, finals, clocks, transitions)
}

func synchronizedTransitions[L, A cmp.Ordered](components []*TimedAutomaton[L, A], renamings []map[string]string, tuple []L, action A, indexes []int) []Transition[string, A] {
	// Every participant contributes one of its transitions labeled with the action
	choices := lo.Map(indexes, func(i int, _ int) []Transition[L, A] {
		return lo.Filter(components[i].transitions[tuple[i]], func(transition Transition[L, A], _ int) bool {
			return transition.Symbol == action
		})
	})
	if lo.SomeBy(choices, func(choice []Transition[L, A]) bool { return len(choice) == 0 }) {
		return nil
	}

	combined := make([]Transition[string, A], 0)
	var combine func(position int, target []L, guard []automata.AtomicClockConstraint, resets []string)
	combine = func(position int, target []L, guard []automata.AtomicClockConstraint, resets []string) {
		if position == len(indexes) {
			combined = append(combined, Transition[string, A]{
				Source: productLocationName(tuple),
				Symbol: action,
				Target: productLocationName(target),
				Guard:  slices.Clone(guard),
				Resets: lo.Uniq(resets),
			})
			return
		}
		component := indexes[position]
		for _, transition := range choices[position] {
			next := slices.Clone(target)
			next[component] = transition.Target
			combine(
				position+1,
				next,
				append(slices.Clone(guard), renameGuard(transition.Guard, renamings[component])...),
				append(slices.Clone(resets), renameResets(transition.Resets, renamings[component])...),
			)
		}
	}
	combine(0, slices.Clone(tuple), nil, nil)
	return combined
}

func renameClocks[L, A cmp.Ordered](components []*TimedAutomaton[L, A]) []map[string]string {
	occurrences := make(map[string]int)
	taken := make(map[string]bool)
	for _, component := range components {
		for _, clock := range component.Clocks() {
			occurrences[clock]++
			taken[clock] = true
		}
	}

	renamings := make([]map[string]string, 0, len(components))
	for i, component := range components {
		renaming := make(map[string]string, len(component.Clocks()))
		for _, clock := range component.Clocks() {
			if occurrences[clock] == 1 {
				renaming[clock] = clock
				continue
			}
			// Renamed clocks must not clash with any declared or already renamed clock
			base := fmt.Sprintf("%s_%d", clock, i)
			name := base
			for n := 1; taken[name]; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
			}
			taken[name] = true
			renaming[clock] = name
		}
		renamings = append(renamings, renaming)
	}
	return renamings
}

func renameGuard(guard []automata.AtomicClockConstraint, renaming map[string]string) []automata.AtomicClockConstraint {
	return lo.Map(guard, func(constraint automata.AtomicClockConstraint, _ int) automata.AtomicClockConstraint {
		return automata.AtomicClockConstraint{Clock: renaming[constraint.Clock], Constraint: constraint.Constraint}
	})
}

func renameResets(resets []string, renaming map[string]string) []string {
	return lo.Map(resets, func(clock string, _ int) string { return renaming[clock] })
}

func locationTuples[L, A cmp.Ordered](components []*TimedAutomaton[L, A]) [][]L {
	tuples := [][]L{{}}
	for _, component := range components {
		next := make([][]L, 0, len(tuples)*len(component.locations))
		for _, tuple := range tuples {
			for _, location := range component.Locations() {
				next = append(next, append(slices.Clone(tuple), location))
			}
		}
		tuples = next
	}
	return tuples
}

func productLocationName[L cmp.Ordered](tuple []L) string {
	return "(" + strings.Join(lo.Map(tuple, func(location L, _ int) string { return fmt.Sprint(location) }), ",") + ")"
}
