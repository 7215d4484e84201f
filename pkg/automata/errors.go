package automata

import "fmt"

type InvalidLocationError struct {
	Location string
}

func (err InvalidLocationError) Error() string {
	return fmt.Sprintf("invalid location: %v", err.Location)
}

type InvalidClockError struct {
	Clock string
}

func (err InvalidClockError) Error() string {
	return fmt.Sprintf("invalid clock: %v", err.Clock)
}

type InvalidSymbolError struct {
	Symbol string
}

func (err InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol: %v", err.Symbol)
}

type InvalidClockComparisonOperatorError struct {
	Operator string
}

func (err InvalidClockComparisonOperatorError) Error() string {
	return fmt.Sprintf("invalid clock comparison operator: %v", err.Operator)
}

type InvalidTimedWordError struct {
	Reason string
}

func (err InvalidTimedWordError) Error() string {
	return fmt.Sprintf("invalid timed word: %v", err.Reason)
}

type NegativeTimeDeltaError struct {
	Delta Time
}

func (err NegativeTimeDeltaError) Error() string {
	return fmt.Sprintf("cannot do a time step of negative length %v", err.Delta)
}
