package errors

import (
	"fmt"
	"strings"
)

// ContractError reports generated code that violates the shape the resolver relies on,
// e.g. a generated declaration without constructors. It is never recoverable.
type ContractError struct {
	*BaseError
	Declaration string // qualified name of the offending declaration
}

// NewContractError creates a contract error for the given declaration
func NewContractError(declaration, reason string) *ContractError {
	return &ContractError{
		BaseError: New(ContractErrorCode, fmt.Sprintf("generated declaration %s violates the generator contract: %s", declaration, reason)).
			WithContext("declaration", declaration).
			WithSuggestions(
				"Remove the stale generated file and run the generator again",
				"Generated declarations must expose at least one constructor",
			),
		Declaration: declaration,
	}
}

// DependencyError reports a constructor dependency that could not be bound
type DependencyError struct {
	*BaseError
	Component  string   // component whose constructor requested the dependency
	Type       string   // requested type
	Tags       []string // requested tags
	Candidates []string // conflicting providers, set for ambiguity errors
}

// NewMissingDependencyError creates an error for a dependency no provider or extension can satisfy
func NewMissingDependencyError(component, typ string, tags []string) *DependencyError {
	return &DependencyError{
		BaseError: New(DependencyErrorCode, fmt.Sprintf("component %s requires %s which has no provider", component, describeRequest(typ, tags))).
			WithContext("component", component).
			WithContext("type", typ).
			WithSuggestions(
				fmt.Sprintf("Annotate a constructor returning %s with //tether::component", typ),
				"Annotate the interface with //tether::client if it is a remote-service client",
				"Ensure the providing package is included in the scan directories",
			),
		Component: component,
		Type:      typ,
		Tags:      tags,
	}
}

// NewAmbiguousDependencyError creates an error for a dependency satisfied by several providers
func NewAmbiguousDependencyError(component, typ string, tags []string, candidates []string) *DependencyError {
	return &DependencyError{
		BaseError: New(DependencyErrorCode, fmt.Sprintf("component %s requires %s which has %d providers: %s",
			component, describeRequest(typ, tags), len(candidates), strings.Join(candidates, ", "))).
			WithContext("component", component).
			WithContext("type", typ).
			WithContext("candidates", candidates).
			WithSuggestion("Use -Tags on the providers and //tether::tag on the dependency to pick one"),
		Component:  component,
		Type:       typ,
		Tags:       tags,
		Candidates: candidates,
	}
}

// ConvergenceError reports generation rounds that stopped making progress
type ConvergenceError struct {
	*BaseError
	Rounds  int      // rounds executed before giving up
	Pending []string // binding requests still deferred
}

// NewRoundLimitError creates an error for a run that hit the round limit with pending requests
func NewRoundLimitError(rounds int, pending []string) *ConvergenceError {
	return &ConvergenceError{
		BaseError: New(ConvergenceErrorCode, fmt.Sprintf("generation did not converge after %d rounds; still waiting on: %s",
			rounds, strings.Join(pending, ", "))).
			WithContext("rounds", rounds).
			WithSuggestion("Raise --max-rounds if the generators legitimately need more passes"),
		Rounds:  rounds,
		Pending: pending,
	}
}

// NewStalledError creates an error for a round that deferred requests but produced no new files
func NewStalledError(round int, pending []string) *ConvergenceError {
	return &ConvergenceError{
		BaseError: New(ConvergenceErrorCode, fmt.Sprintf("round %d produced no new files but still waits on: %s",
			round, strings.Join(pending, ", "))).
			WithContext("rounds", round).
			WithSuggestions(
				"Check that generated files are written inside the scanned directories",
				"Check that the generated type names match the interface names",
			),
		Rounds:  round,
		Pending: pending,
	}
}

func describeRequest(typ string, tags []string) string {
	if len(tags) == 0 {
		return typ
	}
	return fmt.Sprintf("%s tagged [%s]", typ, strings.Join(tags, ","))
}
