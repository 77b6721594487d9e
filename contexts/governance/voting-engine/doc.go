// Package votingengine implements the decision-sheet and voting lifecycle
// inside the governance context.
//
// The module owns protocol drafting, sheet opening with per-owner public
// tokens, ballot recording under last-submission-wins semantics, majority
// tallying, and the one-time finalization that hands a closed sheet to the
// signing service through the outbox. Business rules live in the
// application/domain layers; infrastructure stays behind ports and adapters.
package votingengine
