// Package orchestrator composes a whole form from one execution: it selects
// the executed, visible variables, groups them into the sections the engine
// supplies, and builds a node per variable through the form builder. Session
// closes the controlled loop by re-executing the template on every change.
package orchestrator
