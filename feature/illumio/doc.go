// Package illumio implements the PCE connector (the primary workload source).
//
// It fetches the label dictionary and the workload inventory through the
// shared rest layer, then enriches each workload: label references are
// resolved against the dictionary, network interfaces are flattened to a
// primary IP plus a joined list, and a VEN status is derived from the agent
// management/online/suspension state.
//
// PCE unavailability is fatal for the whole run; the caller decides that
// after TestConnection fails.
package illumio
