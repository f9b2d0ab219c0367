package api

import "strings"

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// MetricsEndpoint exposes the node counters in the Prometheus text format
	MetricsEndpoint = "/metrics"

	// ProposalsEndpoint is the endpoint for creating a new proposal
	ProposalsEndpoint = "/proposals"
	// ProposalEndpoint is the endpoint to get the proposal info and status
	ProposalURLParam = "proposalId"
	ProposalEndpoint = "/proposals/{" + ProposalURLParam + "}"
	// VotesEndpoint is the endpoint for casting an encrypted vote
	VotesEndpoint = ProposalEndpoint + "/votes"
	// FinalizeEndpoint is the endpoint for finalizing an ended proposal
	FinalizeEndpoint = ProposalEndpoint + "/finalize"
	// TallyEndpoint is the endpoint to get the encrypted tally handles
	TallyEndpoint = ProposalEndpoint + "/tally"
	// GrantsEndpoint is the endpoint for granting decryption permissions
	GrantsEndpoint = ProposalEndpoint + "/grants"
	// VoterEndpoint is the endpoint to check the participation of an address
	AddressURLParam = "address"
	VoterEndpoint   = ProposalEndpoint + "/voters/{" + AddressURLParam + "}"

	// RolesEndpoint is the endpoint to get the role table
	RolesEndpoint = "/roles"
	// ProposersEndpoint enables or disables a proposer
	ProposersEndpoint = RolesEndpoint + "/proposers"
	// AdministratorsEndpoint enables or disables an administrator
	AdministratorsEndpoint = RolesEndpoint + "/administrators"
	// OwnerEndpoint transfers the owner role
	OwnerEndpoint = RolesEndpoint + "/owner"

	// EventsEndpoint is the endpoint to page through the event log, it
	// accepts the from and limit query parameters
	EventsEndpoint = "/events"

	// FHEInputsEndpoint encrypts a value for an owner and returns the
	// external input to vote with. It plays the relayer of the engine.
	FHEInputsEndpoint = "/fhe/inputs"
	// FHEDecryptEndpoint serves user decryption requests
	FHEDecryptEndpoint = "/fhe/decrypt"
	// FHEPublicEndpoint returns the value of a publicly decryptable handle
	HandleURLParam    = "handle"
	FHEPublicEndpoint = "/fhe/public/{" + HandleURLParam + "}"
)

// EndpointWithParam replaces the URL parameter param of endpoint with value.
func EndpointWithParam(endpoint, param, value string) string {
	return strings.Replace(endpoint, "{"+param+"}", value, 1)
}
