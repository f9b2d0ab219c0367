package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/api"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/fhe/mockfhe"
	"github.com/vocdoni/confidential-voting/types"
)

// ErrNoSigner is returned by state changing calls when no signer is set.
var ErrNoSigner = errors.New("no signer configured")

// responseError decodes the API error in data. It falls back to a generic
// error when data is not an API error.
func responseError(status int, data []byte) error {
	apiErr := api.Error{}
	if err := json.Unmarshal(data, &apiErr); err != nil || apiErr.Err == nil {
		return fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	apiErr.HTTPstatus = status
	return apiErr
}

// get requests urlPath and decodes the response into out.
func (c *HTTPclient) get(out any, params []string, urlPath ...string) error {
	data, status, err := c.Request(HTTPGET, nil, params, urlPath...)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return responseError(status, data)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// postSigned signs payload for urlPath, posts it and decodes the response
// into out, if any.
func (c *HTTPclient) postSigned(urlPath string, payload, out any) error {
	if c.signer == nil {
		return ErrNoSigner
	}
	req, err := api.SignRequest(c.signer, c.signedPath(urlPath), c.now().Unix(), payload)
	if err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}
	return c.post(urlPath, req, out)
}

// post posts body to urlPath and decodes the response into out, if any.
func (c *HTTPclient) post(urlPath string, body, out any) error {
	data, status, err := c.Request(HTTPPOST, body, nil, urlPath)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return responseError(status, data)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// signedPath returns the path the server sees for urlPath.
func (c *HTTPclient) signedPath(urlPath string) string {
	return path.Join("/", c.host.Path, urlPath)
}

func proposalPath(endpoint string, id types.ProposalID) string {
	return api.EndpointWithParam(endpoint, api.ProposalURLParam, id.String())
}

// CreateProposal creates a proposal owned by the signer.
func (c *HTTPclient) CreateProposal(p *api.NewProposal) (types.ProposalID, error) {
	res := &api.NewProposalResponse{}
	if err := c.postSigned(api.ProposalsEndpoint, p, res); err != nil {
		return 0, err
	}
	return res.ProposalID, nil
}

// Proposal returns a proposal and its status.
func (c *HTTPclient) Proposal(id types.ProposalID) (*api.ProposalResponse, error) {
	res := &api.ProposalResponse{}
	if err := c.get(res, nil, proposalPath(api.ProposalEndpoint, id)); err != nil {
		return nil, err
	}
	return res, nil
}

// Encrypt asks the engine for an external input of value owned by owner.
func (c *HTTPclient) Encrypt(value uint64, owner common.Address) (*api.Vote, error) {
	res := &api.Vote{}
	if err := c.post(api.FHEInputsEndpoint, &api.EncryptRequest{Value: value, Owner: owner}, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Vote encrypts choice for the signer and casts it on the proposal.
func (c *HTTPclient) Vote(id types.ProposalID, choice uint64) error {
	if c.signer == nil {
		return ErrNoSigner
	}
	in, err := c.Encrypt(choice, c.signer.Address())
	if err != nil {
		return fmt.Errorf("failed to encrypt choice: %w", err)
	}
	return c.CastVote(id, in)
}

// CastVote casts an already encrypted vote.
func (c *HTTPclient) CastVote(id types.ProposalID, vote *api.Vote) error {
	return c.postSigned(proposalPath(api.VotesEndpoint, id), vote, nil)
}

// Finalize finalizes an ended proposal.
func (c *HTTPclient) Finalize(id types.ProposalID) error {
	return c.postSigned(proposalPath(api.FinalizeEndpoint, id), struct{}{}, nil)
}

// Tally returns the handles of the encrypted counters of a proposal.
func (c *HTTPclient) Tally(id types.ProposalID) (*api.TallyResponse, error) {
	res := &api.TallyResponse{}
	if err := c.get(res, nil, proposalPath(api.TallyEndpoint, id)); err != nil {
		return nil, err
	}
	return res, nil
}

// Grant gives account access to the current tally of a proposal.
func (c *HTTPclient) Grant(id types.ProposalID, account common.Address) error {
	return c.postSigned(proposalPath(api.GrantsEndpoint, id), &api.Grant{Account: account}, nil)
}

// Voter returns the participation of address in a proposal.
func (c *HTTPclient) Voter(id types.ProposalID, address common.Address) (*api.VoterResponse, error) {
	res := &api.VoterResponse{}
	p := api.EndpointWithParam(proposalPath(api.VoterEndpoint, id), api.AddressURLParam, address.Hex())
	if err := c.get(res, nil, p); err != nil {
		return nil, err
	}
	return res, nil
}

// Roles returns the role table.
func (c *HTTPclient) Roles() (*types.Roles, error) {
	res := &types.Roles{}
	if err := c.get(res, nil, api.RolesEndpoint); err != nil {
		return nil, err
	}
	return res, nil
}

// SetProposer enables or disables account as proposer.
func (c *HTTPclient) SetProposer(account common.Address, enabled bool) error {
	return c.postSigned(api.ProposersEndpoint, &api.RoleChange{Account: account, Enabled: enabled}, nil)
}

// SetAdministrator enables or disables account as administrator.
func (c *HTTPclient) SetAdministrator(account common.Address, enabled bool) error {
	return c.postSigned(api.AdministratorsEndpoint, &api.RoleChange{Account: account, Enabled: enabled}, nil)
}

// TransferOwnership hands the owner role to newOwner.
func (c *HTTPclient) TransferOwnership(newOwner common.Address) error {
	return c.postSigned(api.OwnerEndpoint, &api.OwnershipTransfer{NewOwner: newOwner}, nil)
}

// Events returns up to limit events starting at sequence number from.
func (c *HTTPclient) Events(from uint64, limit int) (*api.EventsResponse, error) {
	res := &api.EventsResponse{}
	params := []string{"from", strconv.FormatUint(from, 10), "limit", strconv.Itoa(limit)}
	if err := c.get(res, params, api.EventsEndpoint); err != nil {
		return nil, err
	}
	return res, nil
}

// UserDecrypt sends a signed user decryption request and returns the sealed
// value.
func (c *HTTPclient) UserDecrypt(req *mockfhe.UserDecryptRequest) ([]byte, error) {
	res := &api.DecryptResponse{}
	if err := c.post(api.FHEDecryptEndpoint, req, res); err != nil {
		return nil, err
	}
	return res.Sealed, nil
}

// PublicValue returns the plaintext of a publicly decryptable handle.
func (c *HTTPclient) PublicValue(h fhe.Handle) (uint64, error) {
	res := &api.PublicValue{}
	p := api.EndpointWithParam(api.FHEPublicEndpoint, api.HandleURLParam, strconv.FormatUint(uint64(h), 10))
	if err := c.get(res, nil, p); err != nil {
		return 0, err
	}
	return res.Value, nil
}
