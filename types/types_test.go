package types

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
)

func TestStrategy(t *testing.T) {
	c := qt.New(t)
	for _, s := range Strategies() {
		c.Assert(s.Valid(), qt.IsTrue)
		parsed, err := ParseStrategy(s.String())
		c.Assert(err, qt.IsNil)
		c.Assert(parsed, qt.Equals, s)

		data, err := json.Marshal(s)
		c.Assert(err, qt.IsNil)
		var decoded Strategy
		c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
		c.Assert(decoded, qt.Equals, s)
	}

	c.Assert(Strategy(7).Valid(), qt.IsFalse)
	c.Assert(Strategy(7).String(), qt.Equals, "strategy(7)")
	_, err := json.Marshal(Strategy(7))
	c.Assert(err, qt.IsNotNil)
	_, err = ParseStrategy("everyone")
	c.Assert(err, qt.ErrorMatches, `unknown strategy "everyone"`)
}

func TestStatusJSON(t *testing.T) {
	c := qt.New(t)
	data, err := json.Marshal(StatusEnded)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `"ended"`)

	var s Status
	c.Assert(json.Unmarshal([]byte(`"finalized"`), &s), qt.IsNil)
	c.Assert(s, qt.Equals, StatusFinalized)
	c.Assert(json.Unmarshal([]byte(`"closed"`), &s), qt.ErrorMatches, `unknown status "closed"`)
}

func TestParseProposalID(t *testing.T) {
	c := qt.New(t)
	id, err := ParseProposalID("42")
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Equals, ProposalID(42))
	c.Assert(id.String(), qt.Equals, "42")

	_, err = ParseProposalID("-1")
	c.Assert(err, qt.IsNotNil)
	_, err = ParseProposalID("0x01")
	c.Assert(err, qt.IsNotNil)
}

func TestRoles(t *testing.T) {
	c := qt.New(t)
	a := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	b := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	r := &Roles{Owner: a}
	r.SetProposer(b, true)
	r.SetProposer(a, true)
	r.SetProposer(a, true)
	c.Assert(r.Proposers, qt.DeepEquals, []common.Address{a, b})
	c.Assert(r.IsProposer(a), qt.IsTrue)
	c.Assert(r.IsAdministrator(a), qt.IsFalse)

	clone := r.Clone()
	clone.SetProposer(a, false)
	c.Assert(clone.Proposers, qt.DeepEquals, []common.Address{b})
	c.Assert(r.IsProposer(a), qt.IsTrue)

	r.SetAdministrator(b, true)
	r.SetAdministrator(b, false)
	c.Assert(r.Administrators, qt.HasLen, 0)
}

func TestHexBytes(t *testing.T) {
	c := qt.New(t)
	b := HexBytes{0xde, 0xad, 0xbe, 0xef}
	c.Assert(b.String(), qt.Equals, "0xdeadbeef")

	data, err := json.Marshal(b)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `"0xdeadbeef"`)

	var decoded HexBytes
	c.Assert(json.Unmarshal([]byte(`"DEADBEEF"`), &decoded), qt.IsNil)
	c.Assert(decoded, qt.DeepEquals, b)
	c.Assert(json.Unmarshal([]byte(`12`), &decoded), qt.IsNotNil)

	parsed, err := ParseHexBytes("0xdeadbeef")
	c.Assert(err, qt.IsNil)
	c.Assert(parsed, qt.DeepEquals, b)
	_, err = ParseHexBytes("0xzz")
	c.Assert(err, qt.IsNotNil)
}
