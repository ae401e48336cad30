package salesapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Agent is a sales agent. Only the fields the order entry flow reads are
// kept: the credit fields prefill the order form when an agent is picked.
type Agent struct {
	ID          string
	Name        string
	CreditTerm  string
	CreditLimit string
}

// AgentGroup is a named group of agents; promotions and pricing are scoped
// by it.
type AgentGroup struct {
	ID   string
	Name string
}

// FetchAgents lists a page of agents.
func (c *Client) FetchAgents(ctx context.Context, page, perPage int) ([]Agent, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("perPage", strconv.Itoa(perPage))
	}

	body, _, err := c.get(ctx, "/api/agents", q)
	if err != nil {
		return nil, errors.Wrap(err, "fetch agents")
	}

	var agents []Agent
	err = decodeList(body, func(d *jx.Decoder) error {
		a, err := decodeAgent(d)
		if err != nil {
			return err
		}
		agents = append(agents, a)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode agents")
	}
	return agents, nil
}

// GetAgent fetches one agent, used to prefill credit term and limit.
func (c *Client) GetAgent(ctx context.Context, id string) (*Agent, error) {
	body, _, err := c.get(ctx, "/api/agents/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch agent %s", id)
	}

	payload, _ := unwrapData(body)
	d := jx.DecodeBytes(payload)
	if d.Next() != jx.Object {
		return nil, nil
	}
	a, err := decodeAgent(d)
	if err != nil {
		return nil, errors.Wrapf(err, "decode agent %s", id)
	}
	return &a, nil
}

// FetchAgentGroups lists all agent groups.
func (c *Client) FetchAgentGroups(ctx context.Context) ([]AgentGroup, error) {
	body, _, err := c.get(ctx, "/api/agent-group", nil)
	if err != nil {
		return nil, errors.Wrap(err, "fetch agent groups")
	}

	var groups []AgentGroup
	err = decodeList(body, func(d *jx.Decoder) error {
		g, err := decodeAgentGroup(d)
		if err != nil {
			return err
		}
		groups = append(groups, g)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode agent groups")
	}
	return groups, nil
}

// decodeAgent tolerates the backend's field-name drift: different agent
// endpoints use camelCase, snake_case or legacy names for the same fields.
func decodeAgent(d *jx.Decoder) (Agent, error) {
	var a Agent
	err := d.Obj(func(d *jx.Decoder, key string) error {
		set := func(dst *string) error {
			s, err := decodeStr(d)
			if err != nil {
				return err
			}
			if *dst == "" {
				*dst = s
			}
			return nil
		}
		switch key {
		case "agentId", "id", "_id", "agent_id":
			return set(&a.ID)
		case "agentName", "companyName", "name", "agent_name":
			return set(&a.Name)
		case "creditTerm", "credit_term":
			return set(&a.CreditTerm)
		case "creditLimit", "credit_limit":
			return set(&a.CreditLimit)
		default:
			return d.Skip()
		}
	})
	return a, err
}

func decodeAgentGroup(d *jx.Decoder) (AgentGroup, error) {
	var g AgentGroup
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "agentGroupId", "id":
			g.ID, err = decodeStr(d)
		case "name", "groupName":
			g.Name, err = decodeStr(d)
		default:
			return d.Skip()
		}
		return err
	})
	return g, err
}
