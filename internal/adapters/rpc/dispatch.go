package rpc

import (
	"encoding/json"
	"fmt"
)

type spawnContactParams struct {
	Parent string          `json:"parent"`
	Name   string          `json:"name"`
	Blend  string          `json:"blend"`
	Value  json.RawMessage `json:"value,omitempty"`
}

type spawnGroupParams struct {
	Parent string `json:"parent"`
	Name   string `json:"name"`
}

type spawnGadgetParams struct {
	Parent string `json:"parent"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
}

type sendParams struct {
	Contact string          `json:"contact"`
	Value   json.RawMessage `json:"value"`
}

type wireParams struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type unwireParams struct {
	Wire string `json:"wire"`
}

type deleteParams struct {
	ID string `json:"id"`
}

type readParams struct {
	Contact string `json:"contact"`
}

type describeParams struct {
	Group string `json:"group"`
}

type extractParams struct {
	Parent   string   `json:"parent"`
	Contacts []string `json:"contacts"`
	Name     string   `json:"name"`
}

type inlineParams struct {
	Parent string `json:"parent"`
	Group  string `json:"group"`
}

type copyContactsParams struct {
	Parent    string   `json:"parent"`
	Contacts  []string `json:"contacts"`
	WithWires bool     `json:"withWires"`
}

type copyGroupParams struct {
	Parent string `json:"parent"`
	Group  string `json:"group"`
}

type pollEventsParams struct {
	FromSeq int64 `json:"fromSeq"`
	Max     int   `json:"max,omitempty"`
}

func decodeParams(raw json.RawMessage, dst any) *rpcError {
	if len(raw) == 0 {
		return &rpcError{Code: codeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

func (s *Server) dispatch(method string, params json.RawMessage) (any, *rpcError) {
	switch method {
	case "health_check":
		return map[string]string{"status": "ok"}, nil

	case "net_spawn_contact":
		var p spawnContactParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		view, err := s.service.SpawnContact(p.Parent, p.Name, p.Blend, p.Value)
		if err != nil {
			return nil, toRPCError(err)
		}
		return view, nil

	case "net_spawn_group":
		var p spawnGroupParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		view, err := s.service.SpawnGroup(p.Parent, p.Name)
		if err != nil {
			return nil, toRPCError(err)
		}
		return view, nil

	case "net_spawn_gadget":
		var p spawnGadgetParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		view, err := s.service.SpawnGadget(p.Parent, p.Name, p.Kind)
		if err != nil {
			return nil, toRPCError(err)
		}
		return view, nil

	case "net_send":
		var p sendParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		result, err := s.service.Send(p.Contact, p.Value)
		if err != nil {
			return nil, toRPCError(err)
		}
		return result, nil

	case "net_wire":
		var p wireParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		view, err := s.service.Wire(p.From, p.To)
		if err != nil {
			return nil, toRPCError(err)
		}
		return view, nil

	case "net_unwire":
		var p unwireParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		if err := s.service.Unwire(p.Wire); err != nil {
			return nil, toRPCError(err)
		}
		return map[string]bool{"removed": true}, nil

	case "net_delete":
		var p deleteParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		events, err := s.service.Delete(p.ID)
		if err != nil {
			return nil, toRPCError(err)
		}
		return map[string]any{"removed": true, "events": events}, nil

	case "net_read":
		var p readParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		view, err := s.service.Read(p.Contact)
		if err != nil {
			return nil, toRPCError(err)
		}
		return view, nil

	case "net_describe":
		var p describeParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		view, err := s.service.Describe(p.Group)
		if err != nil {
			return nil, toRPCError(err)
		}
		return view, nil

	case "refactor_extract":
		var p extractParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		result, err := s.service.Extract(p.Parent, p.Contacts, p.Name)
		if err != nil {
			return nil, toRPCError(err)
		}
		return result, nil

	case "refactor_inline":
		var p inlineParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		result, err := s.service.Inline(p.Parent, p.Group)
		if err != nil {
			return nil, toRPCError(err)
		}
		return result, nil

	case "refactor_copy_contacts":
		var p copyContactsParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		result, err := s.service.CopyContacts(p.Parent, p.Contacts, p.WithWires)
		if err != nil {
			return nil, toRPCError(err)
		}
		return result, nil

	case "refactor_copy_group":
		var p copyGroupParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		result, err := s.service.CopyGroup(p.Parent, p.Group)
		if err != nil {
			return nil, toRPCError(err)
		}
		return result, nil

	case "events_poll":
		var p pollEventsParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		return map[string]any{"events": s.service.PollEvents(p.FromSeq, p.Max)}, nil

	case "snapshot_save":
		if err := s.service.SaveSnapshot(); err != nil {
			return nil, toRPCError(err)
		}
		return map[string]bool{"saved": true}, nil

	case "snapshot_load":
		if err := s.service.LoadSnapshot(); err != nil {
			return nil, toRPCError(err)
		}
		return map[string]bool{"loaded": true}, nil

	case "core_metrics":
		return s.service.Metrics(), nil

	default:
		return nil, &rpcError{Code: -32601, Message: fmt.Sprintf("method not found: %s", method)}
	}
}
